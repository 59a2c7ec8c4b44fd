package controllers

import (
	"errors"
	"net/http"
	"thesis-verification-api/config"
	"thesis-verification-api/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the JSON envelope.
func respondError(c *gin.Context, err error) {
	var (
		verr     *services.ValidationError
		nf       *services.NotFoundError
		conflict *services.StateConflictError
	)
	switch {
	case errors.As(err, &verr):
		body := gin.H{"success": false, "error": verr.Msg}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": nf.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": conflict.Msg, "guard": conflict.Guard})
	default:
		config.Logger().Errorw("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}
