package controllers

import (
	"net/http"
	"thesis-verification-api/middleware"
	"thesis-verification-api/services"

	"github.com/gin-gonic/gin"
)

// POST /api/v1/verifications
func VerifyThesis(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	req, err := verificationRequestFromForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := registry.Verifier.Verify(c.Request.Context(), req, principal.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

// GET /api/v1/papers/search?hash=&tx_id=&title=&author=
func SearchPapers(c *gin.Context) {
	papers, err := registry.Verifier.SearchPapers(c.Request.Context(), services.SearchQuery{
		Hash:   c.Query("hash"),
		TxID:   c.Query("tx_id"),
		Title:  c.Query("title"),
		Author: c.Query("author"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": papers, "total": len(papers)})
}
