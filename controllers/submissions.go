package controllers

import (
	"net/http"
	"strings"
	"thesis-verification-api/middleware"
	"thesis-verification-api/models"
	"thesis-verification-api/services"

	"github.com/gin-gonic/gin"
)

type rejectRequest struct {
	Reason string `json:"reason"`
}

// POST /api/v1/submissions
// Runs verification first and refuses blocking duplicates before the upload
// enters the approval workflow.
func CreateSubmission(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	req, err := verificationRequestFromForm(c)
	if err != nil {
		respondError(c, err)
		return
	}
	validationName, validationData, err := readUpload(c, "validation_document")
	if err != nil {
		respondError(c, err)
		return
	}

	outcome, err := registry.Verifier.Analyze(c.Request.Context(), req, models.RoleReviewer)
	if err != nil {
		respondError(c, err)
		return
	}
	if outcome.Report.IsBlocking(registry.BlockingThreshold) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "Submission blocked: the document duplicates or substantially overlaps registered work",
			"guard":   "blocking_duplicate",
			"report":  outcome.Report,
		})
		return
	}

	sub, err := registry.Approvals.Submit(c.Request.Context(), services.SubmitRequest{
		Document:           req,
		ValidationFileName: validationName,
		ValidationContent:  validationData,
		UploadedBy:         principal.ID,
		Outcome:            outcome,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Submission created and awaiting reviewer approval",
		"submission": sub,
		"report":     outcome.Report,
	})
}

// GET /api/v1/submissions/pending
func ListPendingSubmissions(c *gin.Context) {
	subs, err := registry.Approvals.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": subs, "total": len(subs)})
}

// GET /api/v1/submissions/awaiting
func ListAwaitingSubmissions(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	subs, err := registry.Approvals.ListAwaitingReviewer(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": subs, "total": len(subs)})
}

// GET /api/v1/submissions/mine
func ListMySubmissions(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	subs, err := registry.Approvals.ListUploadedBy(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": subs, "total": len(subs)})
}

// GET /api/v1/submissions/stats
func GetSubmissionStatistics(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	stats, err := registry.Approvals.Statistics(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// GET /api/v1/submissions/:id
func GetSubmission(c *gin.Context) {
	sub, err := registry.Approvals.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sub})
}

// POST /api/v1/submissions/:id/approve
func ApproveSubmission(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	sub, err := registry.Approvals.Approve(c.Request.Context(), strings.TrimSpace(c.Param("id")), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Approval recorded"
	if sub.Status == models.SubmissionStatusApproved {
		message = "Submission approved by all reviewers"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "data": sub})
}

// POST /api/v1/submissions/:id/reject
func RejectSubmission(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	var body rejectRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	sub, err := registry.Approvals.Reject(c.Request.Context(), strings.TrimSpace(c.Param("id")), principal.ID, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Submission rejected", "data": sub})
}
