package routes

import (
	"net/http"
	"thesis-verification-api/controllers"
	"thesis-verification-api/middleware"
	"thesis-verification-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"success": true,
					"status":  "ok",
					"message": "Thesis Verification API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Any authenticated user; the report discloses matches by role
			protected.POST("/verifications", controllers.VerifyThesis)
			protected.GET("/papers/search", controllers.SearchPapers)

			// Reviewer workflow
			submissions := protected.Group("/submissions")
			submissions.Use(middleware.RequireRole(models.RoleReviewer))
			{
				submissions.POST("", controllers.CreateSubmission)
				submissions.GET("/pending", controllers.ListPendingSubmissions)
				submissions.GET("/awaiting", controllers.ListAwaitingSubmissions)
				submissions.GET("/mine", controllers.ListMySubmissions)
				submissions.GET("/stats", controllers.GetSubmissionStatistics)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.POST("/:id/approve", controllers.ApproveSubmission)
				submissions.POST("/:id/reject", controllers.RejectSubmission)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
	})
}
