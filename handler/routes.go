package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers bundles the API handlers for route registration.
type Handlers struct {
	Sessions *SessionHandler
	Uploads  *UploadHandler
	Audits   *AuditHandler
}

// RegisterRoutes mounts the API under the given group.
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Document Audit",
		})
	})

	sessions := api.Group("/sessions")
	{
		sessions.POST("", h.Sessions.CreateSession)
		sessions.GET("/:id", h.Sessions.GetSession)
		sessions.DELETE("/:id", h.Sessions.DeleteSession)

		sessions.POST("/:id/ledger", h.Uploads.UploadLedger)
		sessions.POST("/:id/documents", h.Uploads.UploadDocuments)
		sessions.GET("/:id/documents", h.Uploads.ListDocuments)

		sessions.POST("/:id/audit", h.Audits.RunAudit)
		sessions.GET("/:id/results", h.Audits.GetResults)
		sessions.GET("/:id/results/:index", h.Audits.GetResult)
	}
}
