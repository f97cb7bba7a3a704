package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) HandleLastlinkWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.webhookSvc.IngestWebhook(c.Request.Context(), payload, c.Request.Header); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleWebhookHealth reports whether the webhook endpoint is configured.
// It never touches tenant data.
func (s *Server) HandleWebhookHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"database_configured": s.cfg.HasDatabase(),
		"token_configured":    s.cfg.HasWebhookToken(),
	})
}
