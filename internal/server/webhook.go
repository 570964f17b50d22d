package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"deedflow/internal/pandadoc"
	"deedflow/internal/server/middleware"
)

// handleWebhook authenticates and routes a provider event batch. Responses
// are deliberately plain text: the provider only inspects the status code,
// and the body must never leak verification details.
func (s *Server) handleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	// Header is the configured delivery mode; the query parameter covers
	// PandaDoc's shared-key URL style.
	signature := c.GetHeader("X-PandaDoc-Signature")
	if signature == "" {
		signature = c.Query("signature")
	}
	if !pandadoc.VerifySignature(payload, signature, s.cfg.PandaDoc.WebhookSecret) {
		s.logger.Warn("webhook rejected", map[string]interface{}{
			"requestId": middleware.GetRequestID(c),
			"reason":    "signature verification failed",
		})
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}

	var events []pandadoc.WebhookEvent
	if err := json.Unmarshal(payload, &events); err != nil {
		s.logger.WithError(err).Error("webhook payload parse failed", map[string]interface{}{
			"requestId": middleware.GetRequestID(c),
		})
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := s.events.HandleBatch(c.Request.Context(), events); err != nil {
		s.logger.WithError(err).Error("webhook routing failed", map[string]interface{}{
			"requestId": middleware.GetRequestID(c),
			"events":    len(events),
		})
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.String(http.StatusOK, "OK")
}
