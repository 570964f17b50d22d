package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"deedflow/internal/common/validation"
	"deedflow/internal/contract"
	"deedflow/internal/notify"
	"deedflow/internal/server/middleware"
	"deedflow/internal/store"
)

type sendContractRequest struct {
	ContractText string          `json:"contractText"`
	FormData     json.RawMessage `json:"formData"`
}

// handleSendContract runs the dispatch pipeline: render the PDF, create and
// send the provider document, persist the record, and confirm to the agent.
func (s *Server) handleSendContract(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	var req sendContractRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.ContractText) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": "contractText is required"})
		return
	}
	if err := validation.ValidateFormData(req.FormData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": validationDetails(err)})
		return
	}

	var form contract.FormData
	if err := json.Unmarshal(req.FormData, &form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	log := s.logger.WithFields(map[string]interface{}{
		"requestId":       middleware.GetRequestID(c),
		"propertyAddress": form.PropertyAddress,
	})

	pdfData, err := s.renderer.Render(req.ContractText, form.PropertyAddress)
	if err != nil {
		log.WithError(err).Error("contract dispatch failed", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send contract"})
		return
	}

	result, err := s.dispatcher.CreateAndSend(c.Request.Context(), pdfData, form)
	if err != nil {
		log.WithError(err).Error("contract dispatch failed", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send contract"})
		return
	}

	record := store.ContractRecord{
		DocumentID:      result.ID,
		PropertyAddress: form.PropertyAddress,
		Form:            form,
		SandboxSkipped:  result.SandboxSkipped,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.contracts.Save(c.Request.Context(), record); err != nil {
		// The document is already live with the provider. Losing the local
		// record degrades the status endpoint but must not fail the dispatch.
		log.WithError(err).Warn("contract record save failed", map[string]interface{}{
			"documentId": result.ID,
		})
	}

	s.notifyAgentOfDispatch(c, form, result.SandboxSkipped)

	response := gin.H{
		"success":    true,
		"pandaDocId": result.ID,
	}
	if result.SandboxSkipped {
		response["sandboxSkipped"] = true
	}
	c.JSON(http.StatusOK, response)
}

// notifyAgentOfDispatch emails the agent that the contract went out to the
// broker. Delivery failures are logged and swallowed: the dispatch already
// succeeded.
func (s *Server) notifyAgentOfDispatch(c *gin.Context, form contract.FormData, sandboxSkipped bool) {
	if form.AgentEmail == "" {
		return
	}

	nextStep := fmt.Sprintf("The contract was sent to %s (broker) to start the signing chain.", form.BrokerName)
	if sandboxSkipped {
		nextStep = "Provider delivery was skipped by a sandbox restriction; share the document link with the broker directly."
	}

	html, err := notify.RenderAgentStatus(notify.AgentStatusParams{
		AgentName:       form.AgentName,
		PropertyAddress: form.PropertyAddress,
		StatusMessage:   "Contract sent to broker",
		SignerName:      form.BrokerName,
		SignerRole:      contract.RoleBroker.String(),
		NextStepMessage: nextStep,
	})
	if err != nil {
		s.logger.WithError(err).Warn("agent dispatch email render failed", nil)
		return
	}

	subject := fmt.Sprintf("Sent to Broker — Purchase Agreement — %s", form.PropertyAddress)
	if _, err := s.mailer.Send(c.Request.Context(), form.AgentEmail, subject, html); err != nil {
		s.logger.WithError(err).Warn("agent dispatch email failed", map[string]interface{}{
			"to": form.AgentEmail,
		})
	}
}
