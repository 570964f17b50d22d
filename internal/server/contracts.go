package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"deedflow/internal/store"
)

// handleGetContract joins the local record with the provider's live document
// status. A failed provider query degrades to the record alone; the local
// snapshot is still useful when the provider is down.
func (s *Server) handleGetContract(c *gin.Context) {
	documentID := c.Param("id")

	record, err := s.contracts.Get(c.Request.Context(), documentID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("contract lookup failed", map[string]interface{}{
			"documentId": documentID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	response := gin.H{"contract": record}
	if doc, err := s.dispatcher.GetDocument(c.Request.Context(), documentID); err != nil {
		s.logger.WithError(err).Warn("provider status query failed", map[string]interface{}{
			"documentId": documentID,
		})
	} else {
		response["status"] = doc.Status
	}
	c.JSON(http.StatusOK, response)
}

func (s *Server) handleListContracts(c *gin.Context) {
	records, err := s.contracts.List(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("contract list failed", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if records == nil {
		records = []store.ContractRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"contracts": records})
}
