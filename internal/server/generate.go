package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	stderrors "deedflow/internal/common/errors"
	"deedflow/internal/common/validation"
	"deedflow/internal/contract"
	"deedflow/internal/server/middleware"
)

// validationDetails pulls the per-field violation list out of a validation
// error for the 400 response body.
func validationDetails(err error) string {
	var stdErr *stderrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Details
	}
	return err.Error()
}

// countingWriter tracks whether any byte reached the client, which decides
// between a clean JSON error and an aborted stream.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func (cw *countingWriter) Flush() {
	if f, ok := cw.w.(http.Flusher); ok {
		f.Flush()
	}
}

// handleGenerate validates the form snapshot, builds the drafting prompt and
// relays the model's output as a chunked plain-text stream.
func (s *Server) handleGenerate(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if err := validation.ValidateFormData(raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": validationDetails(err),
		})
		return
	}

	var form contract.FormData
	if err := json.Unmarshal(raw, &form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	prompt := contract.BuildPrompt(form, time.Now())

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")

	cw := &countingWriter{w: c.Writer}
	if err := s.streamer.StreamCompletion(c.Request.Context(), contract.SystemPrompt, prompt, cw); err != nil {
		s.logger.WithError(err).Error("contract generation failed", map[string]interface{}{
			"requestId":       middleware.GetRequestID(c),
			"propertyAddress": form.PropertyAddress,
			"bytesStreamed":   cw.n,
		})
		if cw.n == 0 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate contract"})
			return
		}
		// The status line and partial body are already on the wire. Abort the
		// connection so the client sees a broken stream, not a truncated
		// contract that looks complete.
		panic(http.ErrAbortHandler)
	}
}
