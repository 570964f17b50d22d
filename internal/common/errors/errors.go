// Package errors provides standardized error handling for the contract
// signing pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeLLMStreamFailed ErrorCode = "LLM_STREAM_FAILED"

	ErrCodePDFRenderFailed ErrorCode = "PDF_RENDER_FAILED"

	ErrCodeDocumentCreateFailed     ErrorCode = "DOCUMENT_CREATE_FAILED"
	ErrCodeDocumentProcessingFailed ErrorCode = "DOCUMENT_PROCESSING_FAILED"
	ErrCodeDocumentPollTimeout      ErrorCode = "DOCUMENT_POLL_TIMEOUT"
	ErrCodeDocumentSendFailed       ErrorCode = "DOCUMENT_SEND_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeWebhookUnauthorized ErrorCode = "WEBHOOK_UNAUTHORIZED"
)

// StandardError represents a structured application error. Details carry the
// provider status and body for operators; user-facing responses never include
// them.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HasCode reports whether err is a StandardError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

// NewValidationFailed creates a non-retryable input validation error.
func NewValidationFailed(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request body validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMStreamFailed creates an error for an LLM call that was rejected or
// whose stream broke mid-flight.
func NewLLMStreamFailed(status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMStreamFailed,
		Message:   "LLM completion stream failed",
		Details:   fmt.Sprintf("status: %d, body: %s", status, body),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMStreamBroken creates an error for a stream that failed after bytes
// were already relayed.
func NewLLMStreamBroken(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMStreamFailed,
		Message:   "LLM completion stream broke mid-flight",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPDFRenderFailed creates a non-retryable document assembly error.
func NewPDFRenderFailed(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePDFRenderFailed,
		Message:   "Contract PDF assembly failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentCreateFailed creates a non-retryable provider upload error with
// the provider status and body attached verbatim.
func NewDocumentCreateFailed(status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentCreateFailed,
		Message:   "E-signature document creation failed",
		Details:   fmt.Sprintf("status: %d, body: %s", status, body),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentProcessingFailed creates an error for a document the provider
// reported as terminally failed while polling.
func NewDocumentProcessingFailed(documentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentProcessingFailed,
		Message:   "E-signature document processing failed",
		Details:   fmt.Sprintf("documentId: %s", documentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentPollTimeout creates an error for a document that never reached a
// ready state within the polling ceiling.
func NewDocumentPollTimeout(documentID string, waited time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentPollTimeout,
		Message:   "Document did not reach ready state in time",
		Details:   fmt.Sprintf("documentId: %s, waited: %s", documentID, waited),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentSendFailed creates a non-retryable provider send error with the
// provider status and body attached verbatim.
func NewDocumentSendFailed(status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentSendFailed,
		Message:   "E-signature document send failed",
		Details:   fmt.Sprintf("status: %d, body: %s", status, body),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailed creates a retryable notification delivery error.
func NewNotificationSendFailed(to string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("to: %s, error: %s", to, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebhookUnauthorized creates a non-retryable webhook authentication error.
func NewWebhookUnauthorized(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebhookUnauthorized,
		Message:   "Webhook signature verification failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
