package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "validation_error", "upstream_error")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (sanitized in production)
}

// error body returned when the daily quota is used up
type QuotaResponse struct {
	ErrorResponse
	Remaining  int    `json:"remaining"`
	Limit      int    `json:"limit"`
	UpgradeURL string `json:"upgrade_url,omitempty"`
}

type ErrorInfo struct {
	category  string
	sanitized string
}

// ErrQuotaExceeded matches any *QuotaExceededError via errors.Is
var ErrQuotaExceeded = errors.New("daily quota exceeded")

// ValidationError is a local, non-retryable rejection of caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return e.Field + ": " + e.Message
}

// creates a validation error for a field
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UpstreamError is a failure reported by the AI or storage provider.
type UpstreamError struct {
	Op       string // e.g. "generate", "caption", "translate", "blob-upload"
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Provider != "" {
		return fmt.Sprintf("%s failed (%s): %s", e.Op, e.Provider, msg)
	}

	return fmt.Sprintf("%s failed: %s", e.Op, msg)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// status to send to the caller, 500 when the provider gave none
func (e *UpstreamError) HTTPStatus() int {
	if e.Status >= http.StatusBadRequest {
		return e.Status
	}

	return http.StatusInternalServerError
}

// QuotaExceededError refuses a generation before any network call.
type QuotaExceededError struct {
	Limit      int
	Count      int
	UpgradeURL string
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily quota of %d generations reached", e.Limit)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// PersistenceError is a history save or clear failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// implemented by errors that carry their own response code
type coder interface {
	ErrorCode() string
}
