package models

import (
	"fmt"
)

// ValidationError represents a client-side validation failure. It names the
// offending field so the caller can show a field-specific message without
// any network call having been attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// UpstreamError represents a failure talking to the marketplace API.
// Transport distinguishes network-level failures (no structured response
// available, the caller shows a generic fallback message) from HTTP-level
// rejections where the server's message is surfaced verbatim.
type UpstreamError struct {
	StatusCode int
	Message    string
	Transport  bool
	Err        error
}

func (e *UpstreamError) Error() string {
	kind := "http"
	if e.Transport {
		kind = "transport"
	}

	if e.StatusCode > 0 {
		if e.Err != nil {
			return fmt.Sprintf("upstream error (%s): HTTP %d - %s (caused by: %v)",
				kind, e.StatusCode, e.Message, e.Err)
		}
		return fmt.Sprintf("upstream error (%s): HTTP %d - %s", kind, e.StatusCode, e.Message)
	}

	if e.Err != nil {
		return fmt.Sprintf("upstream error (%s): %s (caused by: %v)", kind, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream error (%s): %s", kind, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether the failure happened before a structured
// response was available.
func (e *UpstreamError) IsTransport() bool {
	return e.Transport
}

// NewUpstreamError creates a new UpstreamError
func NewUpstreamError(statusCode int, message string, transport bool, err error) *UpstreamError {
	return &UpstreamError{
		StatusCode: statusCode,
		Message:    message,
		Transport:  transport,
		Err:        err,
	}
}
