// Package domain defines the core domain models for zpipe.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
// Codes follow the format ZP-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "ZP-CONF-4000")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Configuration Errors (CONF)
// Fatal at startup, before any socket is opened.
// ============================================================================

var (
	// ErrInvalidConfig indicates a configuration value failed validation.
	ErrInvalidConfig = NewDomainError("ZP-CONF-4000", "invalid configuration")

	// ErrMissingMode indicates --mode was not supplied.
	ErrMissingMode = NewDomainError("ZP-CONF-4001", "mode is required (pub or sub)")

	// ErrMissingEndpoint indicates --endpoint was not supplied.
	ErrMissingEndpoint = NewDomainError("ZP-CONF-4002", "endpoint is required")
)

// ============================================================================
// Transport Errors (TRAN)
// ============================================================================

var (
	// ErrTransport indicates a bind/connect/send/recv or option failure.
	ErrTransport = NewDomainError("ZP-TRAN-5000", "transport failure")

	// ErrUnsupportedOption indicates the transport backend cannot apply a socket option.
	ErrUnsupportedOption = NewDomainError("ZP-TRAN-5001", "socket option not supported by transport")
)

// ============================================================================
// Input Errors (LOG / FRAME)
// Recoverable; the caller decides whether to skip or stop.
// ============================================================================

var (
	// ErrTruncatedRecord indicates a record-log field ended before its declared size.
	ErrTruncatedRecord = NewDomainError("ZP-LOG-4220", "truncated record")

	// ErrFrameCount indicates a received message did not carry exactly two frames.
	ErrFrameCount = NewDomainError("ZP-FRAME-4221", "unexpected frame count")
)
