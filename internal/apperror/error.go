// Package apperror provides the structured error type for batch-fatal
// failures. Everything recoverable is reported through diagnostics instead.
package apperror

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	// Structural failures of a standardization request.
	CodeEmptyBatch     = "EMPTY_BATCH"
	CodeUnknownProfile = "UNKNOWN_PROFILE"

	// Caller-supplied input that cannot be used.
	CodeInvalidMapping = "INVALID_MAPPING"
	CodeInvalidInput   = "INVALID_INPUT"

	CodeInternal = "INTERNAL_ERROR"
)

// AppError is the error type returned when a request cannot produce any
// result.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (tool id, diagnostics, etc.)
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError by code, so sentinel comparisons like
// errors.Is(err, &AppError{Code: CodeEmptyBatch}) work.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}

	return t.Code == e.Code
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}

	e.Details[key] = value

	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewEmptyBatch reports a request without records.
func NewEmptyBatch() *AppError {
	return &AppError{
		Code:    CodeEmptyBatch,
		Message: "input batch contains no records",
	}
}

// NewUnknownProfile reports a tool id missing from the profile table.
func NewUnknownProfile(toolID string, known []string) *AppError {
	return &AppError{
		Code:    CodeUnknownProfile,
		Message: fmt.Sprintf("unknown tool profile %q", toolID),
		Details: map[string]any{"tool_id": toolID, "known": known},
	}
}

// NewInvalidMapping reports a caller-supplied mapping that failed checks.
func NewInvalidMapping(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidMapping,
		Message: message,
	}
}

// NewInvalidInput reports unusable input data.
func NewInvalidInput(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: message,
	}
}

// NewInternal wraps an unexpected failure.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}

	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}

	return ""
}

// IsEmptyBatch checks if error is CodeEmptyBatch
func IsEmptyBatch(err error) bool {
	return CodeOf(err) == CodeEmptyBatch
}

// IsUnknownProfile checks if error is CodeUnknownProfile
func IsUnknownProfile(err error) bool {
	return CodeOf(err) == CodeUnknownProfile
}
