// Package apperror provides the domain error type used across Reverie.
// An AppError carries an HTTP status code and a message that is safe to
// show to the user. The Echo error handler in internal/app turns it into a
// JSON body for API calls or an error page for browsers.
//
// Raw database or infrastructure errors never reach the client. Wrap them
// with NewInternal so the cause is logged and a generic message is shown.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the base error type for all domain errors.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 400, 500).
	Code int `json:"-"`

	// Type is a machine-readable classifier (e.g., "not_found").
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Internal holds the underlying error for logging. Never exposed.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the internal cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewNotFound creates a 404 Not Found error.
func NewNotFound(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Type: "not_found", Message: message}
}

// NewBadRequest creates a 400 Bad Request error.
func NewBadRequest(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Type: "bad_request", Message: message}
}

// NewUnauthorized creates a 401 Unauthorized error.
func NewUnauthorized(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Type: "unauthorized", Message: message}
}

// NewForbidden creates a 403 Forbidden error.
func NewForbidden(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Type: "forbidden", Message: message}
}

// NewValidation creates a 422 error for input that parsed but is not acceptable.
func NewValidation(message string) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Type: "validation_error", Message: message}
}

// NewUnavailable creates a 503 error for optional collaborators that are
// switched off or saturated (sketch queue, image provider).
func NewUnavailable(message string) *AppError {
	return &AppError{Code: http.StatusServiceUnavailable, Type: "unavailable", Message: message}
}

// NewInternal creates a 500 error. The cause is kept for logging while the
// client only sees a generic message.
func NewInternal(err error) *AppError {
	if err == nil {
		err = errMissingCause
	}
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "internal_error",
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

var errMissingCause = errors.New("internal error without cause")

// IsNotFound reports whether err is (or wraps) a 404 AppError.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == http.StatusNotFound
}

// SafeMessage returns a message that can be shown to the user. AppErrors
// expose their Message; anything else becomes a generic string.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status carried by an AppError, or 500.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
