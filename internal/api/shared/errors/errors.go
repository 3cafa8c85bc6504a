package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/remixhub/registry/internal/registration"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest        ErrorCode = "bad_request"
	ErrCodeNotFound          ErrorCode = "not_found"
	ErrCodeValidationFailed  ErrorCode = "validation_failed"
	ErrCodeUnauthorized      ErrorCode = "unauthorized"
	ErrCodeParentNotAnchored ErrorCode = "parent_not_anchored"

	// Server errors (5xx)
	ErrCodeInternalError       ErrorCode = "internal_error"
	ErrCodeDatabaseError       ErrorCode = "database_error"
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	// Reason is set for parent_not_anchored errors
	Reason string `json:"reason,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewNotFoundError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewValidationError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: strings.Join(details, ", "),
	}
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewParentNotAnchoredError(message string, reason string) *APIError {
	return &APIError{
		Code:    ErrCodeParentNotAnchored,
		Message: message,
		Reason:  reason,
	}
}

func NewInternalError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewDatabaseError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeDatabaseError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewUpstreamError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUpstreamUnavailable,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

// FromError maps a service error to an HTTP status and API error.
// Unknown errors become a 500 without leaking their text.
func FromError(err error) (int, *APIError) {
	var validationErr *registration.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, NewValidationError(validationErr.Error())
	}

	var parentErr *registration.ParentNotAnchoredError
	if errors.As(err, &parentErr) {
		return http.StatusConflict, NewParentNotAnchoredError(parentErr.Error(), string(parentErr.Reason))
	}

	var upstreamErr *registration.UpstreamError
	if errors.As(err, &upstreamErr) {
		if upstreamErr.Service == registration.ServiceRegistrationCache {
			return http.StatusServiceUnavailable, NewDatabaseError("Registration cache unavailable")
		}
		return http.StatusBadGateway, NewUpstreamError(upstreamErr.Service+" unavailable", upstreamErr.Err.Error())
	}

	return http.StatusInternalServerError, NewInternalError("Internal server error")
}
