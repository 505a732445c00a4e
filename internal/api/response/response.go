// Package response defines the envelope every API response is wrapped in.
// Success responses carry data; error responses carry a structured error with
// a machine-readable code. The two are never both populated.
package response

import (
	"time"

	"github.com/labstack/echo/v4"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

type ErrorCode string

const (
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeInvalidRequest     ErrorCode = "invalid_request"
	ErrorCodeDuplicateEntry     ErrorCode = "duplicate_entry"
	ErrorCodeInvalidCredentials ErrorCode = "invalid_credentials"
	ErrorCodeInvalidToken       ErrorCode = "invalid_token"
	ErrorCodeTokenExpired       ErrorCode = "token_expired"
	ErrorCodeTokenReuseDetected ErrorCode = "token_reuse_detected"
	ErrorCodeResourceNotFound   ErrorCode = "resource_not_found"
	ErrorCodeInvalidOperation   ErrorCode = "invalid_operation"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeForbidden          ErrorCode = "forbidden"
	ErrorCodeRateLimitExceeded  ErrorCode = "rate_limit_exceeded"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// Envelope is the standard response structure.
type Envelope struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Timestamp string    `json:"timestamp"`
}

// APIError is the structured error carried by failure envelopes.
type APIError struct {
	Code        ErrorCode `json:"code"`
	Description string    `json:"description"`
	Details     any       `json:"details,omitempty"`
}

// Success sends a success envelope with the given HTTP status.
func Success(c echo.Context, httpStatus int, message string, data any) error {
	return c.JSON(httpStatus, Envelope{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Error sends an error envelope. Details is optional; when present it carries
// field-keyed validation messages.
func Error(c echo.Context, httpStatus int, message string, code ErrorCode, description string, details any) error {
	return c.JSON(httpStatus, Envelope{
		Status:  StatusError,
		Message: message,
		Error: &APIError{
			Code:        code,
			Description: description,
			Details:     details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
