package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/centralauth/centralauth/internal/api/handler"
	"github.com/centralauth/centralauth/internal/api/response"
	"github.com/centralauth/centralauth/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and envelope error code.
//   - Renders field-keyed details for validation failures.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *handler.ValidationError
		if errors.As(err, &ve) {
			_ = response.Error(c, http.StatusBadRequest, "Validation failed",
				response.ErrorCodeValidationFailed, "One or more fields are invalid", ve.Fields)
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = response.Error(c, he.Code, fmt.Sprintf("%v", he.Message),
				codeForHTTPStatus(he.Code), fmt.Sprintf("%v", he.Message), nil)
			return
		}

		if status, code, msg := resolveDomainError(err); status != 0 {
			_ = response.Error(c, status, msg, code, msg, nil)
			return
		}

		// Unexpected error: log the real cause, return a generic message.
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")

		_ = response.Error(c, http.StatusInternalServerError, "Internal Server Error",
			response.ErrorCodeInternalError, "An unexpected error occurred while processing your request", nil)
	}
}

// resolveDomainError maps domain sentinel errors to deterministic HTTP
// statuses and envelope codes. Credential failures stay generic so the error
// never reveals whether the email exists.
func resolveDomainError(err error) (int, response.ErrorCode, string) {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, response.ErrorCodeDuplicateEntry, "User with this email already exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, response.ErrorCodeInvalidCredentials, "Invalid email or password"
	case errors.Is(err, domain.ErrTokenReuseDetected):
		return http.StatusUnauthorized, response.ErrorCodeTokenReuseDetected, "Refresh token reuse detected; all sessions revoked"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, response.ErrorCodeTokenExpired, "Token expired"
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, response.ErrorCodeInvalidToken, "Invalid or expired token"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, response.ErrorCodeResourceNotFound, "User not found"
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound, response.ErrorCodeResourceNotFound, "The specified client does not exist"
	case errors.Is(err, domain.ErrPublicClientSecret):
		return http.StatusUnprocessableEntity, response.ErrorCodeInvalidOperation, "Public clients have no client secret"
	case errors.Is(err, domain.ErrInvalidRedirectURI),
		errors.Is(err, domain.ErrUnknownGrantType),
		errors.Is(err, domain.ErrUnknownResponseType):
		return http.StatusBadRequest, response.ErrorCodeValidationFailed, err.Error()
	case errors.Is(err, domain.ErrDuplicateClientID):
		return http.StatusConflict, response.ErrorCodeDuplicateEntry, "client_id already exists"
	}
	return 0, "", ""
}

func codeForHTTPStatus(status int) response.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return response.ErrorCodeInvalidRequest
	case http.StatusUnauthorized:
		return response.ErrorCodeUnauthorized
	case http.StatusForbidden:
		return response.ErrorCodeForbidden
	case http.StatusNotFound:
		return response.ErrorCodeResourceNotFound
	case http.StatusTooManyRequests:
		return response.ErrorCodeRateLimitExceeded
	default:
		return response.ErrorCodeInternalError
	}
}
