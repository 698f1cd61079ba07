package common

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AppError is a domain error that knows how it is surfaced over HTTP.
type AppError struct {
	Code    string
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

const (
	CodeMissingAuth          = "MISSING_AUTH"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeInvalidAuthHeader    = "INVALID_AUTH_HEADER"
	CodeForbidden            = "FORBIDDEN"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeInvalidTenant        = "INVALID_TENANT"
	CodeEmailExists          = "EMAIL_EXISTS"
	CodeSessionExpired       = "SESSION_EXPIRED"
	CodeTenantNotFound       = "TENANT_NOT_FOUND"
	CodeNotFound             = "NOT_FOUND"
	CodeQuotaExceeded        = "QUOTA_EXCEEDED"
	CodePaymentProviderError = "PAYMENT_PROVIDER_ERROR"
	CodeTooManyAttempts      = "TOO_MANY_ATTEMPTS"
	CodeValidation           = "VALIDATION_ERROR"
)

var (
	ErrMissingAuth        = &AppError{Code: CodeMissingAuth, Status: http.StatusUnauthorized, Message: "Missing Authorization header"}
	ErrInvalidAuthHeader  = &AppError{Code: CodeInvalidAuthHeader, Status: http.StatusUnauthorized, Message: "Invalid Authorization header"}
	ErrInvalidToken       = &AppError{Code: CodeInvalidToken, Status: http.StatusUnauthorized, Message: "Invalid token"}
	ErrForbidden          = &AppError{Code: CodeForbidden, Status: http.StatusForbidden, Message: "Admin role required"}
	ErrCrossTenant        = &AppError{Code: CodeForbidden, Status: http.StatusForbidden, Message: "Cannot upgrade another tenant"}
	ErrInvalidCredentials = &AppError{Code: CodeInvalidCredentials, Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	ErrInvalidTenant      = &AppError{Code: CodeInvalidTenant, Status: http.StatusBadRequest, Message: "Invalid tenant"}
	ErrEmailExists        = &AppError{Code: CodeEmailExists, Status: http.StatusBadRequest, Message: "Email already exists"}
	ErrSessionExpired     = &AppError{Code: CodeSessionExpired, Status: http.StatusUnauthorized, Message: "Session expired. Please sign in again."}
	ErrTenantNotFound     = &AppError{Code: CodeTenantNotFound, Status: http.StatusNotFound, Message: "Tenant not found"}
	ErrNotFound           = &AppError{Code: CodeNotFound, Status: http.StatusNotFound, Message: "Not found"}
	ErrQuotaExceeded      = &AppError{Code: CodeQuotaExceeded, Status: http.StatusPaymentRequired, Message: "Free plan limit reached for members. Upgrade to Pro."}
	ErrPaymentProvider    = &AppError{Code: CodePaymentProviderError, Status: http.StatusInternalServerError, Message: "Payment provider error"}
	ErrTooManyAttempts    = &AppError{Code: CodeTooManyAttempts, Status: http.StatusTooManyRequests, Message: "Too many login attempts. Try again later."}
)

// NewValidationError creates a 400 error for malformed input.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Status: http.StatusBadRequest, Message: message}
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler renders errors as {"error": "..."} with the status
// carried by AppError or echo.HTTPError. Anything else is logged and hidden
// behind a generic 500.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := statusAndMessage(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, ErrorResponse{Error: message})
		}
		if writeErr != nil {
			log.Warn("failed to write error response", zap.Error(writeErr))
		}
	}
}

func statusAndMessage(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status, appErr.Message
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	return http.StatusInternalServerError, "Internal server error"
}
