// Package common holds the shared HTTP response types. Separate from
// handlers and the router package to avoid an import cycle.
package common

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/Haleralex/ledgerhub/internal/domain/errors"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// APIError carries the machine-readable error kind plus structured details.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Fields  []FieldError   `json:"fields,omitempty"`
}

// FieldError reports one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// RequestIDKey is the gin context key carrying the request id.
const RequestIDKey = "X-Request-ID"

// GetRequestID reads the request id from the gin context.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// SetRequestID stores the request id and echoes it as a response header.
func SetRequestID(c *gin.Context, id string) {
	c.Set(RequestIDKey, id)
	c.Header(RequestIDKey, id)
}

// Success sends a successful envelope.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, APIResponse{
		Success:   true,
		Data:      data,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// Error sends an error envelope.
func Error(c *gin.Context, statusCode int, apiError *APIError) {
	c.JSON(statusCode, APIResponse{
		Success:   false,
		Error:     apiError,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// ValidationErrorResponse sends a 400 with per-field errors.
func ValidationErrorResponse(c *gin.Context, fields []FieldError) {
	Error(c, http.StatusBadRequest, &APIError{
		Code:    string(domainerrors.KindValidation),
		Message: "request validation failed",
		Fields:  fields,
	})
}

// BadRequestResponse sends a 400 with a free-form message.
func BadRequestResponse(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, &APIError{
		Code:    string(domainerrors.KindValidation),
		Message: message,
	})
}

// UnauthorizedResponse sends a 401.
func UnauthorizedResponse(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, &APIError{
		Code:    string(domainerrors.KindUnauthorized),
		Message: message,
	})
}

// InternalErrorResponse sends a 500 without leaking the cause.
func InternalErrorResponse(c *gin.Context) {
	Error(c, http.StatusInternalServerError, &APIError{
		Code:    string(domainerrors.KindInternal),
		Message: "an unexpected error occurred",
	})
}

// statusFor maps each error kind to its HTTP status. Business rule
// rejections are 422: the request was well formed but the ledger refuses it.
func statusFor(kind domainerrors.Kind) int {
	switch kind {
	case domainerrors.KindValidation:
		return http.StatusBadRequest
	case domainerrors.KindUnauthorized:
		return http.StatusUnauthorized
	case domainerrors.KindForbidden:
		return http.StatusForbidden
	case domainerrors.KindNotFound:
		return http.StatusNotFound
	case domainerrors.KindConflict:
		return http.StatusConflict
	case domainerrors.KindInsufficientFunds,
		domainerrors.KindCurrencyMismatch,
		domainerrors.KindAmountExceedsLimit,
		domainerrors.KindBalanceExceedsLimit,
		domainerrors.KindInvalidTransfer,
		domainerrors.KindInvalidState:
		return http.StatusUnprocessableEntity
	case domainerrors.KindRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// HandleDomainError renders a core error as an HTTP response. Internal
// errors hide their cause; everything else passes its message and details
// through.
func HandleDomainError(c *gin.Context, err error) {
	e, ok := domainerrors.As(err)
	if !ok || e.Kind == domainerrors.KindInternal {
		InternalErrorResponse(c)
		return
	}

	status := statusFor(e.Kind)
	if e.Kind == domainerrors.KindRateLimitExceeded {
		if resetAt, ok := e.Details["reset_at"].(int64); ok {
			retryAfter := resetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		}
	}

	Error(c, status, &APIError{
		Code:    string(e.Kind),
		Message: e.Message,
		Details: e.Details,
	})
}
