// Package middleware holds the gin middleware chain: recovery, request ids,
// CORS, logging, metrics, and authentication.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/pkg/logger"
)

const (
	// RequestIDHeader is the inbound/outbound request id header.
	RequestIDHeader = "X-Request-ID"
	// CorrelationIDHeader carries the id linking a request to the events it
	// produces.
	CorrelationIDHeader = "X-Correlation-ID"

	// RequestIDContextKey keys the request id in the gin context.
	RequestIDContextKey = "request_id"
	// CorrelationIDContextKey keys the correlation id in the gin context.
	CorrelationIDContextKey = "correlation_id"
)

// RequestID assigns each request a request id and a correlation id. Client
// supplied values are honored; missing ones are minted. Both ids land in the
// request context so every log record and event payload carries them.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = requestID
		}

		c.Set(RequestIDContextKey, requestID)
		c.Set(CorrelationIDContextKey, correlationID)
		c.Header(RequestIDHeader, requestID)
		c.Header(CorrelationIDHeader, correlationID)

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		ctx = logger.WithCorrelationID(ctx, correlationID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID reads the request id from the gin context.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDContextKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// GetCorrelationID reads the correlation id from the gin context.
func GetCorrelationID(c *gin.Context) string {
	if id, exists := c.Get(CorrelationIDContextKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
