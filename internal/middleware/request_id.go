// Package middleware provides gin middleware shared by the API routes.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKey is a custom type for gin context keys to avoid collisions
type ContextKey string

const (
	// RequestIDKey is the context key holding the current request ID
	RequestIDKey ContextKey = "RequestID"

	// RequestIDHeader carries the request ID in both directions
	RequestIDHeader = "X-Request-ID"
)

// RequestID echoes the client's X-Request-ID or generates a new UUID, stores it
// in the context and sets it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(string(RequestIDKey), requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID returns the request ID stored by RequestID, or "unknown"
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(string(RequestIDKey)); id != "" {
		return id
	}
	return "unknown"
}
