package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the correlation identifier of a request.
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey is a gin context key holding the request identifier.
	RequestIDContextKey = "requestID"
	maxRequestIDLength  = 128
)

// RequestID propagates a caller supplied X-Request-ID or generates a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(RequestIDContextKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the identifier assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDContextKey)
}
