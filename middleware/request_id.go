package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// maxRequestIDLength bounds ids accepted from clients
const maxRequestIDLength = 128

// RequestID tags every request with an id. A client supplied X-Request-ID is
// reused, otherwise a new UUID is generated. The id is echoed in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID extracts the request id from the Gin context
func GetRequestID(c *gin.Context) (string, error) {
	value, exists := c.Get(requestIDKey)
	if !exists {
		return "", &ContextError{Code: "MISSING_REQUEST_ID", Message: "Request ID not found in context"}
	}

	id, ok := value.(string)
	if !ok {
		return "", &ContextError{Code: "INVALID_REQUEST_ID", Message: "Request ID is not a string"}
	}

	return id, nil
}

// ContextError represents a missing or malformed value in the request context
type ContextError struct {
	Code    string
	Message string
}

func (e *ContextError) Error() string {
	return e.Message
}
