package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key under which the request ID is stored.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware tags every request with an ID that is echoed back in
// the X-Request-ID header and embedded in response metadata. A client-supplied
// ID is kept so the exam frontend can correlate autosave retries.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}
