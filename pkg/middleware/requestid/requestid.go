package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderKey is the HTTP header used to propagate request IDs.
const HeaderKey = "X-Request-ID"

const contextKey = "request_id"

// Middleware tags every request with an ID. An inbound X-Request-ID is
// trusted as-is so IDs stay stable across proxy hops.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderKey)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(HeaderKey, id)
		c.Next()
	}
}

// Value returns the request ID from the Gin context, or "" when the
// middleware did not run.
func Value(c *gin.Context) string {
	id, _ := c.Value(contextKey).(string)
	return id
}
