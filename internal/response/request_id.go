package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// maxInboundRequestIDLen bounds client-supplied ids so log fields and
// response metadata stay sane.
const maxInboundRequestIDLen = 64

// RequestID tags every request with a correlation id, echoed in the
// X-Request-ID response header and in the response metadata block. An
// inbound id is honored so kiosk clients can correlate a replayed request
// with its first attempt; a missing or oversized one is replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" || len(id) > maxInboundRequestIDLen {
			id = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
