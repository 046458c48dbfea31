package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xgrltd/storefront/internal/infrastructure/logger"
)

// HeaderRequestID carries the request id in both directions
const HeaderRequestID = "X-Request-ID"

// MaxRequestIDLength caps a client supplied request id
const MaxRequestIDLength = 128

// RequestID tags each request with an id, keeping the client's when it sends
// one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		switch {
		case id == "":
			id = strings.ReplaceAll(uuid.NewString(), "-", "")
		case len(id) > MaxRequestIDLength:
			id = id[:MaxRequestIDLength]
		}
		c.Set(logger.GinRequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
