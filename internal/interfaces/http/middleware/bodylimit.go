package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xgrltd/storefront/internal/infrastructure/logger"
	"github.com/xgrltd/storefront/internal/interfaces/http/dto"
)

// BodyLimit rejects request bodies larger than maxBytes. Requests without a
// Content-Length are capped while the handler reads them.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodePayloadTooLarge,
				"Request body exceeds maximum allowed size",
				c.GetString(logger.GinRequestIDKey),
			))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
