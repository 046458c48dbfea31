package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xgrltd/storefront/internal/infrastructure/logger"
	"github.com/xgrltd/storefront/internal/interfaces/http/dto"
)

// RouteGuard records a page visit on the session. When the route guard
// sends the session elsewhere the browser gets a 303 to that location.
// It must run after Session.
func RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := CurrentSession(c)
		if !ok {
			abortNoSession(c)
			return
		}

		path := c.Request.URL.Path
		location, redirected := s.Visit(c.Request.Context(), path)
		if redirected {
			logger.GetGinLogger(c).Debug("Route guard redirect",
				zap.String("from", path),
				zap.String("to", location),
			)
			c.Redirect(http.StatusSeeOther, location)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuth rejects API calls from anonymous sessions with 401
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := CurrentSession(c)
		if !ok {
			abortNoSession(c)
			return
		}
		if !s.Auth().State().IsAuthenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized,
				"Please log in to continue",
				c.GetString(logger.GinRequestIDKey),
			))
			return
		}
		c.Next()
	}
}

func abortNoSession(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"Session middleware is not installed",
		c.GetString(logger.GinRequestIDKey),
	))
}
