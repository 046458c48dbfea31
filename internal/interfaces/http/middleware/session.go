package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xgrltd/storefront/internal/application/session"
	"github.com/xgrltd/storefront/internal/infrastructure/logger"
)

// SessionKey is the gin key holding the request's *session.Session
const SessionKey = "session"

// SessionOpener resolves a browser session from its cookie value
type SessionOpener interface {
	Open(ctx context.Context, id string) (*session.Session, bool)
}

// SessionConfig describes the session cookie
type SessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Domain     string
	Path       string
	Secure     bool
	SameSite   http.SameSite
}

// ParseSameSite maps a config value to http.SameSite; unknown values are lax
func ParseSameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Session attaches the caller's session to the request, creating one when
// the cookie is missing or unknown. The cookie is re-issued on every
// response so its expiry slides with activity.
func Session(opener SessionOpener, cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cfg.CookieName)
		s, _ := opener.Open(c.Request.Context(), id)

		c.Set(SessionKey, s)
		logger.AttachSession(c, s.ID())

		c.SetSameSite(cfg.SameSite)
		c.SetCookie(cfg.CookieName, s.ID(), int(cfg.MaxAge.Seconds()), cfg.Path, cfg.Domain, cfg.Secure, true)
		c.Next()
	}
}

// CurrentSession returns the session attached by Session
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	s, ok := c.Value(SessionKey).(*session.Session)
	return s, ok && s != nil
}
