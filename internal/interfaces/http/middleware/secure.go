package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// SecurityConfig selects the hardening headers. Empty directives are not
// sent.
type SecurityConfig struct {
	HSTSEnabled           bool
	HSTSMaxAge            int // seconds
	HSTSIncludeSubdomains bool

	CSPDirective               string
	PermissionsPolicyDirective string
}

// DefaultSecurityConfig leaves HSTS off until the server sits behind HTTPS
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSMaxAge:                 31536000,
		HSTSIncludeSubdomains:      true,
		CSPDirective:               "default-src 'self'; img-src 'self' data: https:; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",
		PermissionsPolicyDirective: "camera=(), geolocation=(), microphone=(), payment=(), usb=()",
	}
}

func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecurityConfig())
}

// headers lists the header values sent on every response
func (cfg SecurityConfig) headers() [][2]string {
	out := [][2]string{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
	}
	if cfg.HSTSEnabled {
		hsts := "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		out = append(out, [2]string{"Strict-Transport-Security", hsts})
	}
	if cfg.CSPDirective != "" {
		out = append(out, [2]string{"Content-Security-Policy", cfg.CSPDirective})
	}
	if cfg.PermissionsPolicyDirective != "" {
		out = append(out, [2]string{"Permissions-Policy", cfg.PermissionsPolicyDirective})
	}
	return out
}

// SecureWithConfig sets the configured headers before the handler runs
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	headers := cfg.headers()
	return func(c *gin.Context) {
		for _, kv := range headers {
			c.Header(kv[0], kv[1])
		}
		c.Next()
	}
}
