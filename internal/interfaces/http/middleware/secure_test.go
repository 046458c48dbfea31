package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecure_Defaults(t *testing.T) {
	h := serve(okRouter(Secure()), http.MethodGet, nil).Header()

	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Contains(t, h.Get("Permissions-Policy"), "payment=()")
	assert.Empty(t, h.Get("Strict-Transport-Security"))
}

func TestSecureWithConfig(t *testing.T) {
	tests := []struct {
		name   string
		edit   func(*SecurityConfig)
		header string
		want   string
	}{
		{"hsts with subdomains", func(c *SecurityConfig) { c.HSTSEnabled = true }, "Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
		{"hsts host only", func(c *SecurityConfig) {
			c.HSTSEnabled = true
			c.HSTSIncludeSubdomains = false
			c.HSTSMaxAge = 60
		}, "Strict-Transport-Security", "max-age=60"},
		{"csp disabled", func(c *SecurityConfig) { c.CSPDirective = "" }, "Content-Security-Policy", ""},
		{"permissions policy disabled", func(c *SecurityConfig) { c.PermissionsPolicyDirective = "" }, "Permissions-Policy", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSecurityConfig()
			tt.edit(&cfg)
			h := serve(okRouter(SecureWithConfig(cfg)), http.MethodGet, nil).Header()
			assert.Equal(t, tt.want, h.Get(tt.header))
			assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
		})
	}
}
