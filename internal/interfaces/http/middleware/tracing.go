package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xgrltd/storefront/internal/infrastructure/logger"
	"github.com/xgrltd/storefront/internal/infrastructure/telemetry"
)

type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPaths get no server span, e.g. the health probe
	SkipPaths []string
}

func DefaultTracingConfig() TracingConfig {
	return TracingConfig{ServiceName: "storefront", Enabled: true, SkipPaths: []string{"/health"}}
}

// Tracing opens a server span per request through otelgin. SpanEnricher adds
// the storefront attributes.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
		return !slices.Contains(cfg.SkipPaths, r.URL.Path)
	}))
}

// SpanEnricher tags the active span with the request id and, once the chain
// returns, with the session. 4xx and 5xx responses fail the span.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		var attrs []attribute.KeyValue
		if id := c.GetString(logger.GinRequestIDKey); id != "" {
			attrs = append(attrs, attribute.String("request_id", id))
		}
		span.SetAttributes(attrs...)

		c.Next()

		if s, ok := CurrentSession(c); ok {
			span.SetAttributes(
				telemetry.SessionIDKey.String(s.ID()),
				attribute.Bool("authenticated", s.Auth().State().IsAuthenticated),
			)
		}
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
