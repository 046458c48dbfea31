package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	"github.com/xgrltd/storefront/internal/infrastructure/telemetry"
)

// httpMetrics holds the HTTP server instruments
type httpMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	size     metric.Float64Histogram
	inflight metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	in := telemetry.NewInstruments(meter)
	m := &httpMetrics{
		requests: in.Counter("http_server_request_total", "Total number of HTTP requests", "{request}"),
		latency: in.Histogram("http_server_request_duration_seconds",
			"HTTP request latency distribution in seconds", "s", telemetry.HTTPDurationBuckets),
		size: in.Histogram("http_server_response_size_bytes",
			"HTTP response body size distribution in bytes", "By", telemetry.ResponseSizeBuckets),
		inflight: in.UpDownCounter("http_server_active_requests", "Number of currently active HTTP requests", "{request}"),
	}
	return m, in.Err()
}

// HTTPMetrics records request count, latency and response size per route.
// A nil meter or a failing instrument setup yields a pass-through
// middleware.
func HTTPMetrics(meter metric.Meter) gin.HandlerFunc {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		m.inflight.Add(ctx, 1)
		c.Next()
		m.inflight.Add(ctx, -1)

		authenticated := false
		if s, ok := CurrentSession(c); ok {
			authenticated = s.Auth().State().IsAuthenticated
		}
		m.record(ctx, c.Request.Method, routePattern(c), c.Writer.Status(), authenticated, time.Since(start), c.Writer.Size())
	}
}

func (m *httpMetrics) record(ctx context.Context, method, route string, status int, authenticated bool, d time.Duration, size int) {
	byRoute := metric.WithAttributes(
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPRoute.String(route),
	)
	m.requests.Add(ctx, 1, byRoute, metric.WithAttributes(
		telemetry.AttrHTTPStatusCode.Int(status),
		telemetry.AttrAuthenticated.Bool(authenticated),
	))
	m.latency.Record(ctx, d.Seconds(), byRoute)
	if size > 0 {
		m.size.Record(ctx, float64(size), byRoute)
	}
}

// routePattern returns the matched route ("/api/v1/cart/items/:product_id")
// so product ids do not blow up metric cardinality
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}
