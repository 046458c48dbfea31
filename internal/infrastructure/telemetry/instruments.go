package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrAction    = attribute.Key("action")
	AttrOutcome   = attribute.Key("outcome")
	AttrProductID = attribute.Key("product_id")
	AttrRoute     = attribute.Key("route")
	AttrRedirect  = attribute.Key("redirect_to")

	AttrHTTPMethod     = attribute.Key("http_method")
	AttrHTTPRoute      = attribute.Key("http_route")
	AttrHTTPStatusCode = attribute.Key("http_status_code")
	AttrAuthenticated  = attribute.Key("authenticated")
)

// Histogram bucket boundaries
var (
	// HTTPDurationBuckets are in seconds. The top buckets cover the
	// simulated login and checkout delays.
	HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// ResponseSizeBuckets are in bytes
	ResponseSizeBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000}

	// OrderValueBuckets are checkout totals in naira
	OrderValueBuckets = []float64{1000, 5000, 10000, 25000, 50000, 100000, 250000, 500000, 1000000}

	// ItemCountBuckets are units per order
	ItemCountBuckets = []float64{1, 2, 3, 5, 8, 13, 21, 50}
)

// Instruments registers instruments on one meter and keeps the first
// registration error, so a block of instruments is checked once:
//
//	in := telemetry.NewInstruments(meter)
//	total := in.Counter("http_server_request_total", "Requests served", "{request}")
//	if err := in.Err(); err != nil { ... }
type Instruments struct {
	meter metric.Meter
	err   error
}

// NewInstruments returns a builder for meter
func NewInstruments(meter metric.Meter) *Instruments {
	return &Instruments{meter: meter}
}

// Counter registers a monotonic int64 counter
func (in *Instruments) Counter(name, description, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	in.keep(name, err)
	return c
}

// UpDownCounter registers an int64 counter that may go down
func (in *Instruments) UpDownCounter(name, description, unit string) metric.Int64UpDownCounter {
	c, err := in.meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	in.keep(name, err)
	return c
}

// Histogram registers a float64 histogram with explicit bucket bounds
func (in *Instruments) Histogram(name, description, unit string, bounds []float64) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{metric.WithDescription(description), metric.WithUnit(unit)}
	if len(bounds) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(bounds...))
	}
	h, err := in.meter.Float64Histogram(name, opts...)
	in.keep(name, err)
	return h
}

// Err returns the first registration error
func (in *Instruments) Err() error {
	return in.err
}

func (in *Instruments) keep(name string, err error) {
	if err != nil && in.err == nil {
		in.err = fmt.Errorf("register %s: %w", name, err)
	}
}
