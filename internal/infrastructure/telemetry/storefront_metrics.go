package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Auth outcomes recorded on storefront.auth.attempts
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeCancelled = "cancelled"
)

// StorefrontMetrics holds the shopper-facing counters and histograms
type StorefrontMetrics struct {
	itemsAdded     metric.Int64Counter
	linesRemoved   metric.Int64Counter
	checkouts      metric.Int64Counter
	orderValue     metric.Float64Histogram
	orderItems     metric.Float64Histogram
	authAttempts   metric.Int64Counter
	guardRedirects metric.Int64Counter
	activeSessions metric.Int64UpDownCounter
}

// NewStorefrontMetrics registers the storefront instruments on meter
func NewStorefrontMetrics(meter metric.Meter) (*StorefrontMetrics, error) {
	in := NewInstruments(meter)
	m := &StorefrontMetrics{
		itemsAdded:     in.Counter("storefront.cart.items_added", "Units added to carts", "{item}"),
		linesRemoved:   in.Counter("storefront.cart.lines_removed", "Cart lines removed", "{line}"),
		checkouts:      in.Counter("storefront.checkout.completed", "Completed checkouts", "{order}"),
		orderValue:     in.Histogram("storefront.checkout.order_value", "Checkout total including tax", "NGN", OrderValueBuckets),
		orderItems:     in.Histogram("storefront.checkout.order_items", "Units per checkout", "{item}", ItemCountBuckets),
		authAttempts:   in.Counter("storefront.auth.attempts", "Login, signup and logout attempts", "{attempt}"),
		guardRedirects: in.Counter("storefront.guard.redirects", "Route guard redirects", "{redirect}"),
		activeSessions: in.UpDownCounter("storefront.sessions.active", "Live shopper sessions", "{session}"),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// MustNewStorefrontMetrics is NewStorefrontMetrics for wiring code that
// cannot recover
func MustNewStorefrontMetrics(meter metric.Meter) *StorefrontMetrics {
	m, err := NewStorefrontMetrics(meter)
	if err != nil {
		panic(fmt.Sprintf("telemetry: %v", err))
	}
	return m
}

// RecordItemAdded counts units added for a product
func (m *StorefrontMetrics) RecordItemAdded(ctx context.Context, productID, quantity int) {
	m.itemsAdded.Add(ctx, int64(quantity), metric.WithAttributes(AttrProductID.Int(productID)))
}

// RecordLineRemoved counts a removed cart line
func (m *StorefrontMetrics) RecordLineRemoved(ctx context.Context, productID int) {
	m.linesRemoved.Add(ctx, 1, metric.WithAttributes(AttrProductID.Int(productID)))
}

// RecordCheckout counts a checkout and records its total and unit count
func (m *StorefrontMetrics) RecordCheckout(ctx context.Context, total int64, items int) {
	m.checkouts.Add(ctx, 1)
	m.orderValue.Record(ctx, float64(total))
	m.orderItems.Record(ctx, float64(items))
}

// RecordAuth counts an auth action ("login", "signup", "logout") with its
// outcome
func (m *StorefrontMetrics) RecordAuth(ctx context.Context, action, outcome string) {
	m.authAttempts.Add(ctx, 1, metric.WithAttributes(AttrAction.String(action), AttrOutcome.String(outcome)))
}

// RecordGuardRedirect counts a redirect issued by the route guard
func (m *StorefrontMetrics) RecordGuardRedirect(ctx context.Context, from, to string) {
	m.guardRedirects.Add(ctx, 1, metric.WithAttributes(AttrRoute.String(from), AttrRedirect.String(to)))
}

// SessionOpened increments the live session gauge
func (m *StorefrontMetrics) SessionOpened(ctx context.Context) {
	m.activeSessions.Add(ctx, 1)
}

// SessionClosed decrements the live session gauge
func (m *StorefrontMetrics) SessionClosed(ctx context.Context) {
	m.activeSessions.Add(ctx, -1)
}
