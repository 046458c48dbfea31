package event

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xgrltd/storefront/internal/domain/cart"
	"github.com/xgrltd/storefront/internal/domain/shared"
)

// Recorder receives cart and checkout measurements
type Recorder interface {
	RecordItemAdded(ctx context.Context, productID, quantity int)
	RecordLineRemoved(ctx context.Context, productID int)
	RecordCheckout(ctx context.Context, total int64, items int)
}

// MetricsHandler turns cart events into business metrics
type MetricsHandler struct {
	recorder Recorder
	logger   *zap.Logger
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(recorder Recorder, logger *zap.Logger) *MetricsHandler {
	return &MetricsHandler{recorder: recorder, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		cart.EventTypeCartItemAdded,
		cart.EventTypeCartItemRemoved,
		cart.EventTypeCheckoutCompleted,
	}
}

// Handle records the measurement carried by event
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *cart.ItemAddedEvent:
		h.recorder.RecordItemAdded(ctx, e.ProductID, e.Added)
	case *cart.ItemRemovedEvent:
		h.recorder.RecordLineRemoved(ctx, e.ProductID)
	case *cart.CheckoutCompletedEvent:
		h.recorder.RecordCheckout(ctx, e.Total, e.Items)
	default:
		h.logger.Error("unexpected event type",
			zap.Strings("expected", h.EventTypes()),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}
