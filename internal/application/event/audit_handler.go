// Package event holds the in-process subscribers of storefront domain events.
package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/xgrltd/storefront/internal/domain/shared"
)

// AuditHandler writes every domain event to the log
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	return &AuditHandler{logger: logger.Named("audit")}
}

// EventTypes returns nil: the handler receives all events
func (h *AuditHandler) EventTypes() []string {
	return nil
}

// Handle logs the event envelope
func (h *AuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("session_id", event.SessionID()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}
