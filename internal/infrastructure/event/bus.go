// Package event delivers storefront domain events to in-process handlers.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xgrltd/storefront/internal/domain/shared"
	"github.com/xgrltd/storefront/internal/infrastructure/logger"
)

// ErrBusStopped is returned by Publish after Stop
var ErrBusStopped = errors.New("event bus stopped")

// InMemoryEventBus hands every event to its subscribers on the publishing
// goroutine. A failing or panicking handler is logged and skipped; the
// publisher never sees the failure.
type InMemoryEventBus struct {
	subs   *Subscriptions
	logger *zap.Logger

	mu       sync.Mutex
	stopped  bool
	inflight sync.WaitGroup
}

// NewInMemoryEventBus returns a bus that accepts events right away
func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		subs:   NewSubscriptions(),
		logger: log.Named("eventbus"),
	}
}

// Subscribe registers handler for eventTypes, defaulting to the handler's
// own EventTypes.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.subs.Add(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.subs.Remove(handler)
}

// Publish delivers events in order
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return ErrBusStopped
	}
	b.inflight.Add(1)
	b.mu.Unlock()
	defer b.inflight.Done()

	log := logger.WithLogger(ctx, b.logger)
	for _, evt := range events {
		for _, h := range b.subs.For(evt.EventType()) {
			if err := deliver(ctx, h, evt); err != nil {
				log.Error("event handler failed",
					zap.String("event_type", evt.EventType()),
					zap.Stringer("event_id", evt.EventID()),
					zap.String("session_id", evt.SessionID()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Start reopens a stopped bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	b.stopped = false
	b.mu.Unlock()
	b.logger.Info("event bus started", zap.Int("handlers", b.subs.Len()))
	return nil
}

// Stop rejects further events and waits for running deliveries or ctx
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func deliver(ctx context.Context, h shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, evt)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
