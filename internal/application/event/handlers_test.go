package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xgrltd/storefront/internal/domain/cart"
	"github.com/xgrltd/storefront/internal/domain/identity"
)

// MockRecorder is a mock implementation of Recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordItemAdded(ctx context.Context, productID, quantity int) {
	m.Called(ctx, productID, quantity)
}

func (m *MockRecorder) RecordLineRemoved(ctx context.Context, productID int) {
	m.Called(ctx, productID)
}

func (m *MockRecorder) RecordCheckout(ctx context.Context, total int64, items int) {
	m.Called(ctx, total, items)
}

func TestAuditHandler_LogsEveryEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewAuditHandler(zap.New(core))
	assert.Empty(t, h.EventTypes())

	event := identity.NewAuthEvent(identity.EventTypeUserLoggedIn, "sess-1", identity.Identity{ID: "user-1"})
	require.NoError(t, h.Handle(context.Background(), event))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "audit", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, identity.EventTypeUserLoggedIn, fields["event_type"])
	assert.Equal(t, "sess-1", fields["session_id"])
	assert.Equal(t, identity.AggregateID("user-1").String(), fields["aggregate_id"])
}

func TestMetricsHandler(t *testing.T) {
	ctx := context.Background()
	c := cart.NewCart("sess-1")
	require.NoError(t, c.AddItem(cart.LineItem{ProductID: 3, Name: "Speaker", UnitPrice: 45000}, 2))
	c.RemoveItem(3)
	events := c.PullDomainEvents()
	require.Len(t, events, 2)

	recorder := new(MockRecorder)
	recorder.On("RecordItemAdded", ctx, 3, 2).Once()
	recorder.On("RecordLineRemoved", ctx, 3).Once()
	recorder.On("RecordCheckout", ctx, int64(165000), 2).Once()

	h := NewMetricsHandler(recorder, zap.NewNop())
	for _, e := range events {
		require.NoError(t, h.Handle(ctx, e))
	}
	summary := cart.Summary{Subtotal: 150000, Tax: 15000, Total: 165000}
	require.NoError(t, h.Handle(ctx, cart.NewCheckoutCompletedEvent(c, "ORD-111111", summary, 1, 2)))

	recorder.AssertExpectations(t)
}

func TestMetricsHandler_UnexpectedEvent(t *testing.T) {
	h := NewMetricsHandler(new(MockRecorder), zap.NewNop())
	err := h.Handle(context.Background(), identity.NewAuthEvent(identity.EventTypeUserLoggedOut, "s", identity.Identity{ID: "u"}))
	assert.Error(t, err)
}
