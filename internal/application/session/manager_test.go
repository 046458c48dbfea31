package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	identityapp "github.com/xgrltd/storefront/internal/application/identity"
	"github.com/xgrltd/storefront/internal/domain/identity"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 24*time.Hour, cfg.TTL)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, identityapp.DefaultConfig(), cfg.Auth)
}

func TestManager_OpenNewSession(t *testing.T) {
	m, _, metrics := newTestManager(t, identityapp.Config{})

	s, created := m.Open(context.Background(), "not-a-uuid")
	require.True(t, created)
	_, err := uuid.Parse(s.ID())
	assert.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", s.ID())
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, metrics.opened)
}

func TestManager_OpenReusesLiveSession(t *testing.T) {
	m, _, metrics := newTestManager(t, identityapp.Config{})
	ctx := context.Background()

	first, _ := m.Open(ctx, "")
	second, created := m.Open(ctx, first.ID())

	assert.False(t, created)
	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, metrics.opened)
}

func TestManager_OpenHydratesStoredIdentity(t *testing.T) {
	m, storages, _ := newTestManager(t, identityapp.Config{})
	id := uuid.NewString()
	storages.slots[id] = &identity.Identity{ID: "user-1", Name: "jane", Email: "jane@example.com"}

	s, created := m.Open(context.Background(), id)
	require.True(t, created)
	assert.Equal(t, id, s.ID())

	state := s.Auth().State()
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "jane", state.Identity.Name)
}

func TestManager_OpenNormalizesUUID(t *testing.T) {
	m, _, _ := newTestManager(t, identityapp.Config{})
	id := uuid.New()

	s, _ := m.Open(context.Background(), "urn:uuid:"+id.String())
	assert.Equal(t, id.String(), s.ID())

	again, created := m.Open(context.Background(), id.String())
	assert.False(t, created)
	assert.Same(t, s, again)
}

func TestManager_ConcurrentOpen(t *testing.T) {
	m, _, metrics := newTestManager(t, identityapp.Config{})
	id := uuid.NewString()

	var wg sync.WaitGroup
	got := make([]*Session, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = m.Open(context.Background(), id)
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, metrics.opened)
}

func TestManager_Sweep(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	storages := newMemStorages()
	metrics := &fakeMetrics{}
	m := NewManager(Config{TTL: time.Hour}, storages.factory, zap.NewNop())
	m.SetMetrics(metrics)
	m.SetClock(clock.Now)
	defer m.Close(context.Background())
	ctx := context.Background()

	idle, _ := m.Open(ctx, "")
	_, err := idle.Auth().Login(ctx, "jane@example.com", "secret")
	require.NoError(t, err)
	opCtx, cancel := idle.Begin(ctx)
	defer cancel()

	clock.Advance(45 * time.Minute)
	active, _ := m.Open(ctx, "")

	clock.Advance(30 * time.Minute)
	_, _ = m.Open(ctx, active.ID())

	assert.Equal(t, 1, m.Sweep(ctx))
	assert.Equal(t, 1, m.Len())
	_, ok := m.Get(idle.ID())
	assert.False(t, ok)
	_, ok = m.Get(active.ID())
	assert.True(t, ok)

	require.Eventually(t, func() bool { return opCtx.Err() != nil }, time.Second, time.Millisecond)
	assert.ErrorIs(t, context.Cause(opCtx), ErrSessionClosed)
	assert.NotNil(t, storages.get(idle.ID()), "persisted identity outlives the session")
	assert.Equal(t, 1, metrics.closed)
}

func TestManager_SweepDisabled(t *testing.T) {
	m := NewManager(Config{}, newMemStorages().factory, zap.NewNop())
	defer m.Close(context.Background())
	m.Open(context.Background(), "")

	assert.Zero(t, m.Sweep(context.Background()))
	assert.Equal(t, 1, m.Len())
}

func TestManager_RunStopsWithContext(t *testing.T) {
	clock := &manualClock{now: time.Now()}
	m := NewManager(Config{TTL: time.Minute, SweepInterval: time.Millisecond}, newMemStorages().factory, zap.NewNop())
	m.SetClock(clock.Now)
	m.Open(context.Background(), "")
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestManager_Close(t *testing.T) {
	m, _, metrics := newTestManager(t, identityapp.Config{})
	ctx := context.Background()
	a, _ := m.Open(ctx, "")
	m.Open(ctx, "")

	opCtx, cancel := a.Begin(ctx)
	defer cancel()

	m.Close(ctx)
	assert.Zero(t, m.Len())
	assert.Equal(t, 2, metrics.closed)
	require.Eventually(t, func() bool { return opCtx.Err() != nil }, time.Second, time.Millisecond)
	assert.ErrorIs(t, context.Cause(opCtx), ErrSessionClosed)
}
