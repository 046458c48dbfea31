package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	cartapp "github.com/xgrltd/storefront/internal/application/cart"
	identityapp "github.com/xgrltd/storefront/internal/application/identity"
	"github.com/xgrltd/storefront/internal/domain/identity"
	"github.com/xgrltd/storefront/internal/domain/shared"
	"github.com/xgrltd/storefront/internal/infrastructure/fixtures"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memStorages hands out one in-memory identity slot per session
type memStorages struct {
	mu    sync.Mutex
	slots map[string]*identity.Identity
}

func newMemStorages() *memStorages {
	return &memStorages{slots: make(map[string]*identity.Identity)}
}

func (m *memStorages) factory(sessionID string) identity.Storage {
	return &memStorage{parent: m, id: sessionID}
}

func (m *memStorages) get(sessionID string) *identity.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[sessionID]
}

type memStorage struct {
	parent *memStorages
	id     string
}

func (s *memStorage) Load(context.Context) (*identity.Identity, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	return s.parent.slots[s.id], nil
}

func (s *memStorage) Save(_ context.Context, id identity.Identity) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.parent.slots[s.id] = &id
	return nil
}

func (s *memStorage) Clear(context.Context) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	delete(s.parent.slots, s.id)
	return nil
}

type fakeMetrics struct {
	mu        sync.Mutex
	auth      []string
	redirects []string
	opened    int
	closed    int
}

func (f *fakeMetrics) RecordAuth(_ context.Context, action, outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, action+":"+outcome)
}

func (f *fakeMetrics) RecordGuardRedirect(_ context.Context, from, to string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redirects = append(f.redirects, from+"->"+to)
}

func (f *fakeMetrics) SessionOpened(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened++
}

func (f *fakeMetrics) SessionClosed(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
}

func newTestManager(t *testing.T, auth identityapp.Config) (*Manager, *memStorages, *fakeMetrics) {
	t.Helper()
	storages := newMemStorages()
	metrics := &fakeMetrics{}
	m := NewManager(Config{TTL: time.Hour, SweepInterval: time.Millisecond, Auth: auth}, storages.factory, zap.NewNop())
	m.SetMetrics(metrics)
	t.Cleanup(func() { m.Close(context.Background()) })
	return m, storages, metrics
}

func TestSession_StartsAtHome(t *testing.T) {
	m, _, _ := newTestManager(t, identityapp.Config{})
	s, created := m.Open(context.Background(), "")

	assert.True(t, created)
	assert.Equal(t, identity.HomePath, s.Location())
	assert.False(t, s.Auth().State().IsAuthenticated)
}

func TestSession_VisitRouteGuard(t *testing.T) {
	tests := []struct {
		path       string
		want       string
		redirected bool
	}{
		{"/", "/", false},
		{"/team", "/team", false},
		{"/login", "/login", false},
		{"/cartoons", "/cartoons", false},
		{"/cart", identity.LoginPath, true},
		{"/products/3", identity.LoginPath, true},
		{"/dashboard/orders/ORD-1", identity.LoginPath, true},
		{"/checkout/success", identity.LoginPath, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, _, metrics := newTestManager(t, identityapp.Config{})
			s, _ := m.Open(context.Background(), "")

			got, redirected := s.Visit(context.Background(), tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.redirected, redirected)
			assert.Equal(t, tt.want, s.Location())
			if tt.redirected {
				assert.Equal(t, []string{tt.path + "->" + identity.LoginPath}, metrics.redirects)
			} else {
				assert.Empty(t, metrics.redirects)
			}
		})
	}
}

func TestSession_LoginThenProtectedRoute(t *testing.T) {
	m, storages, _ := newTestManager(t, identityapp.Config{})
	ctx := context.Background()
	s, _ := m.Open(ctx, "")

	s.Visit(ctx, identity.LoginPath)
	_, err := s.Auth().Login(ctx, "jane@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, identity.DashboardPath, s.Location())
	assert.Equal(t, "jane", storages.get(s.ID()).Name)

	got, redirected := s.Visit(ctx, "/cart")
	assert.Equal(t, "/cart", got)
	assert.False(t, redirected)
}

func TestSession_LogoutOnProtectedRoute(t *testing.T) {
	m, storages, _ := newTestManager(t, identityapp.Config{})
	ctx := context.Background()
	s, _ := m.Open(ctx, "")

	_, err := s.Auth().Login(ctx, "jane@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, s.Auth().Logout(ctx))

	assert.Equal(t, identity.HomePath, s.Location())
	assert.Nil(t, storages.get(s.ID()))
}

func TestSession_BeginCancelledByNavigation(t *testing.T) {
	m, _, _ := newTestManager(t, identityapp.Config{})
	s, _ := m.Open(context.Background(), "")

	opCtx, cancel := s.Begin(context.Background())
	defer cancel()

	s.Navigate("/") // same location keeps the epoch
	require.NoError(t, opCtx.Err())

	s.Navigate("/team")
	select {
	case <-opCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("operation context not cancelled")
	}
	assert.ErrorIs(t, context.Cause(opCtx), ErrNavigatedAway)
}

func TestSession_CommitRejectsStaleEpoch(t *testing.T) {
	m, _, _ := newTestManager(t, identityapp.Config{})
	s, _ := m.Open(context.Background(), "")

	opCtx, cancel := s.Begin(context.Background())
	defer cancel()
	s.Navigate("/team")

	ran := false
	err := s.Commit(opCtx, func(identity.Navigator) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, shared.ErrOperationCancelled)
	assert.False(t, ran)
}

func TestSession_CommitWithoutBegin(t *testing.T) {
	m, _, _ := newTestManager(t, identityapp.Config{})
	s, _ := m.Open(context.Background(), "")
	s.Navigate("/team")

	err := s.Commit(context.Background(), func(nav identity.Navigator) error {
		nav.Navigate("/login")
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, "/login", s.Location())
}

func TestSession_LoginCancelledByNavigation(t *testing.T) {
	m, storages, metrics := newTestManager(t, identityapp.Config{LoginDelay: time.Hour})
	ctx := context.Background()
	s, _ := m.Open(ctx, "")
	s.Visit(ctx, identity.LoginPath)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Auth().Login(ctx, "jane@example.com", "secret")
		errCh <- err
	}()

	require.Eventually(t, func() bool { return s.Pending() == 1 }, time.Second, time.Millisecond)
	s.Visit(ctx, "/team")

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, shared.ErrOperationCancelled)
	case <-time.After(5 * time.Second):
		t.Fatal("login did not return")
	}

	assert.Equal(t, "/team", s.Location())
	assert.False(t, s.Auth().State().IsAuthenticated)
	assert.Nil(t, storages.get(s.ID()))
	assert.Equal(t, []string{"login:cancelled"}, metrics.auth)
}

func TestSession_CheckoutCancelledByNavigation(t *testing.T) {
	m, _, _ := newTestManager(t, identityapp.Config{})
	ctx := context.Background()
	s, _ := m.Open(ctx, "")
	_, err := s.Auth().Login(ctx, "jane@example.com", "secret")
	require.NoError(t, err)

	svc := cartapp.NewCartService(fixtures.MustLoad(), cartapp.Config{CheckoutDelay: time.Hour}, zap.NewNop())
	_, err = svc.AddItem(ctx, s, cartapp.AddItemRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	s.Visit(ctx, "/cart")

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Checkout(ctx, s)
		errCh <- err
	}()

	require.Eventually(t, func() bool { return s.Pending() == 1 }, time.Second, time.Millisecond)
	s.Visit(ctx, "/products")

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, shared.ErrOperationCancelled)
	case <-time.After(5 * time.Second):
		t.Fatal("checkout did not return")
	}

	c, err := svc.Get(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 2, c.TotalItemCount)
	assert.Equal(t, "/products", s.Location())
	_, ok := s.LastReceipt()
	assert.False(t, ok)
}

func TestSession_CheckoutCompletes(t *testing.T) {
	m, _, _ := newTestManager(t, identityapp.Config{})
	ctx := context.Background()
	s, _ := m.Open(ctx, "")
	_, err := s.Auth().Login(ctx, "jane@example.com", "secret")
	require.NoError(t, err)

	cfg := cartapp.DefaultConfig()
	cfg.CheckoutDelay = 0
	svc := cartapp.NewCartService(fixtures.MustLoad(), cfg, zap.NewNop())
	svc.SetOrderNumberGenerator(func() string { return "ORD-123456" })

	_, err = svc.AddItem(ctx, s, cartapp.AddItemRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	receipt, err := svc.Checkout(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "ORD-123456", receipt.OrderNumber)
	assert.Equal(t, identity.CheckoutSuccessPath, s.Location())

	last, ok := s.LastReceipt()
	require.True(t, ok)
	assert.Equal(t, *receipt, last)
	assert.Zero(t, s.Pending())
}

func TestSession_Touch(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newSession("id", base, nil)
	defer s.close()

	s.Touch(base.Add(-time.Minute))
	assert.Equal(t, base, s.LastSeen())
	s.Touch(base.Add(time.Minute))
	assert.Equal(t, base.Add(time.Minute), s.LastSeen())
}
