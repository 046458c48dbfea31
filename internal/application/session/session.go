// Package session hosts one Cart Store and one Auth Store per browser session
// and tracks where each browser currently is.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xgrltd/storefront/internal/application/cart"
	"github.com/xgrltd/storefront/internal/application/delay"
	identityapp "github.com/xgrltd/storefront/internal/application/identity"
	domaincart "github.com/xgrltd/storefront/internal/domain/cart"
	"github.com/xgrltd/storefront/internal/domain/identity"
)

var (
	// ErrNavigatedAway is the cancellation cause of operations begun before a
	// navigation.
	ErrNavigatedAway = errors.New("session navigated away")
	// ErrSessionClosed is the cancellation cause once the session expired.
	ErrSessionClosed = errors.New("session closed")
)

type epochKey struct{}

// RedirectFunc observes route guard redirects
type RedirectFunc func(ctx context.Context, from, to string)

// Session is one browser. It implements identity.Session.
//
// Lock order: mu, then cartMu, then the auth store's lock.
type Session struct {
	id         string
	onRedirect RedirectFunc

	mu          sync.Mutex
	location    string
	epoch       uint64
	epochCtx    context.Context
	epochCancel context.CancelCauseFunc
	lastSeen    time.Time
	receipt     *cart.Receipt

	cartMu sync.Mutex
	cart   *domaincart.Cart

	auth *identityapp.AuthStore

	pending atomic.Int32
}

func newSession(id string, now time.Time, onRedirect RedirectFunc) *Session {
	epochCtx, epochCancel := context.WithCancelCause(context.Background())
	return &Session{
		id:          id,
		onRedirect:  onRedirect,
		location:    identity.HomePath,
		epochCtx:    epochCtx,
		epochCancel: epochCancel,
		lastSeen:    now,
		cart:        domaincart.NewCart(id),
	}
}

// ID returns the session id carried in the cookie
func (s *Session) ID() string {
	return s.id
}

// Auth returns the session's Auth Store
func (s *Session) Auth() *identityapp.AuthStore {
	return s.auth
}

// Location returns the path the browser is on
func (s *Session) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// Navigate moves the session to path and runs the route guard
func (s *Session) Navigate(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigateLocked(path)
	s.guardLocked(context.Background())
}

// Visit records that the browser opened path. It returns where the browser
// ends up and whether the route guard redirected it.
func (s *Session) Visit(ctx context.Context, path string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigateLocked(path)
	redirected := s.guardLocked(ctx)
	return s.location, redirected
}

// Begin derives an operation context that is cancelled when ctx is done or
// the session navigates to another location.
func (s *Session) Begin(ctx context.Context) (context.Context, context.CancelFunc) {
	s.mu.Lock()
	epoch, epochCtx := s.epoch, s.epochCtx
	s.mu.Unlock()

	opCtx, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(epochCtx, func() {
		cancel(context.Cause(epochCtx))
	})
	opCtx = context.WithValue(opCtx, epochKey{}, epoch)

	s.pending.Add(1)
	var once sync.Once
	return opCtx, func() {
		once.Do(func() {
			stop()
			cancel(context.Canceled)
			s.pending.Add(-1)
		})
	}
}

// Pending returns the number of operations begun and not yet finished
func (s *Session) Pending() int {
	return int(s.pending.Load())
}

// Commit runs fn with navigation blocked. A context from Begin is rejected
// once the session navigated after it was created. The route guard runs
// after fn.
func (s *Session) Commit(ctx context.Context, fn func(nav identity.Navigator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return delay.Cancelled(context.Cause(ctx))
	}
	if epoch, ok := ctx.Value(epochKey{}).(uint64); ok && epoch != s.epoch {
		return delay.Cancelled(ErrNavigatedAway)
	}

	err := fn(identity.NavigatorFunc(s.navigateLocked))
	s.guardLocked(ctx)
	return err
}

// WithCart runs fn with exclusive access to the cart
func (s *Session) WithCart(fn func(c *domaincart.Cart) error) error {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()
	return fn(s.cart)
}

// RememberReceipt keeps the latest checkout for the success page
func (s *Session) RememberReceipt(r cart.Receipt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipt = &r
}

// LastReceipt returns the latest checkout of this session
func (s *Session) LastReceipt() (cart.Receipt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.receipt == nil {
		return cart.Receipt{}, false
	}
	return *s.receipt, true
}

// Touch marks the session as used at now
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}

// LastSeen returns when the session was last used
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// close cancels every pending operation
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epochCancel(ErrSessionClosed)
}

func (s *Session) navigateLocked(path string) {
	if path == s.location {
		return
	}
	s.location = path
	s.epoch++
	s.epochCancel(ErrNavigatedAway)
	s.epochCtx, s.epochCancel = context.WithCancelCause(context.Background())
}

func (s *Session) guardLocked(ctx context.Context) bool {
	if s.auth == nil {
		return false
	}
	to := identity.GuardRedirect(s.location, s.auth.State())
	if to == "" {
		return false
	}
	from := s.location
	s.navigateLocked(to)
	if s.onRedirect != nil {
		s.onRedirect(ctx, from, to)
	}
	return true
}

var (
	_ identity.Session = (*Session)(nil)
	_ cart.Shopper     = (*Session)(nil)
)
