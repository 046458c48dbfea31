// Package identity holds the per-session mock Auth Store.
package identity

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xgrltd/storefront/internal/application/delay"
	"github.com/xgrltd/storefront/internal/domain/identity"
	"github.com/xgrltd/storefront/internal/domain/shared"
	"github.com/xgrltd/storefront/internal/domain/shared/valueobject"
	"github.com/xgrltd/storefront/internal/infrastructure/logger"
)

// Auth actions reported to AuthMetrics
const (
	ActionLogin  = "login"
	ActionSignup = "signup"
	ActionLogout = "logout"
)

// Auth outcomes reported to AuthMetrics
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// AuthMetrics records auth attempts
type AuthMetrics interface {
	RecordAuth(ctx context.Context, action, outcome string)
}

// Config holds the simulated backend latency
type Config struct {
	LoginDelay  time.Duration
	SignupDelay time.Duration
}

// DefaultConfig returns the delays the storefront ships with
func DefaultConfig() Config {
	return Config{
		LoginDelay:  time.Second,
		SignupDelay: time.Second,
	}
}

// Option configures an AuthStore
type Option func(*AuthStore)

// WithClock overrides the clock used to mint signup ids
func WithClock(now func() time.Time) Option {
	return func(s *AuthStore) { s.now = now }
}

// WithMetrics reports every auth attempt to m
func WithMetrics(m AuthMetrics) Option {
	return func(s *AuthStore) { s.metrics = m }
}

// AuthStore is one session's mock authentication state. Identity changes are
// written to storage and applied through the session's Commit so a pending
// login is dropped when the shopper navigates away.
type AuthStore struct {
	session   identity.Session
	storage   identity.Storage
	publisher shared.EventPublisher
	metrics   AuthMetrics
	config    Config
	now       func() time.Time
	logger    *zap.Logger

	mu    sync.RWMutex
	state identity.State
}

// NewAuthStore creates an anonymous AuthStore for session
func NewAuthStore(
	session identity.Session,
	storage identity.Storage,
	publisher shared.EventPublisher,
	config Config,
	log *zap.Logger,
	opts ...Option,
) *AuthStore {
	s := &AuthStore{
		session:   session,
		storage:   storage,
		publisher: publisher,
		config:    config,
		now:       time.Now,
		logger:    log.With(zap.String("session_id", session.ID())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the auth state
func (s *AuthStore) State() identity.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return identity.NewState(s.state.Identity)
}

func (s *AuthStore) setState(id *identity.Identity) {
	s.mu.Lock()
	s.state = identity.NewState(id)
	s.mu.Unlock()
}

// Hydrate loads the persisted identity. Missing, malformed or unreadable
// data leaves the store anonymous; only the latter two are logged.
func (s *AuthStore) Hydrate(ctx context.Context) identity.State {
	id, err := s.storage.Load(ctx)
	switch {
	case errors.Is(err, identity.ErrMalformedIdentity):
		logger.WithLogger(ctx, s.logger).Warn("Discarding malformed stored identity", zap.Error(err))
		id = nil
	case err != nil:
		logger.WithLogger(ctx, s.logger).Error("Failed to load stored identity", zap.Error(err))
		id = nil
	}

	if err := s.session.Commit(ctx, func(identity.Navigator) error {
		s.setState(id)
		return nil
	}); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Identity hydration dropped", zap.Error(err))
	}
	return s.State()
}

// Login signs in as the fixed mock user after the login delay. The name is
// the local part of email. A malformed email or an empty password is
// rejected with identity.ErrInvalidCredentials before any delay.
func (s *AuthStore) Login(ctx context.Context, email, password string) (identity.Identity, error) {
	email = strings.TrimSpace(email)
	if !valueobject.IsValidEmail(email) || password == "" {
		s.record(ctx, ActionLogin, OutcomeRejected)
		return identity.Identity{}, identity.ErrInvalidCredentials
	}

	id := identity.Identity{
		ID:    identity.LoginIdentityID,
		Name:  identity.NameFromEmail(email),
		Email: email,
	}
	return s.signIn(ctx, ActionLogin, identity.EventTypeUserLoggedIn, s.config.LoginDelay, id)
}

// Signup registers a new mock user after the signup delay. The id is
// "user-" plus the current Unix time in milliseconds.
func (s *AuthStore) Signup(ctx context.Context, name, email, password string) (identity.Identity, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || !valueobject.IsValidEmail(email) || password == "" {
		s.record(ctx, ActionSignup, OutcomeRejected)
		return identity.Identity{}, identity.ErrInvalidCredentials
	}

	id := identity.Identity{
		ID:    "user-" + strconv.FormatInt(s.now().UnixMilli(), 10),
		Name:  name,
		Email: email,
	}
	return s.signIn(ctx, ActionSignup, identity.EventTypeUserSignedUp, s.config.SignupDelay, id)
}

func (s *AuthStore) signIn(ctx context.Context, action, eventType string, wait time.Duration, id identity.Identity) (identity.Identity, error) {
	opCtx, cancel := s.session.Begin(ctx)
	defer cancel()

	if err := delay.Wait(opCtx, wait); err != nil {
		s.record(ctx, action, OutcomeCancelled)
		logger.WithLogger(ctx, s.logger).Info("Auth operation cancelled", zap.String("action", action))
		return identity.Identity{}, err
	}

	err := s.session.Commit(opCtx, func(nav identity.Navigator) error {
		if err := s.storage.Save(opCtx, id); err != nil {
			return err
		}
		s.setState(&id)
		nav.Navigate(identity.DashboardPath)
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrOperationCancelled) {
			s.record(ctx, action, OutcomeCancelled)
		} else {
			s.record(ctx, action, OutcomeFailed)
			logger.WithLogger(ctx, s.logger).Error("Failed to persist identity", zap.String("action", action), zap.Error(err))
		}
		return identity.Identity{}, err
	}

	s.record(ctx, action, OutcomeSuccess)
	s.publish(ctx, identity.NewAuthEvent(eventType, s.session.ID(), id))
	logger.WithLogger(ctx, s.logger).Info("Signed in",
		zap.String("action", action),
		zap.String("user_id", id.ID),
	)
	return id, nil
}

// Logout forgets the identity in state and storage and navigates home.
// Logging out an anonymous session still navigates home.
func (s *AuthStore) Logout(ctx context.Context) error {
	var previous *identity.Identity
	err := s.session.Commit(ctx, func(nav identity.Navigator) error {
		if err := s.storage.Clear(ctx); err != nil {
			return err
		}
		previous = s.State().Identity
		s.setState(nil)
		nav.Navigate(identity.HomePath)
		return nil
	})
	if err != nil {
		s.record(ctx, ActionLogout, OutcomeFailed)
		return err
	}

	s.record(ctx, ActionLogout, OutcomeSuccess)
	if previous != nil {
		s.publish(ctx, identity.NewAuthEvent(identity.EventTypeUserLoggedOut, s.session.ID(), *previous))
	}
	return nil
}

// CheckAuthAndRedirect reports whether the session is authenticated. When it
// is not, the session is sent to redirectTo, or to the login page when
// redirectTo is empty.
func (s *AuthStore) CheckAuthAndRedirect(redirectTo string) bool {
	if s.State().IsAuthenticated {
		return true
	}
	if redirectTo == "" {
		redirectTo = identity.LoginPath
	}
	s.session.Navigate(redirectTo)
	return false
}

func (s *AuthStore) record(ctx context.Context, action, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAuth(ctx, action, outcome)
	}
}

func (s *AuthStore) publish(ctx context.Context, event shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Failed to publish auth event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}
