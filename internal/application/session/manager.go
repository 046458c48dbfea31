package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	identityapp "github.com/xgrltd/storefront/internal/application/identity"
	"github.com/xgrltd/storefront/internal/domain/identity"
	"github.com/xgrltd/storefront/internal/domain/shared"
	"github.com/xgrltd/storefront/internal/infrastructure/logger"
)

// StorageFactory returns the identity storage of one session
type StorageFactory func(sessionID string) identity.Storage

// Metrics receives session lifecycle and auth measurements
type Metrics interface {
	identityapp.AuthMetrics
	RecordGuardRedirect(ctx context.Context, from, to string)
	SessionOpened(ctx context.Context)
	SessionClosed(ctx context.Context)
}

// Config holds session registry settings
type Config struct {
	TTL           time.Duration
	SweepInterval time.Duration
	Auth          identityapp.Config
}

// DefaultConfig returns the registry settings the storefront ships with
func DefaultConfig() Config {
	return Config{
		TTL:           24 * time.Hour,
		SweepInterval: time.Minute,
		Auth:          identityapp.DefaultConfig(),
	}
}

// Manager is the in-process registry of browser sessions
type Manager struct {
	config    Config
	storage   StorageFactory
	publisher shared.EventPublisher
	metrics   Metrics
	now       func() time.Time
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session registry
func NewManager(config Config, storage StorageFactory, log *zap.Logger) *Manager {
	return &Manager{
		config:   config,
		storage:  storage,
		now:      time.Now,
		logger:   log,
		sessions: make(map[string]*Session),
	}
}

// SetEventPublisher sets the publisher auth events go to
func (m *Manager) SetEventPublisher(publisher shared.EventPublisher) {
	m.publisher = publisher
}

// SetMetrics sets the session and auth metrics recorder
func (m *Manager) SetMetrics(metrics Metrics) {
	m.metrics = metrics
}

// SetClock replaces the clock used for idle tracking
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Open returns the live session for id. An unknown id that is a valid UUID
// is reopened and its stored identity hydrated, so a browser keeps its login
// across restarts; anything else gets a fresh session. The second result
// reports whether a session was created.
func (m *Manager) Open(ctx context.Context, id string) (*Session, bool) {
	if s, ok := m.Get(id); ok {
		s.Touch(m.now())
		return s, false
	}
	if parsed, err := uuid.Parse(id); err == nil {
		id = parsed.String()
	} else {
		id = uuid.NewString()
	}

	s := m.newSession(id)
	s.auth.Hydrate(ctx)

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		s.close()
		existing.Touch(m.now())
		return existing, false
	}
	m.sessions[id] = s
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SessionOpened(ctx)
	}
	logger.WithLogger(ctx, m.logger).Debug("Session opened",
		zap.String("session_id", id),
		zap.Bool("authenticated", s.auth.State().IsAuthenticated),
	)
	return s, true
}

func (m *Manager) newSession(id string) *Session {
	var onRedirect RedirectFunc
	if m.metrics != nil {
		onRedirect = m.metrics.RecordGuardRedirect
	}
	s := newSession(id, m.now(), onRedirect)

	opts := []identityapp.Option{}
	if m.metrics != nil {
		opts = append(opts, identityapp.WithMetrics(m.metrics))
	}
	s.auth = identityapp.NewAuthStore(s, m.storage(id), m.publisher, m.config.Auth, m.logger, opts...)
	return s
}

// Get returns a live session without touching it
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the TTL and cancels their
// pending operations. Persisted identities are kept. It returns how many
// sessions were dropped.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.config.TTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.config.TTL)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
		if m.metrics != nil {
			m.metrics.SessionClosed(ctx)
		}
	}
	if len(expired) > 0 {
		logger.WithLogger(ctx, m.logger).Info("Expired idle sessions",
			zap.Int("count", len(expired)),
			zap.Int("remaining", m.Len()),
		)
	}
	return len(expired)
}

// Run sweeps idle sessions every sweep interval until ctx is done
func (m *Manager) Run(ctx context.Context) error {
	interval := m.config.SweepInterval
	if interval <= 0 {
		interval = DefaultConfig().SweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("Session sweeper started",
		zap.Duration("interval", interval),
		zap.Duration("ttl", m.config.TTL),
	)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Session sweeper stopped")
			return nil
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Close drops every session and cancels their pending operations
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
		if m.metrics != nil {
			m.metrics.SessionClosed(ctx)
		}
	}
}
