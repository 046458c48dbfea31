package cache

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/xgrltd/storefront/internal/domain/shared"
)

type item struct {
	value    []byte
	deadline time.Time // zero never expires
}

func (it item) live(now time.Time) bool {
	return it.deadline.IsZero() || !now.After(it.deadline)
}

// MemoryKeyValueStore keeps keys in process memory. Nothing survives a
// restart, so it suits tests and single-instance development.
type MemoryKeyValueStore struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration
	now   func() time.Time

	stop context.CancelFunc
	done chan struct{}
}

// NewMemoryKeyValueStore returns an empty store. With a positive ttl a key
// expires that long after its last write and a janitor goroutine evicts it.
// Close stops the janitor.
func NewMemoryKeyValueStore(ttl time.Duration) *MemoryKeyValueStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &MemoryKeyValueStore{
		items: make(map[string]item),
		ttl:   ttl,
		now:   time.Now,
		stop:  cancel,
		done:  make(chan struct{}),
	}
	if ttl <= 0 {
		close(s.done)
		return s
	}
	go s.janitor(ctx, min(max(ttl/2, time.Second), 5*time.Minute))
	return s
}

func (s *MemoryKeyValueStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()

	if !ok || !it.live(s.now()) {
		return nil, fmt.Errorf("key %q: %w", key, shared.ErrNotFound)
	}
	return slices.Clone(it.value), nil
}

// Set stores a copy of value and restarts the key's ttl
func (s *MemoryKeyValueStore) Set(_ context.Context, key string, value []byte) error {
	it := item{value: slices.Clone(value)}
	if s.ttl > 0 {
		it.deadline = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
	return nil
}

func (s *MemoryKeyValueStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Keys lists the live keys under prefix in sorted order
func (s *MemoryKeyValueStore) Keys(_ context.Context, prefix string) ([]string, error) {
	now := s.now()

	s.mu.RLock()
	keys := []string{}
	for k, it := range s.items {
		if strings.HasPrefix(k, prefix) && it.live(now) {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()

	slices.Sort(keys)
	return keys, nil
}

// Close stops the janitor and waits for it. Calling it again is a no-op.
func (s *MemoryKeyValueStore) Close() error {
	s.stop()
	<-s.done
	return nil
}

func (s *MemoryKeyValueStore) janitor(ctx context.Context, every time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evict()
		}
	}
}

// evict drops expired keys
func (s *MemoryKeyValueStore) evict() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.DeleteFunc(s.items, func(_ string, it item) bool { return !it.live(now) })
}

// Size counts stored keys, including expired ones the janitor has not
// evicted yet
func (s *MemoryKeyValueStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
