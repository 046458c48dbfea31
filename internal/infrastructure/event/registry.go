package event

import (
	"slices"
	"sync"

	"github.com/xgrltd/storefront/internal/domain/shared"
)

// anyType keys handlers that subscribed without naming an event type
const anyType = "*"

// Subscriptions maps event types to the handlers that want them
type Subscriptions struct {
	mu     sync.RWMutex
	byType map[string][]shared.EventHandler
}

// NewSubscriptions returns an empty subscription table
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{byType: make(map[string][]shared.EventHandler)}
}

// Add subscribes h to eventTypes, or to every type when none are given.
// Adding the same handler twice for a type is a no-op.
func (s *Subscriptions) Add(h shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{anyType}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range eventTypes {
		if !slices.Contains(s.byType[t], h) {
			s.byType[t] = append(slices.Clip(s.byType[t]), h)
		}
	}
}

// Remove drops h from every type it was subscribed to
func (s *Subscriptions) Remove(h shared.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t, hs := range s.byType {
		kept := slices.DeleteFunc(slices.Clone(hs), func(x shared.EventHandler) bool { return x == h })
		if len(kept) == 0 {
			delete(s.byType, t)
			continue
		}
		s.byType[t] = kept
	}
}

// For returns the handlers for eventType: type subscribers first, then
// catch-all subscribers. Each handler appears once.
func (s *Subscriptions) For(eventType string) []shared.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.byType[eventType])
	for _, h := range s.byType[anyType] {
		if !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	return out
}

// Len counts distinct subscribed handlers
func (s *Subscriptions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var seen []shared.EventHandler
	for _, hs := range s.byType {
		for _, h := range hs {
			if !slices.Contains(seen, h) {
				seen = append(seen, h)
			}
		}
	}
	return len(seen)
}
