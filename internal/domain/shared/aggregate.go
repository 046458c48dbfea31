package shared

import (
	"time"

	"github.com/google/uuid"
)

// Aggregate is embedded by state that records domain events while it is
// mutated. Callers drain the events with PullDomainEvents once the mutation
// is stored.
type Aggregate struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	revision  int
	pending   []DomainEvent
}

// NewAggregate returns a fresh aggregate at revision 1
func NewAggregate() Aggregate {
	now := time.Now()
	return Aggregate{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		revision:  1,
	}
}

// Revision grows by one with every state change
func (a *Aggregate) Revision() int {
	return a.revision
}

// Bump marks a state change
func (a *Aggregate) Bump() {
	a.revision++
	a.UpdatedAt = time.Now()
}

// Record queues events for publishing
func (a *Aggregate) Record(events ...DomainEvent) {
	a.pending = append(a.pending, events...)
}

// PendingEvents returns the queued events without draining them
func (a *Aggregate) PendingEvents() []DomainEvent {
	return a.pending
}

// DiscardEvents drops the queued events
func (a *Aggregate) DiscardEvents() {
	a.pending = nil
}

// PullDomainEvents drains the queued events
func (a *Aggregate) PullDomainEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
