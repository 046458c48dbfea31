package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate and fanned out by the
// EventBus after the change is saved.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	// SessionID is empty for events outside a browser session
	SessionID() string
}

// EventHeader carries the metadata every event shares. Embedding it makes a
// struct a DomainEvent.
type EventHeader struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	At      time.Time `json:"occurred_at"`
	Source  uuid.UUID `json:"aggregate_id"`
	Kind    string    `json:"aggregate_type"`
	Session string    `json:"session_id,omitempty"`
}

// NewEventHeader stamps a fresh id and the current time
func NewEventHeader(eventType, aggregateType string, aggregateID uuid.UUID, sessionID string) EventHeader {
	return EventHeader{
		ID:      uuid.New(),
		Type:    eventType,
		At:      time.Now(),
		Source:  aggregateID,
		Kind:    aggregateType,
		Session: sessionID,
	}
}

func (h *EventHeader) EventID() uuid.UUID     { return h.ID }
func (h *EventHeader) EventType() string      { return h.Type }
func (h *EventHeader) OccurredAt() time.Time  { return h.At }
func (h *EventHeader) AggregateID() uuid.UUID { return h.Source }
func (h *EventHeader) AggregateType() string  { return h.Kind }
func (h *EventHeader) SessionID() string      { return h.Session }
