package identity

import (
	"github.com/google/uuid"
	"github.com/xgrltd/storefront/internal/domain/shared"
)

// Event type constants
const (
	EventTypeUserLoggedIn  = "UserLoggedIn"
	EventTypeUserSignedUp  = "UserSignedUp"
	EventTypeUserLoggedOut = "UserLoggedOut"
)

// AuthEvent is published on every auth state transition
type AuthEvent struct {
	shared.EventHeader
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// NewAuthEvent creates an AuthEvent for the given transition. Identities are
// not uuid keyed, so the aggregate id is derived from the user id.
func NewAuthEvent(eventType, sessionID string, id Identity) *AuthEvent {
	return &AuthEvent{
		EventHeader: shared.NewEventHeader(eventType, AggregateTypeIdentity, AggregateID(id.ID), sessionID),
		UserID:      id.ID,
		Email:       id.Email,
	}
}

var identityNamespace = uuid.MustParse("5f0c1f52-9a55-4a8c-8f38-3c1f3b1b7a10")

// AggregateID maps a user id onto a stable uuid
func AggregateID(userID string) uuid.UUID {
	return uuid.NewSHA1(identityNamespace, []byte(userID))
}
