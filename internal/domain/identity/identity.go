package identity

import (
	"strings"

	"github.com/xgrltd/storefront/internal/domain/shared"
)

// AggregateTypeIdentity is the aggregate type recorded on auth events
const AggregateTypeIdentity = "Identity"

var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password. Please try again.")
	ErrMalformedIdentity  = shared.NewDomainError("MALFORMED_IDENTITY", "Stored identity could not be decoded")
	ErrNotAuthenticated   = shared.NewDomainError("UNAUTHORIZED", "Please log in to continue")
)

// Identity is the mock user a session is logged in as
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginIdentityID is the fixed id every login produces
const LoginIdentityID = "user-1"

// NameFromEmail returns the local part of an email address
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Status is the auth state machine's current state
type Status string

const (
	StatusAnonymous     Status = "anonymous"
	StatusAuthenticated Status = "authenticated"
)

// State is a snapshot of a session's auth state. IsAuthenticated is true
// exactly when Identity is non-nil.
type State struct {
	Identity        *Identity `json:"user"`
	IsAuthenticated bool      `json:"is_authenticated"`
}

// NewState builds a consistent State from an optional identity
func NewState(id *Identity) State {
	if id == nil {
		return State{}
	}
	cp := *id
	return State{Identity: &cp, IsAuthenticated: true}
}

// Status returns the state machine state
func (s State) Status() Status {
	if s.IsAuthenticated {
		return StatusAuthenticated
	}
	return StatusAnonymous
}
