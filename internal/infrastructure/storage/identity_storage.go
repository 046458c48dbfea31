package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xgrltd/storefront/internal/domain/identity"
)

// identityKeySuffix is the only key the auth flow writes per session
const identityKeySuffix = "user"

// IdentityKey returns the storage key holding a session's identity,
// "<prefix>:session:<id>:user", or "session:<id>:user" with no prefix.
func IdentityKey(prefix, sessionID string) string {
	key := "session:" + sessionID + ":" + identityKeySuffix
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

// SessionKeyPrefix returns the prefix shared by every session key
func SessionKeyPrefix(prefix string) string {
	if prefix == "" {
		return "session:"
	}
	return prefix + ":session:"
}

// IdentityStorage persists one session's identity as JSON in a KeyValueStore
type IdentityStorage struct {
	kv  KeyValueStore
	key string
}

// NewIdentityStorage scopes kv to sessionID
func NewIdentityStorage(kv KeyValueStore, prefix, sessionID string) *IdentityStorage {
	return &IdentityStorage{kv: kv, key: IdentityKey(prefix, sessionID)}
}

// Key returns the storage key this instance reads and writes
func (s *IdentityStorage) Key() string {
	return s.key
}

// Load returns the stored identity, nil when none is stored, or an error
// matching identity.ErrMalformedIdentity when the value cannot be decoded.
func (s *IdentityStorage) Load(ctx context.Context) (*identity.Identity, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return DecodeIdentity(data)
}

// Save writes id under the session key
func (s *IdentityStorage) Save(ctx context.Context, id identity.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	return s.kv.Set(ctx, s.key, data)
}

// Clear removes the session key
func (s *IdentityStorage) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key)
}

// DecodeIdentity parses a stored identity. A value that is not a JSON object
// with a non-empty id is malformed.
func DecodeIdentity(data []byte) (*identity.Identity, error) {
	var id identity.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrMalformedIdentity, err)
	}
	if id.ID == "" {
		return nil, fmt.Errorf("%w: missing id", identity.ErrMalformedIdentity)
	}
	return &id, nil
}

var _ identity.Storage = (*IdentityStorage)(nil)
