// Package storage persists session identities on a pluggable key-value
// backend: process memory, a JSON file, the SQL database or Redis.
package storage

import (
	"context"
	"errors"

	"github.com/xgrltd/storefront/internal/domain/shared"
)

// KeyValueStore is the contract every backend implements. Get reports a
// missing key with an error matching shared.ErrNotFound; Delete of a missing
// key succeeds.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// IsNotFound reports whether err means the key does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
