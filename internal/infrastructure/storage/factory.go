package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xgrltd/storefront/internal/infrastructure/cache"
	"github.com/xgrltd/storefront/internal/infrastructure/config"
	"github.com/xgrltd/storefront/internal/infrastructure/persistence"
)

// Backends carries the already opened connections a backend may need
type Backends struct {
	Database *persistence.Database // required by the database backend
}

// NewKeyValueStore builds the backend selected by cfg.Storage.Backend. The
// redis backend opens its own client, which the returned store's Close releases.
func NewKeyValueStore(ctx context.Context, cfg *config.Config, deps Backends, log *zap.Logger) (KeyValueStore, error) {
	var (
		store KeyValueStore
		err   error
	)

	switch cfg.Storage.Backend {
	case config.StorageBackendMemory:
		store = cache.NewMemoryKeyValueStore(cfg.Storage.TTL)
	case config.StorageBackendFile:
		store, err = NewFileKeyValueStore(cfg.Storage.FilePath)
	case config.StorageBackendDatabase:
		if deps.Database == nil {
			return nil, fmt.Errorf("storage backend %q needs a database connection", cfg.Storage.Backend)
		}
		store = persistence.NewGormKeyValueStore(deps.Database.DB)
	case config.StorageBackendRedis:
		client, cerr := cache.NewRedisClient(ctx, cfg.Redis)
		if cerr != nil {
			return nil, cerr
		}
		store = cache.NewRedisKeyValueStore(client, cfg.Storage.TTL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Identity storage ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("key_prefix", cfg.Storage.KeyPrefix),
	)
	return store, nil
}

var (
	_ KeyValueStore = (*FileKeyValueStore)(nil)
	_ KeyValueStore = (*cache.MemoryKeyValueStore)(nil)
	_ KeyValueStore = (*cache.RedisKeyValueStore)(nil)
	_ KeyValueStore = (*persistence.GormKeyValueStore)(nil)
)
