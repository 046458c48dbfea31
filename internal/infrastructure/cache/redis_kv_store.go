package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xgrltd/storefront/internal/domain/shared"
	"github.com/xgrltd/storefront/internal/infrastructure/config"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisKeyValueStore stores keys in Redis, suitable when several server
// instances share sessions
type RedisKeyValueStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKeyValueStore wraps client. A positive ttl expires keys that long
// after their last write.
func NewRedisKeyValueStore(client *redis.Client, ttl time.Duration) *RedisKeyValueStore {
	return &RedisKeyValueStore{client: client, ttl: ttl}
}

// Get returns the value stored under key, or shared.ErrNotFound
func (s *RedisKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("key %q: %w", key, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return v, nil
}

// Set stores value under key
func (s *RedisKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *RedisKeyValueStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Keys returns every key starting with prefix, sorted. It walks the keyspace
// with SCAN rather than KEYS so large databases are not blocked.
func (s *RedisKeyValueStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, escapeGlob(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

// Close closes the Redis client
func (s *RedisKeyValueStore) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client
func (s *RedisKeyValueStore) Client() *redis.Client {
	return s.client
}

func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
