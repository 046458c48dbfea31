package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xgrltd/storefront/internal/domain/shared"
	"github.com/xgrltd/storefront/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists the models AutoMigrate manages
func AutoMigrateModels() []any {
	return []any{&models.KeyValueModel{}}
}

// GormKeyValueStore stores keys in the storefront_kv table
type GormKeyValueStore struct {
	db *gorm.DB
}

// NewGormKeyValueStore creates a new key-value store over db
func NewGormKeyValueStore(db *gorm.DB) *GormKeyValueStore {
	return &GormKeyValueStore{db: db}
}

// Get returns the value stored under key, or shared.ErrNotFound
func (s *GormKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	var model models.KeyValueModel
	err := s.db.WithContext(ctx).Where("id = ?", key).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("key %q: %w", key, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return []byte(model.Value), nil
}

// Set upserts value under key
func (s *GormKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now()
	model := models.KeyValueModel{
		Key:       key,
		Value:     string(value),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *GormKeyValueStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("id = ?", key).Delete(&models.KeyValueModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Keys returns every key starting with prefix, sorted
func (s *GormKeyValueStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&models.KeyValueModel{}).
		Where("id LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("id").
		Pluck("id", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// Close is a no-op; the Database owns the connection
func (s *GormKeyValueStore) Close() error {
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
