package sqlite

import (
	"context"
	"errors"
	"fmt"

	"organizer/internal/domain/entity"
	"organizer/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kvStore struct {
	db *gorm.DB
}

// NewKVStore creates a KeyValueStore backed by the kv_entries table.
func NewKVStore(db *gorm.DB) repository.KeyValueStore {
	return &kvStore{db: db}
}

// Get retrieves the value stored under key.
func (s *kvStore) Get(ctx context.Context, key string) (string, bool, error) {
	var e entity.KVEntry
	if err := s.db.WithContext(ctx).Where("kv_key = ?", key).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return e.Value, true, nil
}

// Set upserts value under key.
func (s *kvStore) Set(ctx context.Context, key, value string) error {
	e := entity.KVEntry{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"kv_value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key; absent keys are ignored.
func (s *kvStore) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("kv_key = ?", key).Delete(&entity.KVEntry{}).Error; err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}
