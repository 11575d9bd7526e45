package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xelth-com/poslabel/internal/models"
)

// DB stores settings documents in the settings table.
type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

func (r *DB) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var rec models.SettingsRecord
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("load settings %q: %w", key, err)
	}
	return json.RawMessage(rec.Value), nil
}

func (r *DB) Put(ctx context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("settings %q: value is not valid JSON", key)
	}
	rec := models.SettingsRecord{Key: key, Value: datatypes.JSON(value), UpdatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("store settings %q: %w", key, err)
	}
	return nil
}

func (r *DB) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := r.db.WithContext(ctx).Model(&models.SettingsRecord{}).Order("key").Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return keys, nil
}
