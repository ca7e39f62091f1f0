package repository

import (
	"context"
	"strings"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/models"
	"github.com/aman-churiwal/devtools-profiler/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfigRepository struct {
	db *storage.Database
}

func NewConfigRepository(db *storage.Database) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Returns path → value for every entry under prefix
func (r *ConfigRepository) FindByPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	var entries []models.ConfigEntry
	err := r.db.DB.WithContext(ctx).
		Where("path LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("path").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Path] = e.Value
	}

	return values, nil
}

func (r *ConfigRepository) Get(ctx context.Context, path string) (string, bool, error) {
	var entry models.ConfigEntry
	err := r.db.DB.WithContext(ctx).
		Where("path = ?", path).
		First(&entry).Error

	if err == gorm.ErrRecordNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return entry.Value, true, nil
}

// Inserts or updates all values in one transaction
func (r *ConfigRepository) SaveMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	now := time.Now().UTC()
	entries := make([]models.ConfigEntry, 0, len(values))
	for path, value := range values {
		entries = append(entries, models.ConfigEntry{Path: path, Value: value, UpdatedAt: now})
	}

	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entries).Error
	})
}

func (r *ConfigRepository) Save(ctx context.Context, path, value string) error {
	return r.SaveMany(ctx, map[string]string{path: value})
}

func (r *ConfigRepository) Delete(ctx context.Context, path string) error {
	return r.db.DB.WithContext(ctx).
		Where("path = ?", path).
		Delete(&models.ConfigEntry{}).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
