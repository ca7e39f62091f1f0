package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/repository"
	"github.com/aman-churiwal/devtools-profiler/internal/settings"
)

const settingsCacheKey = "devtools:settings"

// Cache is the subset of the redis client the settings service needs
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// SettingsService reads and writes the profiler's dev_tools/ configuration.
// Reads go through the cache when one is configured.
type SettingsService struct {
	repo  *repository.ConfigRepository
	cache Cache
	ttl   time.Duration
}

func NewSettingsService(repo *repository.ConfigRepository, cache Cache, ttl time.Duration) *SettingsService {
	return &SettingsService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

// Load returns the current settings. It satisfies profiler.SettingsProvider.
func (s *SettingsService) Load(ctx context.Context) (settings.Settings, error) {
	values, err := s.Values(ctx)
	if err != nil {
		return settings.Settings{}, err
	}
	return settings.Parse(values), nil
}

// Values returns the raw path → value map
func (s *SettingsService) Values(ctx context.Context) (map[string]string, error) {
	if values, ok := s.cached(ctx); ok {
		return values, nil
	}

	values, err := s.repo.FindByPrefix(ctx, settings.PathPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiler settings: %w", err)
	}

	s.store(ctx, values)

	return values, nil
}

// Save writes values and drops the cached copy
func (s *SettingsService) Save(ctx context.Context, values map[string]string) error {
	if err := s.repo.SaveMany(ctx, values); err != nil {
		return fmt.Errorf("failed to save profiler settings: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *SettingsService) cached(ctx context.Context) (map[string]string, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, settingsCacheKey)
	if err != nil {
		log.Printf("Settings cache read failed: %v", err)
		return nil, false
	}
	if raw == "" {
		return nil, false
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, false
	}

	return values, true
}

func (s *SettingsService) store(ctx context.Context, values map[string]string) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(values)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, settingsCacheKey, data, s.ttl); err != nil {
		log.Printf("Settings cache write failed: %v", err)
	}
}

func (s *SettingsService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, settingsCacheKey); err != nil {
		log.Printf("Settings cache invalidation failed: %v", err)
	}
}
