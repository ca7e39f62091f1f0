package service

import (
	"context"
	"fmt"
	"math"

	"github.com/aman-churiwal/devtools-profiler/internal/profiler"
	"github.com/aman-churiwal/devtools-profiler/internal/settings"
)

// ProfilerAdminService implements the enable, disable, status and key
// generation actions shared by the admin API and the CLI.
type ProfilerAdminService struct {
	settings *SettingsService
	keys     *KeyGenerator
	memory   profiler.MemoryReader
}

func NewProfilerAdminService(settingsService *SettingsService, keys *KeyGenerator, memory profiler.MemoryReader) *ProfilerAdminService {
	if keys == nil {
		keys = NewKeyGenerator(nil)
	}
	if memory == nil {
		memory = profiler.RuntimeMemory{}
	}

	return &ProfilerAdminService{
		settings: settingsService,
		keys:     keys,
		memory:   memory,
	}
}

type Status struct {
	Settings        settings.Settings `json:"settings"`
	HasAPIKey       bool              `json:"has_api_key"`
	CurrentMemoryMb float64           `json:"current_memory_mb"`
}

// Enable switches the profiler on with the default configuration
func (s *ProfilerAdminService) Enable(ctx context.Context) (settings.Settings, error) {
	if err := s.settings.Save(ctx, settings.EnableDefaults()); err != nil {
		return settings.Settings{}, err
	}
	return s.settings.Load(ctx)
}

func (s *ProfilerAdminService) Disable(ctx context.Context) error {
	return s.settings.Save(ctx, map[string]string{settings.PathEnabled: "0"})
}

func (s *ProfilerAdminService) Status(ctx context.Context) (*Status, error) {
	current, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	usage := s.memory.Read()

	return &Status{
		Settings:        current,
		HasAPIKey:       current.HasAPIKey(),
		CurrentMemoryMb: math.Round(usage.CurrentMb()*100) / 100,
	}, nil
}

type APIKeyResult struct {
	Key         string `json:"api_key"`
	Regenerated bool   `json:"regenerated"`
}

// GenerateAPIKey creates a key and turns on key validation. When a key
// already exists and regenerate is false, the existing key is returned with
// ErrAPIKeyExists.
func (s *ProfilerAdminService) GenerateAPIKey(ctx context.Context, regenerate bool) (*APIKeyResult, error) {
	current, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	if current.HasAPIKey() && !regenerate {
		return &APIKeyResult{Key: current.APIKey}, ErrAPIKeyExists
	}

	key := s.keys.Generate()
	err = s.settings.Save(ctx, map[string]string{
		settings.PathAPIKey:        key,
		settings.PathAPIKeyEnabled: "1",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store api key: %w", err)
	}

	return &APIKeyResult{Key: key, Regenerated: current.HasAPIKey()}, nil
}
