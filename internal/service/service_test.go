package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/repository"
	"github.com/aman-churiwal/devtools-profiler/internal/storage"
	"gorm.io/gorm/logger"
)

func openTestDatabase(t *testing.T) *storage.Database {
	t.Helper()

	db, err := storage.NewDatabase(storage.DriverSQLite, ":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

type memoryCache struct {
	mu      sync.Mutex
	values  map[string]string
	gets    int
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string)}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.values[key], nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.values[key] = string(v)
	case string:
		c.values[key] = v
	}
	return nil
}

func (c *memoryCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	c.deletes++
	return nil
}

func newSettingsService(t *testing.T, cache Cache) (*SettingsService, *repository.ConfigRepository) {
	t.Helper()
	repo := repository.NewConfigRepository(openTestDatabase(t))
	return NewSettingsService(repo, cache, time.Minute), repo
}
