package service

import (
	"context"
	"errors"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/circuitbreaker"
)

// GuardedCache skips a failing cache for a while instead of paying its
// timeout on every profiled request. Calls refused by the breaker behave
// like a miss.
type GuardedCache struct {
	cache   Cache
	breaker *circuitbreaker.Breaker
}

func NewGuardedCache(cache Cache, breaker *circuitbreaker.Breaker) *GuardedCache {
	if breaker == nil {
		breaker = circuitbreaker.New(circuitbreaker.Config{})
	}
	return &GuardedCache{cache: cache, breaker: breaker}
}

func (g *GuardedCache) Get(ctx context.Context, key string) (string, error) {
	var val string
	err := g.breaker.Do(func() error {
		var err error
		val, err = g.cache.Get(ctx, key)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return "", nil
	}
	return val, err
}

func (g *GuardedCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	err := g.breaker.Do(func() error {
		return g.cache.Set(ctx, key, value, ttl)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil
	}
	return err
}

// Del bypasses the breaker so invalidations are never dropped
func (g *GuardedCache) Del(ctx context.Context, keys ...string) error {
	return g.cache.Del(ctx, keys...)
}
