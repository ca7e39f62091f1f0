package ratelimit

import (
	"context"
	"fmt"
	"time"
)

type FixedWindowLimiter struct {
	counter Counter
	prefix  string
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewFixedWindow allows limit calls per key in each window. prefix namespaces
// the counter keys so several limiters can share one redis.
func NewFixedWindow(counter Counter, prefix string, limit int, window time.Duration) *FixedWindowLimiter {
	if window < time.Second {
		window = time.Second
	}

	return &FixedWindowLimiter{
		counter: counter,
		prefix:  prefix,
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

func (f *FixedWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	seconds := int64(f.window / time.Second)
	current := f.now().Unix() / seconds
	counterKey := fmt.Sprintf("ratelimit:%s:%s:%d", f.prefix, key, current)

	count, err := f.counter.Incr(ctx, counterKey, f.window)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to count %s: %w", counterKey, err)
	}

	remaining := f.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= int64(f.limit),
		Limit:     f.limit,
		Remaining: remaining,
		ResetAt:   time.Unix((current+1)*seconds, 0),
	}, nil
}
