package ratelimit

import (
	"context"
	"time"
)

// Counter increments key and returns the new value. The key expires after
// ttl, counted from its first increment.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the number of whole seconds until the window resets
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(d.ResetAt.Sub(now).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}
