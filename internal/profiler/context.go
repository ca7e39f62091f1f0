package profiler

import (
	"context"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/settings"
)

// RequestContext holds everything the profiler accumulates for one request.
// It is created by the middleware and dropped when the request completes.
type RequestContext struct {
	ID       string
	Start    time.Time
	Settings settings.Settings
	Debug    *DebugLog
	Queries  *QueryLog
	Timers   *Timers

	// Filled in by the transport layer.
	ClientIP string
	Body     []byte
	Session  map[string]any
}

func NewRequestContext(id string, s settings.Settings, now func() time.Time) *RequestContext {
	if now == nil {
		now = time.Now
	}

	return &RequestContext{
		ID:       id,
		Start:    now(),
		Settings: s,
		Debug:    NewDebugLog(now),
		Queries:  NewQueryLog(),
		Timers:   NewTimers(now),
	}
}

type ctxKey struct{}

func WithRequest(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// FromContext returns the request's profiler state, or nil.
func FromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}
	rc, _ := ctx.Value(ctxKey{}).(*RequestContext)
	return rc
}

// Debug returns the request's debug log. The result is safe to use even when
// the request is not being profiled.
func Debug(ctx context.Context) *DebugLog {
	if rc := FromContext(ctx); rc != nil {
		return rc.Debug
	}
	return nil
}
