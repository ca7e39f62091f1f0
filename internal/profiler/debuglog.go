package profiler

import (
	"sync"
	"time"
)

const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
	LevelDump    = "dump"
)

// DebugMessage is one entry of a request's debug log.
type DebugMessage struct {
	Message   string         `json:"message"`
	Level     string         `json:"level"`
	Context   map[string]any `json:"context"`
	Timestamp float64        `json:"timestamp"`
}

// DebugLog accumulates messages for a single request. A nil *DebugLog
// discards everything, so callers never need to check for one.
type DebugLog struct {
	mu       sync.Mutex
	now      func() time.Time
	messages []DebugMessage
}

func NewDebugLog(now func() time.Time) *DebugLog {
	if now == nil {
		now = time.Now
	}
	return &DebugLog{now: now}
}

func (d *DebugLog) Log(message, level string, context map[string]any) {
	if d == nil {
		return
	}
	if context == nil {
		context = map[string]any{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.messages = append(d.messages, DebugMessage{
		Message:   message,
		Level:     level,
		Context:   context,
		Timestamp: float64(d.now().UnixMicro()) / 1e6,
	})
}

func (d *DebugLog) Info(message string, context map[string]any) {
	d.Log(message, LevelInfo, context)
}

func (d *DebugLog) Warning(message string, context map[string]any) {
	d.Log(message, LevelWarning, context)
}

func (d *DebugLog) Error(message string, context map[string]any) {
	d.Log(message, LevelError, context)
}

// Dump records an arbitrary value under a label.
func (d *DebugLog) Dump(v any, label string) {
	if label == "" {
		label = "Variable dump"
	}
	d.Log(label, LevelDump, map[string]any{"data": v})
}

// Messages returns a copy of the accumulated messages in insertion order.
func (d *DebugLog) Messages() []DebugMessage {
	if d == nil {
		return []DebugMessage{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]DebugMessage, len(d.messages))
	copy(out, d.messages)
	return out
}

func (d *DebugLog) Clear() {
	if d == nil {
		return
	}

	d.mu.Lock()
	d.messages = nil
	d.mu.Unlock()
}
