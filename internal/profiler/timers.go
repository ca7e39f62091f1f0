package profiler

import (
	"sort"
	"sync"
	"time"
)

type timer struct {
	start time.Time
	end   time.Time
}

// Timers tracks named wall-clock spans within a request.
type Timers struct {
	mu     sync.Mutex
	now    func() time.Time
	timers map[string]*timer
	order  []string
}

func NewTimers(now func() time.Time) *Timers {
	if now == nil {
		now = time.Now
	}
	return &Timers{now: now, timers: make(map[string]*timer)}
}

func (t *Timers) Start(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.timers[name]; !exists {
		t.order = append(t.order, name)
	}
	t.timers[name] = &timer{start: t.now()}
}

// End stops a running timer. Unknown names are ignored.
func (t *Timers) End(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tm, ok := t.timers[name]; ok && tm.end.IsZero() {
		tm.end = t.now()
	}
}

// Duration of a timer; zero while running or unknown.
func (t *Timers) Duration(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	tm, ok := t.timers[name]
	if !ok || tm.end.IsZero() {
		return 0
	}
	return tm.end.Sub(tm.start)
}

// TimerData is the serialized form of a timer.
type TimerData struct {
	Duration          float64 `json:"duration"`
	DurationFormatted string  `json:"duration_formatted"`
	StartedAt         string  `json:"started_at"`
	EndedAt           *string `json:"ended_at"`
}

func (t *Timers) Data() map[string]TimerData {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := append([]string(nil), t.order...)
	sort.Strings(names)

	out := make(map[string]TimerData, len(names))
	for _, name := range names {
		tm := t.timers[name]
		var seconds float64
		var endedAt *string
		if !tm.end.IsZero() {
			seconds = tm.end.Sub(tm.start).Seconds()
			s := tm.end.Format("15:04:05.000000")
			endedAt = &s
		}

		out[name] = TimerData{
			Duration:          seconds,
			DurationFormatted: FormatTime(seconds * 1000),
			StartedAt:         tm.start.Format("15:04:05.000000"),
			EndedAt:           endedAt,
		}
	}

	return out
}
