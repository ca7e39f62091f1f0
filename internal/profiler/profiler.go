package profiler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/settings"
)

// SettingsProvider loads the current profiler settings.
type SettingsProvider interface {
	Load(ctx context.Context) (settings.Settings, error)
}

// Profiler ties the gate, SQL profiler, collector and injector together for
// one request at a time. It keeps no per-request state of its own.
type Profiler struct {
	settings  SettingsProvider
	gate      *Gate
	collector *Collector
	injector  *Injector
	memory    MemoryReader
	fileLog   *FileLog
	now       func() time.Time
}

type Config struct {
	Settings  SettingsProvider
	Gate      *Gate
	Collector *Collector
	Injector  *Injector
	Memory    MemoryReader
	FileLog   *FileLog
	Now       func() time.Time
}

func New(cfg Config) *Profiler {
	if cfg.Memory == nil {
		cfg.Memory = RuntimeMemory{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Injector == nil {
		cfg.Injector = NewInjector(nil, nil)
	}
	if cfg.Collector == nil {
		cfg.Collector = NewCollector(CollectorConfig{Memory: cfg.Memory, Now: cfg.Now})
	}

	return &Profiler{
		settings:  cfg.Settings,
		gate:      cfg.Gate,
		collector: cfg.Collector,
		injector:  cfg.Injector,
		memory:    cfg.Memory,
		fileLog:   cfg.FileLog,
		now:       cfg.Now,
	}
}

// Begin creates the request context and runs the gate. When it returns true
// the SQL profiler is recording for rc and the caller must buffer the response
// and call Finish.
func (p *Profiler) Begin(ctx context.Context, r *http.Request, requestID string) (*RequestContext, bool) {
	s, err := p.settings.Load(ctx)
	if err != nil {
		log.Printf("[%s] Failed to load profiler settings: %v", requestID, err)
		rc := NewRequestContext(requestID, settings.Settings{}, p.now)
		rc.Debug.Error(ReasonSettingsFailure, map[string]any{"error": err.Error()})
		return rc, false
	}

	rc := NewRequestContext(requestID, s, p.now)
	rc.Timers.Start(TimerBootstrap)

	if reason := p.gate.SkipReason(s, r); reason != "" {
		rc.Debug.Info("HTTP Request profiling skipped", map[string]any{
			"method": r.Method,
			"uri":    r.URL.RequestURI(),
			"reason": reason,
		})
		return rc, false
	}

	rc.Timers.Start(TimerRequest)

	usage := p.memory.Read()
	memCtx := map[string]any{
		"memory_limit_mb":   s.MemoryLimitMb,
		"current_memory_mb": roundMb(usage.Current),
	}

	if LimitExceeded(usage, s.MemoryLimitMb) {
		log.Printf("[%s] Profiler disabled due to memory limit (%d MB)", requestID, s.MemoryLimitMb)
		rc.Debug.Warning("Profiler disabled due to memory limit", memCtx)
		return rc, false
	}

	rc.Queries.SetEnabled(true)
	rc.Debug.Info("Database profiler enabled", memCtx)

	return rc, true
}

// Finish collects the snapshot and injects it into body. Any panic while
// doing so is recovered and the original body is returned.
func (p *Profiler) Finish(w http.ResponseWriter, r *http.Request, rc *RequestContext, body []byte) (out []byte, outcome Outcome) {
	defer func() {
		if err := recover(); err != nil {
			log.Printf("[%s] PANIC in profiler: %v", rc.ID, err)
			out, outcome = body, Skipped
		}
	}()

	contentType := ContentType(w, r)
	if !Eligible(rc.Settings, contentType) {
		return body, Skipped
	}

	snap := p.collector.Collect(rc, r)
	out, outcome = p.injector.Inject(w, r, rc.Settings, body, snap)

	if rc.Settings.LogToFileEnabled {
		p.fileLog.Record(snap, outcome)
	}

	return out, outcome
}
