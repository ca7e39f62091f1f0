package profiler

import (
	"encoding/json"
	"math"
	"mime"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Version = "1.0.0"

	maxSessionEntries = 10
	maxDependencies   = 20

	TimerRequest   = "http_request"
	TimerBootstrap = "bootstrap"
	TimerHandler   = "handler"
)

// Collector builds snapshots. It holds only process-level collaborators;
// everything request-specific comes in through the RequestContext.
type Collector struct {
	memory         MemoryReader
	appState       AppState
	serverSoftware string
	now            func() time.Time
}

type CollectorConfig struct {
	Memory         MemoryReader
	AppState       AppState
	ServerSoftware string
	Now            func() time.Time
}

func NewCollector(cfg CollectorConfig) *Collector {
	if cfg.Memory == nil {
		cfg.Memory = RuntimeMemory{}
	}
	if cfg.AppState == nil {
		cfg.AppState = StaticMode("default")
	}
	if cfg.ServerSoftware == "" {
		cfg.ServerSoftware = "Unknown"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Collector{
		memory:         cfg.Memory,
		appState:       cfg.AppState,
		serverSoftware: cfg.ServerSoftware,
		now:            cfg.Now,
	}
}

// Collect drains the request's query log and assembles the snapshot. It must
// run once, after the handler has finished.
func (c *Collector) Collect(rc *RequestContext, r *http.Request) *Snapshot {
	rc.Timers.End(TimerRequest)

	usage := c.memory.Read()
	appMs := float64(c.now().Sub(rc.Start)) / float64(time.Millisecond)

	db := BuildDatabaseData(rc.Queries.Enabled(), rc.Queries.Drain(), rc.Settings.SlowQueryThresholdMs)

	return &Snapshot{
		Overview: Overview{
			TotalQueries:     db.TotalQueries,
			TotalDBTime:      db.TotalTimeFormatted,
			SlowQueriesCount: db.SlowQueriesCount,
			ApplicationTime:  FormatTime(appMs),
			MemoryPeak:       FormatBytes(usage.Peak),
			Status:           OverallStatus(db.SlowQueriesCount, db.TotalQueries),
		},
		Database:    db,
		Request:     c.requestData(rc, r),
		Performance: c.performanceData(rc, appMs, usage),
		Memory:      memoryData(usage),
		Environment: c.environmentData(),
		Timers:      rc.Timers.Data(),
		Metadata:    c.metadata(rc, usage),
		DebugInfo:   DebugInfo{Messages: rc.Debug.Messages()},
	}
}

// BuildDatabaseData turns recorded statements into the database section.
func BuildDatabaseData(enabled bool, profiles []QueryProfile, thresholdMs int) DatabaseData {
	if !enabled {
		return DatabaseData{
			TotalTimeFormatted: "0 ms",
			Queries:            []ProfileEntry{},
			QueriesByType:      map[string]int{},
		}
	}

	queries := make([]ProfileEntry, 0, len(profiles))
	byType := make(map[string]int)
	var total float64
	slow := 0

	for _, p := range profiles {
		secs := p.Elapsed.Seconds()
		entry := ProfileEntry{
			Query:         p.Query,
			Time:          secs,
			TimeFormatted: FormatTime(secs * 1000),
			Type:          QueryType(p.Query),
			Params:        p.Params,
			IsSlow:        IsSlow(secs, thresholdMs),
		}
		if entry.Params == nil {
			entry.Params = []any{}
		}
		if entry.IsSlow {
			slow++
		}

		byType[entry.Type]++
		total += secs
		queries = append(queries, entry)
	}

	return DatabaseData{
		Enabled:            true,
		TotalQueries:       len(queries),
		TotalTime:          total,
		TotalTimeFormatted: FormatTime(total * 1000),
		Queries:            queries,
		SlowQueriesCount:   slow,
		QueriesByType:      byType,
		SlowQueryThreshold: numberPrinter.Sprintf("%d ms", thresholdMs),
	}
}

func (c *Collector) requestData(rc *RequestContext, r *http.Request) RequestData {
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		headers[name] = strings.Join(values, ", ")
	}

	cookies := make(map[string]string)
	for _, ck := range r.Cookies() {
		cookies[ck.Name] = ck.Value
	}

	query := make(map[string]any)
	for k, v := range r.URL.Query() {
		if len(v) == 1 {
			query[k] = v[0]
		} else {
			query[k] = v
		}
	}

	return RequestData{
		Method:      r.Method,
		URI:         r.URL.RequestURI(),
		URL:         fullURL(r),
		IP:          rc.ClientIP,
		UserAgent:   r.UserAgent(),
		ContentType: r.Header.Get("Content-Type"),
		Headers:     headers,
		Parameters: RequestParameters{
			Query: query,
			Body:  bodyParams(r.Header.Get("Content-Type"), rc.Body),
		},
		Session: sessionData(rc.Session),
		Cookies: cookies,
	}
}

func fullURL(r *http.Request) string {
	scheme := "http"
	if IsSecureRequest(r) {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// bodyParams decodes a JSON or form body. Anything else, or an undecodable
// body, yields nil.
func bodyParams(contentType string, body []byte) any {
	if len(body) == 0 {
		return nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = ""
	}

	switch {
	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil
		}
		form := make(map[string]any, len(values))
		for k, v := range values {
			if len(v) == 1 {
				form[k] = v[0]
			} else {
				form[k] = v
			}
		}
		return form
	default:
		var decoded any
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil
		}
		return decoded
	}
}

func sessionData(session map[string]any) map[string]any {
	if len(session) == 0 {
		return map[string]any{"status": "No active session"}
	}

	keys := make([]string, 0, len(session))
	for k := range session {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > maxSessionEntries {
		keys = keys[:maxSessionEntries]
	}

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = session[k]
	}
	return out
}

func (c *Collector) performanceData(rc *RequestContext, appMs float64, usage MemoryUsage) PerformanceData {
	return PerformanceData{
		ApplicationTime:   FormatTime(appMs),
		ApplicationTimeMs: math.Round(appMs*100) / 100,
		BootstrapTime:     FormatTime(float64(rc.Timers.Duration(TimerBootstrap)) / float64(time.Millisecond)),
		GoVersion:         runtime.Version(),
		AppMode:           c.appState.Mode(),
		Goroutines:        runtime.NumGoroutine(),
		GC: GCData{
			NumGC:      usage.NumGC,
			PauseTotal: FormatTime(float64(usage.PauseNs) / 1e6),
		},
	}
}

func memoryData(usage MemoryUsage) MemoryData {
	limit := "unlimited"
	if usage.Limit > 0 && usage.Limit < math.MaxInt64 {
		limit = FormatBytes(uint64(usage.Limit))
	}

	return MemoryData{
		CurrentUsage:          usage.Current,
		CurrentUsageFormatted: FormatBytes(usage.Current),
		PeakUsage:             usage.Peak,
		PeakUsageFormatted:    FormatBytes(usage.Peak),
		Limit:                 limit,
		RealUsage:             usage.Real,
		RealUsageFormatted:    FormatBytes(usage.Real),
	}
}

func (c *Collector) environmentData() EnvironmentData {
	locale := os.Getenv("LC_ALL")
	if locale == "" {
		locale = os.Getenv("LANG")
	}
	if locale == "" {
		locale = "C"
	}

	return EnvironmentData{
		GoVersion:       runtime.Version(),
		ServerSoftware:  c.serverSoftware,
		OperatingSystem: runtime.GOOS + "/" + runtime.GOARCH,
		GOMAXPROCS:      runtime.GOMAXPROCS(0),
		NumCPU:          runtime.NumCPU(),
		Timezone:        time.Local.String(),
		Locale:          locale,
		Dependencies:    dependencies(),
	}
}

func dependencies() []string {
	deps := []string{}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return deps
	}

	for _, dep := range info.Deps {
		if len(deps) == maxDependencies {
			break
		}
		deps = append(deps, dep.Path+"@"+dep.Version)
	}
	return deps
}

func (c *Collector) metadata(rc *RequestContext, usage MemoryUsage) Metadata {
	now := c.now()

	id := rc.ID
	if id == "" {
		id = "req_" + uuid.NewString()
	}

	return Metadata{
		GeneratedAt:         now.Format("2006-01-02 15:04:05"),
		Timestamp:           now.Unix(),
		RequestID:           id,
		ProfilerVersion:     Version,
		MemoryLimitExceeded: LimitExceeded(usage, rc.Settings.MemoryLimitMb),
	}
}
