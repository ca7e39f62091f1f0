package profiler

// Snapshot is the profiling payload injected into a response.
type Snapshot struct {
	Overview    Overview             `json:"overview"`
	Database    DatabaseData         `json:"database"`
	Request     RequestData          `json:"request"`
	Performance PerformanceData      `json:"performance"`
	Memory      MemoryData           `json:"memory"`
	Environment EnvironmentData      `json:"environment"`
	Timers      map[string]TimerData `json:"timers"`
	Metadata    Metadata             `json:"metadata"`
	DebugInfo   DebugInfo            `json:"debug_info"`
}

type Overview struct {
	TotalQueries     int    `json:"total_queries"`
	TotalDBTime      string `json:"total_db_time"`
	SlowQueriesCount int    `json:"slow_queries_count"`
	ApplicationTime  string `json:"application_time"`
	MemoryPeak       string `json:"memory_peak"`
	Status           string `json:"status"`
}

// ProfileEntry is one executed statement in the snapshot.
type ProfileEntry struct {
	Query         string  `json:"query"`
	Time          float64 `json:"time"`
	TimeFormatted string  `json:"time_formatted"`
	Type          string  `json:"type"`
	Params        []any   `json:"params"`
	IsSlow        bool    `json:"is_slow"`
}

type DatabaseData struct {
	Enabled            bool           `json:"enabled"`
	TotalQueries       int            `json:"total_queries"`
	TotalTime          float64        `json:"total_time"`
	TotalTimeFormatted string         `json:"total_time_formatted"`
	Queries            []ProfileEntry `json:"queries"`
	SlowQueriesCount   int            `json:"slow_queries_count"`
	QueriesByType      map[string]int `json:"queries_by_type"`
	SlowQueryThreshold string         `json:"slow_query_threshold,omitempty"`
}

// RequestData describes the inbound request.
type RequestData struct {
	Method      string            `json:"method"`
	URI         string            `json:"uri"`
	URL         string            `json:"url"`
	IP          string            `json:"ip"`
	UserAgent   string            `json:"user_agent"`
	ContentType string            `json:"content_type"`
	Headers     map[string]string `json:"headers"`
	Parameters  RequestParameters `json:"parameters"`
	Session     map[string]any    `json:"session"`
	Cookies     map[string]string `json:"cookies"`
}

type RequestParameters struct {
	Query map[string]any `json:"GET"`
	Body  any            `json:"POST"`
}

type PerformanceData struct {
	ApplicationTime   string  `json:"application_time"`
	ApplicationTimeMs float64 `json:"application_time_ms"`
	BootstrapTime     string  `json:"bootstrap_time"`
	GoVersion         string  `json:"go_version"`
	AppMode           string  `json:"app_mode"`
	Goroutines        int     `json:"goroutines"`
	GC                GCData  `json:"gc"`
}

type GCData struct {
	NumGC      uint32 `json:"num_gc"`
	PauseTotal string `json:"pause_total"`
}

type MemoryData struct {
	CurrentUsage          uint64 `json:"current_usage"`
	CurrentUsageFormatted string `json:"current_usage_formatted"`
	PeakUsage             uint64 `json:"peak_usage"`
	PeakUsageFormatted    string `json:"peak_usage_formatted"`
	Limit                 string `json:"limit"`
	RealUsage             uint64 `json:"real_usage"`
	RealUsageFormatted    string `json:"real_usage_formatted"`
}

type EnvironmentData struct {
	GoVersion       string   `json:"go_version"`
	ServerSoftware  string   `json:"server_software"`
	OperatingSystem string   `json:"operating_system"`
	GOMAXPROCS      int      `json:"gomaxprocs"`
	NumCPU          int      `json:"num_cpu"`
	Timezone        string   `json:"timezone"`
	Locale          string   `json:"locale"`
	Dependencies    []string `json:"dependencies"`
}

type Metadata struct {
	GeneratedAt         string `json:"generated_at"`
	Timestamp           int64  `json:"timestamp"`
	RequestID           string `json:"request_id"`
	ProfilerVersion     string `json:"profiler_version"`
	MemoryLimitExceeded bool   `json:"memory_limit_exceeded"`
}

type DebugInfo struct {
	Messages []DebugMessage `json:"messages"`
}
