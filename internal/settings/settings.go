package settings

import (
	"strconv"
	"strings"
)

// Config paths, all stored under PathPrefix.
const (
	PathPrefix = "dev_tools/"

	PathEnabled            = PathPrefix + "enabled"
	PathHeaderKey          = PathPrefix + "profiler_header_key"
	PathAPIKeyEnabled      = PathPrefix + "api_key_enabled"
	PathAPIKey             = PathPrefix + "api_key"
	PathHTMLOutput         = PathPrefix + "html_output_enabled"
	PathJSONInjection      = PathPrefix + "json_injection_enabled"
	PathLogToFile          = PathPrefix + "log_to_file_enabled"
	PathDeveloperModeOnly  = PathPrefix + "developer_mode_only"
	PathSlowQueryThreshold = PathPrefix + "slow_query_threshold"
	PathToolbarWidget      = PathPrefix + "toolbar_widget_enabled"
	PathMemoryLimit        = PathPrefix + "memory_limit_mb"
)

const (
	DefaultHeaderKey          = "X-Debug-Mode"
	DefaultSlowQueryThreshold = 100
	DefaultMemoryLimitMb      = 512
)

// Settings is the profiler configuration for one request. It is a plain value;
// copies never observe later writes to the store.
type Settings struct {
	Enabled              bool   `json:"enabled"`
	HeaderKey            string `json:"header_key"`
	HTMLOutputEnabled    bool   `json:"html_output_enabled"`
	JSONInjectionEnabled bool   `json:"json_injection_enabled"`
	LogToFileEnabled     bool   `json:"log_to_file_enabled"`
	DeveloperModeOnly    bool   `json:"developer_mode_only"`
	SlowQueryThresholdMs int    `json:"slow_query_threshold_ms"`
	ToolbarEnabled       bool   `json:"toolbar_enabled"`
	MemoryLimitMb        int    `json:"memory_limit_mb"`
	APIKeyEnabled        bool   `json:"api_key_enabled"`
	APIKey               string `json:"-"`
}

// Parse builds Settings from raw path → value pairs. Missing paths take their defaults.
func Parse(values map[string]string) Settings {
	headerKey := strings.TrimSpace(values[PathHeaderKey])
	if headerKey == "" {
		headerKey = DefaultHeaderKey
	}

	return Settings{
		Enabled:              IsSetFlag(values[PathEnabled]),
		HeaderKey:            headerKey,
		HTMLOutputEnabled:    IsSetFlag(values[PathHTMLOutput]),
		JSONInjectionEnabled: IsSetFlag(values[PathJSONInjection]),
		LogToFileEnabled:     IsSetFlag(values[PathLogToFile]),
		DeveloperModeOnly:    IsSetFlag(values[PathDeveloperModeOnly]),
		SlowQueryThresholdMs: intOrDefault(values[PathSlowQueryThreshold], DefaultSlowQueryThreshold),
		ToolbarEnabled:       IsSetFlag(values[PathToolbarWidget]),
		MemoryLimitMb:        intOrDefault(values[PathMemoryLimit], DefaultMemoryLimitMb),
		APIKeyEnabled:        IsSetFlag(values[PathAPIKeyEnabled]),
		APIKey:               strings.TrimSpace(values[PathAPIKey]),
	}
}

// IsSetFlag reports whether a stored flag value counts as "on".
func IsSetFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// intOrDefault treats empty and zero values as unset. Decimal values are
// truncated, so "0.001" yields 0 rather than the default.
func intOrDefault(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return def
	}

	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}

	return int(f)
}

// HasAPIKey reports whether a key is configured.
func (s Settings) HasAPIKey() bool {
	return s.APIKey != ""
}

// EnableDefaults are the values written by the enable action.
func EnableDefaults() map[string]string {
	return map[string]string{
		PathEnabled:            "1",
		PathHeaderKey:          DefaultHeaderKey,
		PathHTMLOutput:         "1",
		PathJSONInjection:      "1",
		PathDeveloperModeOnly:  "0",
		PathSlowQueryThreshold: strconv.Itoa(DefaultSlowQueryThreshold),
		PathToolbarWidget:      "1",
		PathAPIKeyEnabled:      "1",
	}
}
