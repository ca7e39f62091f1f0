package profiler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aman-churiwal/devtools-profiler/internal/settings"
)

func TestGate_SkipReason(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		settings settings.Settings
		header   string
		want     string
	}{
		{
			name:     "disabled",
			mode:     ModeDeveloper,
			settings: settings.Settings{Enabled: false},
			want:     ReasonDisabled,
		},
		{
			name:     "developer mode required",
			mode:     "production",
			settings: settings.Settings{Enabled: true, DeveloperModeOnly: true},
			want:     ReasonDeveloperMode,
		},
		{
			name:     "developer mode satisfied",
			mode:     ModeDeveloper,
			settings: settings.Settings{Enabled: true, DeveloperModeOnly: true},
			want:     "",
		},
		{
			name:     "api key rejected",
			mode:     "production",
			settings: settings.Settings{Enabled: true, APIKeyEnabled: true, APIKey: "secret"},
			header:   "nope",
			want:     ReasonAPIKey,
		},
		{
			name:     "api key accepted",
			mode:     "production",
			settings: settings.Settings{Enabled: true, APIKeyEnabled: true, APIKey: "secret"},
			header:   "secret",
			want:     "",
		},
		{
			name:     "no restrictions",
			mode:     "production",
			settings: settings.Settings{Enabled: true},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(StaticMode(tt.mode), NewKeyValidator(NewCookieManager()))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(APIKeyHeader, tt.header)
			}

			if got := gate.SkipReason(tt.settings, req); got != tt.want {
				t.Errorf("expected reason %q, got %q", tt.want, got)
			}
			if got := gate.ShouldProfile(tt.settings, req); got != (tt.want == "") {
				t.Errorf("ShouldProfile = %v, reason %q", got, tt.want)
			}
		})
	}
}

func TestGate_ProfilerHeaderNotRequired(t *testing.T) {
	gate := NewGate(StaticMode("production"), NewKeyValidator(NewCookieManager()))
	s := settings.Settings{Enabled: true, HeaderKey: "X-Debug-Mode"}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if !gate.ShouldProfile(s, req) {
		t.Error("expected request without the profiler header to be profiled")
	}
}

func TestGate_NilAppStateIsNotDeveloperMode(t *testing.T) {
	gate := NewGate(nil, NewKeyValidator(nil))
	s := settings.Settings{Enabled: true, DeveloperModeOnly: true}

	if gate.ShouldProfile(s, httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Error("expected rejection without an app state")
	}
}
