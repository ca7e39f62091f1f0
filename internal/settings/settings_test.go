package settings

import "testing"

func TestParse_Defaults(t *testing.T) {
	s := Parse(map[string]string{})

	if s.Enabled {
		t.Error("expected profiler disabled by default")
	}
	if s.HeaderKey != DefaultHeaderKey {
		t.Errorf("expected header key %q, got %q", DefaultHeaderKey, s.HeaderKey)
	}
	if s.SlowQueryThresholdMs != DefaultSlowQueryThreshold {
		t.Errorf("expected threshold %d, got %d", DefaultSlowQueryThreshold, s.SlowQueryThresholdMs)
	}
	if s.MemoryLimitMb != DefaultMemoryLimitMb {
		t.Errorf("expected memory limit %d, got %d", DefaultMemoryLimitMb, s.MemoryLimitMb)
	}
	if s.HasAPIKey() {
		t.Error("expected no API key")
	}
}

func TestParse_Values(t *testing.T) {
	s := Parse(map[string]string{
		PathEnabled:            "1",
		PathHeaderKey:          "X-Profile",
		PathAPIKeyEnabled:      "true",
		PathAPIKey:             "  secret  ",
		PathHTMLOutput:         "yes",
		PathJSONInjection:      "0",
		PathDeveloperModeOnly:  "1",
		PathSlowQueryThreshold: "250",
		PathToolbarWidget:      "on",
		PathMemoryLimit:        "1024",
	})

	if !s.Enabled || !s.APIKeyEnabled || !s.HTMLOutputEnabled || !s.DeveloperModeOnly || !s.ToolbarEnabled {
		t.Errorf("expected flags set, got %+v", s)
	}
	if s.JSONInjectionEnabled {
		t.Error("expected json injection disabled")
	}
	if s.HeaderKey != "X-Profile" {
		t.Errorf("unexpected header key %q", s.HeaderKey)
	}
	if s.APIKey != "secret" {
		t.Errorf("expected trimmed api key, got %q", s.APIKey)
	}
	if s.SlowQueryThresholdMs != 250 || s.MemoryLimitMb != 1024 {
		t.Errorf("unexpected numbers: %+v", s)
	}
}

func TestParse_NumericEdgeCases(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultSlowQueryThreshold},
		{"0", DefaultSlowQueryThreshold},
		{"0.001", 0},
		{"12.9", 12},
		{"abc", DefaultSlowQueryThreshold},
	}

	for _, tt := range tests {
		s := Parse(map[string]string{PathSlowQueryThreshold: tt.raw})
		if s.SlowQueryThresholdMs != tt.want {
			t.Errorf("threshold %q: expected %d, got %d", tt.raw, tt.want, s.SlowQueryThresholdMs)
		}
	}
}

func TestIsSetFlag(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", " yes ", "On"} {
		if !IsSetFlag(v) {
			t.Errorf("expected %q to be set", v)
		}
	}
	for _, v := range []string{"", "0", "false", "off", "2"} {
		if IsSetFlag(v) {
			t.Errorf("expected %q to be unset", v)
		}
	}
}
