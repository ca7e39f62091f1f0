package profiler

import (
	"net/http"

	"github.com/aman-churiwal/devtools-profiler/internal/settings"
)

const ModeDeveloper = "developer"

// AppState exposes the application's runtime mode.
type AppState interface {
	Mode() string
}

// StaticMode is an AppState with a fixed mode.
type StaticMode string

func (m StaticMode) Mode() string {
	return string(m)
}

// Skip reasons reported by Gate.SkipReason.
const (
	ReasonDisabled        = "Developer tools disabled in configuration"
	ReasonDeveloperMode   = "Developer mode required but not active"
	ReasonAPIKey          = "API key validation failed"
	ReasonMemoryLimit     = "Memory limit exceeded"
	ReasonSettingsFailure = "Profiler settings unavailable"
)

// Gate decides whether a request gets profiled.
type Gate struct {
	appState  AppState
	validator *KeyValidator
}

func NewGate(appState AppState, validator *KeyValidator) *Gate {
	return &Gate{appState: appState, validator: validator}
}

func (g *Gate) ShouldProfile(s settings.Settings, r *http.Request) bool {
	return g.SkipReason(s, r) == ""
}

// SkipReason returns the first condition that rejects the request, or "" when
// the request qualifies. The profiler header is informational only and never
// rejects a request.
func (g *Gate) SkipReason(s settings.Settings, r *http.Request) string {
	if !s.Enabled {
		return ReasonDisabled
	}

	if s.DeveloperModeOnly && !g.isDeveloperMode() {
		return ReasonDeveloperMode
	}

	if !g.validator.Validate(s, r) {
		return ReasonAPIKey
	}

	return ""
}

func (g *Gate) isDeveloperMode() bool {
	if g.appState == nil {
		return false
	}
	return g.appState.Mode() == ModeDeveloper
}
