package healthcheck

import "time"

// Status is the last known state of one dependency
type Status struct {
	Name         string    `json:"name"`
	Required     bool      `json:"required"`
	IsHealthy    bool      `json:"healthy"`
	LastCheck    time.Time `json:"last_check"`
	LastError    string    `json:"last_error,omitempty"`
	FailureCount int       `json:"failure_count"`
}

// HealthStatus is the overall health of the storefront
type HealthStatus int

const (
	Healthy HealthStatus = iota
	Degraded
	Unhealthy
)

func (h HealthStatus) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Unhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}
