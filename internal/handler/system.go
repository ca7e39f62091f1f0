package handler

import (
	"net/http"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/healthcheck"
	"github.com/gin-gonic/gin"
)

// Handles system-related endpoints
type SystemHandler struct {
	checker *healthcheck.Checker
	version string
	started time.Time
}

func NewSystemHandler(version string, checker *healthcheck.Checker) *SystemHandler {
	return &SystemHandler{
		checker: checker,
		version: version,
		started: time.Now(),
	}
}

func (h *SystemHandler) Health(c *gin.Context) {
	statuses := h.checker.Statuses(c.Request.Context())
	overall := healthcheck.Overall(statuses)

	checks := make(gin.H, len(statuses))
	for _, s := range statuses {
		checks[s.Name] = s.IsHealthy
	}

	statusCode := http.StatusOK
	if overall == healthcheck.Unhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    overall.String(),
		"service":   "devtools-storefront",
		"version":   h.version,
		"uptime":    time.Since(h.started).Seconds(),
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}
