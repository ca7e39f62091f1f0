package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/aman-churiwal/devtools-profiler/internal/profiler"
	"github.com/aman-churiwal/devtools-profiler/internal/service"
	"github.com/gin-gonic/gin"
)

// ProfilerHandler serves the admin endpoints for the request profiler
type ProfilerHandler struct {
	admin   *service.ProfilerAdminService
	cookies *profiler.CookieManager
}

func NewProfilerHandler(admin *service.ProfilerAdminService, cookies *profiler.CookieManager) *ProfilerHandler {
	return &ProfilerHandler{admin: admin, cookies: cookies}
}

func (h *ProfilerHandler) Status(c *gin.Context) {
	status, err := h.admin.Status(c.Request.Context())
	if err != nil {
		log.Printf("[%s] Failed to load profiler status: %v", c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profiler status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"cookie": h.cookies.DebugInfo(c.Request),
	})
}

func (h *ProfilerHandler) Enable(c *gin.Context) {
	s, err := h.admin.Enable(c.Request.Context())
	if err != nil {
		log.Printf("[%s] Failed to enable profiler: %v", c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable profiler"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Profiler enabled with default configuration",
		"settings": s,
	})
}

func (h *ProfilerHandler) Disable(c *gin.Context) {
	if err := h.admin.Disable(c.Request.Context()); err != nil {
		log.Printf("[%s] Failed to disable profiler: %v", c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disable profiler"})
		return
	}

	h.cookies.Delete(c.Writer, profiler.APIKeyCookieName)
	c.JSON(http.StatusOK, gin.H{"message": "Profiler disabled"})
}

// GenerateAPIKey always creates a new key unless regenerate=false is passed
// and one already exists.
func (h *ProfilerHandler) GenerateAPIKey(c *gin.Context) {
	regenerate := true
	if raw := c.Query("regenerate"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "regenerate must be a boolean"})
			return
		}
		regenerate = parsed
	}

	result, err := h.admin.GenerateAPIKey(c.Request.Context(), regenerate)
	if errors.Is(err, service.ErrAPIKeyExists) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "API key already exists. Pass regenerate=true to create a new one.",
		})
		return
	}
	if err != nil {
		log.Printf("[%s] Failed to generate API key: %v", c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to generate API key",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "API key generated successfully!",
		"api_key":     result.Key,
		"regenerated": result.Regenerated,
		"instructions": []string{
			"Configure your browser extension with this API key.",
			"Send it in the " + profiler.APIKeyHeader + " header or the " + profiler.APIKeyQueryParam + " query parameter.",
			"Keep this key secure and don't share it publicly.",
		},
	})
}
