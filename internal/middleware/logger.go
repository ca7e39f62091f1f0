package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/profiler"
	"github.com/gin-gonic/gin"
)

// Logger writes one access line per request. Profiled requests are tagged
// with the handler time the profiler measured.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// no query string, it may carry the profiler api_key
		path := c.Request.URL.Path

		c.Next()

		log.Printf("[%s] %s %s - %d - %v - %s - %dB%s",
			c.GetString("request_id"),
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			c.Writer.Size(),
			profiledTag(c),
		)
	}
}

func profiledTag(c *gin.Context) string {
	rc := profiler.FromContext(c.Request.Context())
	if rc == nil || !rc.Queries.Enabled() {
		return ""
	}
	return fmt.Sprintf(" [profiled handler=%v]", rc.Timers.Duration(profiler.TimerHandler))
}
