package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimit limits requests per client IP. When the limiter itself fails the
// request is let through.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Printf("[%s] Rate limit check failed: %v", c.GetString("request_id"), err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(decision.RetryAfter(time.Now())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": decision.ResetAt.Unix(),
			})
			return
		}

		c.Next()
	}
}
