package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/aman-churiwal/devtools-profiler/internal/profiler"
	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into a 500. On a profiled request the panic
// also lands in the request's debug log.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}

			requestID := c.GetString("request_id")
			log.Printf("[%s] PANIC: %v\n%s", requestID, err, debug.Stack())

			profiler.Debug(c.Request.Context()).Error("handler panicked", map[string]any{"panic": err})

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal Server Error",
				"request_id": requestID,
			})
		}()
		c.Next()
	}
}
