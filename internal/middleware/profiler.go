package middleware

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/aman-churiwal/devtools-profiler/internal/profiler"
	"github.com/gin-gonic/gin"
)

// bufferedWriter holds the handler's response until the profiler is done with it.
// Headers go straight to the underlying writer's header map.
type bufferedWriter struct {
	gin.ResponseWriter
	body   bytes.Buffer
	status int
}

// The starting status is whatever gin already put on w, e.g. 404 for an
// unrouted request.
func newBufferedWriter(w gin.ResponseWriter) *bufferedWriter {
	return &bufferedWriter{ResponseWriter: w, status: w.Status()}
}

func (w *bufferedWriter) WriteHeader(code int) {
	if code > 0 {
		w.status = code
	}
}

func (w *bufferedWriter) WriteHeaderNow() {}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

func (w *bufferedWriter) Status() int {
	return w.status
}

func (w *bufferedWriter) Size() int {
	return w.body.Len()
}

func (w *bufferedWriter) Written() bool {
	return w.body.Len() > 0
}

func (w *bufferedWriter) Flush() {}

// Profiler runs the request profiler around the remaining handlers. Requests
// that do not pass the gate are served untouched.
func Profiler(p *profiler.Profiler, maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("request_id")

		rc, active := p.Begin(c.Request.Context(), c.Request, requestID)
		c.Request = c.Request.WithContext(profiler.WithRequest(c.Request.Context(), rc))

		if !active {
			c.Next()
			return
		}

		rc.ClientIP = c.ClientIP()
		rc.Body = captureBody(c.Request, maxBodyBytes)

		orig := c.Writer
		buffered := newBufferedWriter(orig)
		c.Writer = buffered

		rc.Timers.End(profiler.TimerBootstrap)
		rc.Timers.Start(profiler.TimerHandler)

		serve(c, orig)

		rc.Timers.End(profiler.TimerHandler)
		rc.Session = sessionValues(c)
		c.Writer = orig

		out, outcome := p.Finish(buffered, c.Request, rc, buffered.body.Bytes())
		if outcome != profiler.Skipped {
			orig.Header().Set("Content-Length", strconv.Itoa(len(out)))
		}

		orig.WriteHeader(buffered.status)
		if len(out) == 0 {
			// leave the commit to gin so its own 404/405 bodies still get written
			return
		}
		if _, err := orig.Write(out); err != nil {
			log.Printf("[%s] Failed to write profiled response: %v", requestID, err)
		}
	}
}

// serve runs the handler chain and puts the original writer back if it panics,
// so the recovery middleware can still answer.
func serve(c *gin.Context, orig gin.ResponseWriter) {
	defer func() {
		if err := recover(); err != nil {
			c.Writer = orig
			panic(err)
		}
	}()
	c.Next()
}

// captureBody reads up to limit bytes of the request body for the snapshot and
// leaves the full body readable for the handler.
func captureBody(r *http.Request, limit int64) []byte {
	if r.Body == nil || r.Body == http.NoBody || limit <= 0 {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, limit))
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(data), r.Body), Closer: r.Body}
	if err != nil {
		return nil
	}
	return data
}

type readCloser struct {
	io.Reader
	io.Closer
}

func sessionValues(c *gin.Context) map[string]any {
	if len(c.Keys) == 0 {
		return nil
	}

	out := make(map[string]any, len(c.Keys))
	for k, v := range c.Keys {
		out[fmt.Sprint(k)] = v
	}
	return out
}
