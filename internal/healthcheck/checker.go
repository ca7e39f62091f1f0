package healthcheck

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency is something the storefront talks to. A failing required
// dependency makes the service unhealthy; an optional one only degrades it.
type Dependency struct {
	Name     string
	Pinger   Pinger
	Required bool
}

// Checker pings dependencies in the background so /health never waits on a
// slow database or redis.
type Checker struct {
	mu       sync.RWMutex
	deps     []Dependency
	statuses map[string]*Status
	checked  bool

	interval    time.Duration
	timeout     time.Duration
	maxFailures int
	stopChan    chan struct{}
	running     bool
}

type Config struct {
	Dependencies []Dependency
	Interval     time.Duration // How often to check (default: 15s)
	Timeout      time.Duration // Per ping (default: 2s)
	MaxFailures  int           // Failures before marking unhealthy (default: 2)
}

func NewChecker(cfg Config) *Checker {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 2
	}

	c := &Checker{
		deps:        cfg.Dependencies,
		statuses:    make(map[string]*Status, len(cfg.Dependencies)),
		interval:    cfg.Interval,
		timeout:     cfg.Timeout,
		maxFailures: cfg.MaxFailures,
		stopChan:    make(chan struct{}),
	}

	for _, dep := range cfg.Dependencies {
		c.statuses[dep.Name] = &Status{Name: dep.Name, Required: dep.Required, IsHealthy: true}
	}

	return c
}

// Start checks once, then keeps checking every interval until Stop
func (c *Checker) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	c.CheckNow(context.Background())

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.CheckNow(context.Background())
			case <-c.stopChan:
				return
			}
		}
	}()
}

func (c *Checker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		close(c.stopChan)
		c.running = false
	}
}

// CheckNow pings every dependency concurrently and waits for the results
func (c *Checker) CheckNow(ctx context.Context) {
	var wg sync.WaitGroup

	for _, dep := range c.deps {
		wg.Add(1)
		go func(dep Dependency) {
			defer wg.Done()

			pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			c.record(dep.Name, dep.Pinger.Ping(pingCtx))
		}(dep)
	}

	wg.Wait()

	c.mu.Lock()
	c.checked = true
	c.mu.Unlock()
}

func (c *Checker) record(name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := c.statuses[name]
	status.LastCheck = time.Now()

	if err == nil {
		if !status.IsHealthy {
			log.Printf("%s is healthy again", name)
		}
		status.IsHealthy = true
		status.FailureCount = 0
		status.LastError = ""
		return
	}

	status.FailureCount++
	status.LastError = err.Error()
	if status.IsHealthy && status.FailureCount >= c.maxFailures {
		log.Printf("%s is now unhealthy (failures: %d): %v", name, status.FailureCount, err)
		status.IsHealthy = false
	}
}

// Statuses returns a copy of every dependency's status, sorted by name. If no
// check has run yet one is run first.
func (c *Checker) Statuses(ctx context.Context) []Status {
	c.mu.RLock()
	checked := c.checked
	c.mu.RUnlock()

	if !checked {
		c.CheckNow(ctx)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Status, 0, len(c.statuses))
	for _, s := range c.statuses {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Overall folds dependency statuses into one value
func Overall(statuses []Status) HealthStatus {
	overall := Healthy
	for _, s := range statuses {
		if s.IsHealthy {
			continue
		}
		if s.Required {
			return Unhealthy
		}
		overall = Degraded
	}
	return overall
}
