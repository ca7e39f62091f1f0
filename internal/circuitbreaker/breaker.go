package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Do while the breaker is refusing calls
var ErrOpen = errors.New("circuit breaker is open")

// Breaker stops calling a dependency after repeated failures and lets a
// single probe through once the cooldown has passed.
type Breaker struct {
	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool

	maxFailures int
	cooldown    time.Duration
	now         func() time.Time
}

type Config struct {
	MaxFailures int           // Default: 3
	Cooldown    time.Duration // Default: 30 seconds
	Now         func() time.Time
}

func New(cfg Config) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Breaker{
		state:       StateClosed,
		maxFailures: cfg.MaxFailures,
		cooldown:    cfg.Cooldown,
		now:         cfg.Now,
	}
}

// Do runs fn unless the breaker is open. Errors returned by fn count as
// failures.
func (b *Breaker) Do(fn func() error) error {
	if !b.allow() {
		return ErrOpen
	}

	err := fn()
	b.record(err)
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = StateHalfOpen
		b.probing = true
		return true
	case StateHalfOpen:
		// one probe at a time
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.probing = false
		if err != nil {
			b.trip()
			return
		}
		b.state = StateClosed
		b.failures = 0
		return
	}

	if err == nil {
		b.failures = 0
		return
	}

	b.failures++
	if b.failures >= b.maxFailures {
		b.trip()
	}
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.failures = 0
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
