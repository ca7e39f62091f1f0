package healthcheck

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakePinger struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakePinger) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func TestChecker_MarksUnhealthyAfterMaxFailures(t *testing.T) {
	db := &fakePinger{}
	c := NewChecker(Config{
		Dependencies: []Dependency{{Name: "database", Pinger: db, Required: true}},
		MaxFailures:  2,
	})
	ctx := context.Background()

	db.fail(errors.New("connection refused"))
	c.CheckNow(ctx)
	if s := c.Statuses(ctx); !s[0].IsHealthy || s[0].FailureCount != 1 {
		t.Fatalf("expected one tolerated failure, got %+v", s[0])
	}

	c.CheckNow(ctx)
	s := c.Statuses(ctx)
	if s[0].IsHealthy || s[0].LastError != "connection refused" {
		t.Fatalf("expected unhealthy database, got %+v", s[0])
	}
	if Overall(s) != Unhealthy {
		t.Errorf("expected unhealthy, got %s", Overall(s))
	}

	db.fail(nil)
	c.CheckNow(ctx)
	if s := c.Statuses(ctx); !s[0].IsHealthy || s[0].FailureCount != 0 {
		t.Errorf("expected recovery, got %+v", s[0])
	}
}

func TestChecker_StatusesRunsFirstCheck(t *testing.T) {
	db := &fakePinger{}
	c := NewChecker(Config{Dependencies: []Dependency{{Name: "database", Pinger: db, Required: true}}})

	c.Statuses(context.Background())
	c.Statuses(context.Background())

	if db.calls != 1 {
		t.Errorf("expected a single lazy check, got %d", db.calls)
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     HealthStatus
	}{
		{"all healthy", []Status{{Required: true, IsHealthy: true}, {IsHealthy: true}}, Healthy},
		{"optional down", []Status{{Required: true, IsHealthy: true}, {IsHealthy: false}}, Degraded},
		{"required down", []Status{{Required: true, IsHealthy: false}, {IsHealthy: true}}, Unhealthy},
		{"none", nil, Healthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.statuses); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestChecker_StartStop(t *testing.T) {
	db := &fakePinger{}
	c := NewChecker(Config{Dependencies: []Dependency{{Name: "database", Pinger: db}}})

	c.Start()
	c.Start()
	c.Stop()
	c.Stop()

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.calls < 1 {
		t.Error("expected an initial check on start")
	}
}
