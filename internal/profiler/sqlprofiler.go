package profiler

import (
	"database/sql/driver"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// QueryProfile is one executed statement as recorded by the SQL profiler.
type QueryProfile struct {
	Query   string
	Elapsed time.Duration
	Params  []any
}

// QueryLog collects statements for one request while enabled.
type QueryLog struct {
	mu       sync.Mutex
	enabled  bool
	profiles []QueryProfile
}

func NewQueryLog() *QueryLog {
	return &QueryLog{}
}

func (l *QueryLog) SetEnabled(enabled bool) {
	l.mu.Lock()
	l.enabled = enabled
	l.mu.Unlock()
}

func (l *QueryLog) Enabled() bool {
	if l == nil {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *QueryLog) Record(query string, elapsed time.Duration, params []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}
	l.profiles = append(l.profiles, QueryProfile{Query: query, Elapsed: elapsed, Params: params})
}

// Drain returns the recorded statements and empties the log.
func (l *QueryLog) Drain() []QueryProfile {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.profiles
	l.profiles = nil
	return out
}

const startedAtKey = "devtools:started_at"

// SQLProfiler is a gorm plugin recording statements into the QueryLog of the
// request found in the statement's context.
type SQLProfiler struct {
	now func() time.Time
}

func NewSQLProfiler() *SQLProfiler {
	return &SQLProfiler{now: time.Now}
}

func (p *SQLProfiler) Name() string {
	return "devtools:sql_profiler"
}

func (p *SQLProfiler) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	errs := []error{
		cb.Create().Before("gorm:create").Register("devtools:before_create", p.before),
		cb.Create().After("gorm:create").Register("devtools:after_create", p.after),
		cb.Query().Before("gorm:query").Register("devtools:before_query", p.before),
		cb.Query().After("gorm:query").Register("devtools:after_query", p.after),
		cb.Update().Before("gorm:update").Register("devtools:before_update", p.before),
		cb.Update().After("gorm:update").Register("devtools:after_update", p.after),
		cb.Delete().Before("gorm:delete").Register("devtools:before_delete", p.before),
		cb.Delete().After("gorm:delete").Register("devtools:after_delete", p.after),
		cb.Row().Before("gorm:row").Register("devtools:before_row", p.before),
		cb.Row().After("gorm:row").Register("devtools:after_row", p.after),
		cb.Raw().Before("gorm:raw").Register("devtools:before_raw", p.before),
		cb.Raw().After("gorm:raw").Register("devtools:after_raw", p.after),
	}

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("failed to register profiler callbacks: %w", err)
		}
	}

	return nil
}

func (p *SQLProfiler) before(db *gorm.DB) {
	if rc := FromContext(db.Statement.Context); rc == nil || !rc.Queries.Enabled() {
		return
	}
	db.InstanceSet(startedAtKey, p.now())
}

func (p *SQLProfiler) after(db *gorm.DB) {
	rc := FromContext(db.Statement.Context)
	if rc == nil || !rc.Queries.Enabled() {
		return
	}

	v, ok := db.InstanceGet(startedAtKey)
	if !ok {
		return
	}
	started, ok := v.(time.Time)
	if !ok {
		return
	}

	query := db.Statement.SQL.String()
	if query == "" {
		return
	}

	rc.Queries.Record(query, p.now().Sub(started), normalizeParams(db.Statement.Vars))
}

func normalizeParams(vars []any) []any {
	params := make([]any, 0, len(vars))
	for _, v := range vars {
		switch val := v.(type) {
		case []byte:
			params = append(params, string(val))
		case driver.Valuer:
			dv, err := val.Value()
			if err != nil {
				params = append(params, fmt.Sprint(val))
				continue
			}
			if b, ok := dv.([]byte); ok {
				dv = string(b)
			}
			params = append(params, dv)
		default:
			params = append(params, val)
		}
	}
	return params
}
