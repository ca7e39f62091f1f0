package profiler

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileLog writes one JSON line per profiled request when log-to-file is on.
type FileLog struct {
	logger *zap.Logger
}

func NewFileLog(path string) (*FileLog, error) {
	if path == "" {
		return nil, nil
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to open profiler log %s: %w", path, err)
	}

	return &FileLog{logger: logger.Named("profiler")}, nil
}

// NewFileLogWithLogger wraps an existing zap logger.
func NewFileLogWithLogger(logger *zap.Logger) *FileLog {
	return &FileLog{logger: logger}
}

func (f *FileLog) Record(snap *Snapshot, outcome Outcome) {
	if f == nil || f.logger == nil || snap == nil {
		return
	}

	f.logger.Info("request profiled",
		zap.String("request_id", snap.Metadata.RequestID),
		zap.String("method", snap.Request.Method),
		zap.String("uri", snap.Request.URI),
		zap.String("injection", outcome.String()),
		zap.String("status", snap.Overview.Status),
		zap.Int("total_queries", snap.Overview.TotalQueries),
		zap.Int("slow_queries", snap.Overview.SlowQueriesCount),
		zap.String("db_time", snap.Overview.TotalDBTime),
		zap.String("application_time", snap.Overview.ApplicationTime),
		zap.String("memory_peak", snap.Overview.MemoryPeak),
		zap.Any("queries_by_type", snap.Database.QueriesByType),
	)
}

func (f *FileLog) Close() error {
	if f == nil || f.logger == nil {
		return nil
	}
	return f.logger.Sync()
}
