package profiler

import (
	"math"
	"runtime"
	"runtime/debug"
)

// MemoryUsage is a point-in-time view of process memory, in bytes.
type MemoryUsage struct {
	Current uint64 // obtained from the OS for the heap
	Peak    uint64 // total obtained from the OS; never shrinks
	Real    uint64 // live heap objects
	Limit   int64  // soft limit (GOMEMLIMIT), math.MaxInt64 when unset
	NumGC   uint32
	PauseNs uint64
}

func (m MemoryUsage) CurrentMb() float64 {
	return float64(m.Current) / 1024 / 1024
}

type MemoryReader interface {
	Read() MemoryUsage
}

type RuntimeMemory struct{}

func (RuntimeMemory) Read() MemoryUsage {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return MemoryUsage{
		Current: ms.HeapSys,
		Peak:    ms.Sys,
		Real:    ms.HeapAlloc,
		Limit:   debug.SetMemoryLimit(-1),
		NumGC:   ms.NumGC,
		PauseNs: ms.PauseTotalNs,
	}
}

// LimitExceeded reports whether current usage is above limitMb.
func LimitExceeded(usage MemoryUsage, limitMb int) bool {
	return usage.CurrentMb() > float64(limitMb)
}

func roundMb(b uint64) float64 {
	return math.Round(float64(b)/1024/1024*100) / 100
}
