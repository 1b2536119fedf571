// Package stats reports process runtime statistics for the /stats endpoint.
package stats

import (
	"runtime"
	"time"
)

var startedAt = time.Now()

// Stats is a point-in-time view of the process.
type Stats struct {
	Version    string `json:"version"`
	Time       int64  `json:"time"`
	GoVersion  string `json:"go_version"`
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines"`
	CPUs       int    `json:"cpus"`

	Alloc       uint64 `json:"alloc"`
	TotalAlloc  uint64 `json:"total_alloc"`
	Sys         uint64 `json:"sys"`
	HeapObjects uint64 `json:"heap_objects"`
	NumGC       uint32 `json:"num_gc"`
}

// GetStats collects the current Stats. Time is in Unix nanoseconds.
func GetStats(version string) *Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	now := time.Now()
	return &Stats{
		Version:    version,
		Time:       now.UnixNano(),
		GoVersion:  runtime.Version(),
		Uptime:     now.Sub(startedAt).String(),
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),

		Alloc:       mem.Alloc,
		TotalAlloc:  mem.TotalAlloc,
		Sys:         mem.Sys,
		HeapObjects: mem.HeapObjects,
		NumGC:       mem.NumGC,
	}
}
