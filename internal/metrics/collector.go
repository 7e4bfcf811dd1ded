// Package metrics provides in-memory request statistics for the sheets
// client and facade. Against a rate-limited remote API the interesting
// numbers are attempt counts and retries, not just wall time.
package metrics

import (
	"math"
	"sync"
	"time"
)

// RequestMetrics holds raw aggregates for one operation type.
type RequestMetrics struct {
	Count         int64
	Failures      int64
	TotalTime     time.Duration
	MinTime       time.Duration
	MaxTime       time.Duration
	TotalAttempts int64
	Retries       int64
}

// RequestSnapshot provides computed stats from raw metrics.
type RequestSnapshot struct {
	Count       int64
	Failures    int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
	Attempts    int64
	Retries     int64
}

// Snapshot is a point-in-time view of all collected operations.
type Snapshot struct {
	UptimeSeconds float64
	Operations    map[string]RequestSnapshot
}

// Collector aggregates request statistics. All methods are safe for
// concurrent use.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*RequestMetrics
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*RequestMetrics),
	}
}

// RecordRequest records one logical call: its duration, how many HTTP
// attempts it took, and whether it ultimately failed.
func (c *Collector) RecordRequest(op string, duration time.Duration, attempts int, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.ops[op]
	if !ok {
		m = &RequestMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}

	m.Count++
	m.TotalTime += duration
	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}

	m.TotalAttempts += int64(attempts)
	if attempts > 1 {
		m.Retries += int64(attempts - 1)
	}
	if failed {
		m.Failures++
	}
}

// Snapshot returns a copy of all metrics collected so far.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Operations:    make(map[string]RequestSnapshot, len(c.ops)),
	}
	for op, m := range c.ops {
		if m.Count == 0 {
			continue
		}
		minMs := m.MinTime.Milliseconds()
		if m.MinTime == time.Duration(math.MaxInt64) {
			minMs = 0
		}
		snap.Operations[op] = RequestSnapshot{
			Count:       m.Count,
			Failures:    m.Failures,
			TotalTimeMs: m.TotalTime.Milliseconds(),
			AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
			MinTimeMs:   minMs,
			MaxTimeMs:   m.MaxTime.Milliseconds(),
			Attempts:    m.TotalAttempts,
			Retries:     m.Retries,
		}
	}
	return snap
}
