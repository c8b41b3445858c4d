package utils

import (
	"sort"
	"sync"
	"time"
)

// LatencyTracker stores recent task durations and computes percentiles.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []time.Duration
	limit   int
}

// NewLatencyTracker creates a tracker storing up to limit samples.
func NewLatencyTracker(limit int) *LatencyTracker {
	if limit <= 0 {
		limit = 512
	}
	return &LatencyTracker{limit: limit}
}

// Observe records a new duration, dropping the oldest sample once full.
func (l *LatencyTracker) Observe(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.samples = append(l.samples, d)
	if len(l.samples) > l.limit {
		copy(l.samples, l.samples[1:])
		l.samples = l.samples[:l.limit]
	}
}

// Count returns the number of samples recorded.
func (l *LatencyTracker) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.samples)
}

// Percentile returns the p-th percentile (0-100) duration, zero when empty.
func (l *LatencyTracker) Percentile(p float64) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.samples) == 0 {
		return 0
	}

	sorted := append([]time.Duration(nil), l.samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	index := int((p / 100.0) * float64(len(sorted)-1))
	return sorted[index]
}
