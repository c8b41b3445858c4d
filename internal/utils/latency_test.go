package utils

import (
	"testing"
	"time"
)

func TestLatencyTrackerPercentile(t *testing.T) {
	tracker := NewLatencyTracker(100)
	for i := 1; i <= 100; i++ {
		tracker.Observe(time.Duration(i) * time.Millisecond)
	}

	if got := tracker.Count(); got != 100 {
		t.Fatalf("expected 100 samples, got %d", got)
	}
	if got := tracker.Percentile(95); got != 95*time.Millisecond {
		t.Fatalf("unexpected p95: %v", got)
	}
	if got := tracker.Percentile(0); got != 1*time.Millisecond {
		t.Fatalf("unexpected p0: %v", got)
	}
	if got := tracker.Percentile(100); got != 100*time.Millisecond {
		t.Fatalf("unexpected p100: %v", got)
	}
}

func TestLatencyTrackerEmpty(t *testing.T) {
	tracker := NewLatencyTracker(10)
	if got := tracker.Percentile(95); got != 0 {
		t.Fatalf("expected zero duration, got %v", got)
	}
}

func TestLatencyTrackerDropsOldest(t *testing.T) {
	tracker := NewLatencyTracker(3)
	for i := 1; i <= 5; i++ {
		tracker.Observe(time.Duration(i) * time.Second)
	}

	if got := tracker.Count(); got != 3 {
		t.Fatalf("expected 3 retained samples, got %d", got)
	}
	if got := tracker.Percentile(0); got != 3*time.Second {
		t.Fatalf("oldest retained sample should be 3s, got %v", got)
	}
}

func TestLatencyTrackerClampsPercentile(t *testing.T) {
	tracker := NewLatencyTracker(4)
	tracker.Observe(time.Second)
	tracker.Observe(2 * time.Second)

	if got := tracker.Percentile(-5); got != time.Second {
		t.Fatalf("negative percentile should clamp low, got %v", got)
	}
	if got := tracker.Percentile(250); got != 2*time.Second {
		t.Fatalf("oversized percentile should clamp high, got %v", got)
	}
}
