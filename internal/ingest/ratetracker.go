package ingest

import (
	"sync"
	"time"
)

const maxRateEntries = 5000

// RateTracker tracks the incoming-line rate over a 1-second sliding window,
// for the footer's lines/sec stat.
type RateTracker struct {
	mu         sync.Mutex
	lines      []time.Time
	lastUpdate time.Time
}

// NewRateTracker returns an empty RateTracker.
func NewRateTracker() *RateTracker { return &RateTracker{} }

// AddLine records a newly-arrived line.
func (t *RateTracker) AddLine() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.lastUpdate = now
	t.lines = pruneBefore(t.lines, now.Add(-time.Second))

	if len(t.lines) >= maxRateEntries {
		dropCount := maxRateEntries / 4
		newSlice := make([]time.Time, maxRateEntries-dropCount, maxRateEntries)
		copy(newSlice, t.lines[dropCount:])
		t.lines = newSlice
	}
	t.lines = append(t.lines, now)
}

// Rate returns the number of lines observed in the trailing second. It
// reports 0 if no line has arrived in the last 2 seconds (stream gone idle).
func (t *RateTracker) Rate() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Since(t.lastUpdate) > 2*time.Second {
		return 0
	}
	t.lines = pruneBefore(t.lines, time.Now().Add(-time.Second))
	return len(t.lines)
}

// pruneBefore drops timestamps at or before cutoff, reusing the backing
// array when the slack is small and reallocating when it isn't.
func pruneBefore(lines []time.Time, cutoff time.Time) []time.Time {
	validStart := len(lines)
	for i, ts := range lines {
		if ts.After(cutoff) {
			validStart = i
			break
		}
	}
	if validStart == 0 {
		return lines
	}
	kept := len(lines) - validStart
	if cap(lines) > 1000 && kept < cap(lines)/4 {
		newSlice := make([]time.Time, kept)
		copy(newSlice, lines[validStart:])
		return newSlice
	}
	copy(lines, lines[validStart:])
	return lines[:kept]
}
