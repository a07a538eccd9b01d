package pitch

import (
	"time"
)

// Debounce policy defaults. The lookback window and minimum detection count
// are empirically chosen; both are overridable via
// NewStabilityFilterWithParams.
const (
	DefaultStabilityWindow = 2 * time.Second
	DefaultMinDetections   = 3
)

// StabilityFilter debounces per-frame pitch decisions so that an isolated
// detection (a single noisy frame during a fricative) never reaches the
// caller, at the cost of a little onset latency. It is a gate, not a
// smoother: the frequency value passes through unmodified or not at all.
//
// The filter owns the only mutable state in the analysis core: an ordered
// history of detection timestamps bounded by the lookback window. It belongs
// to exactly one listening session and must not be shared across concurrent
// sessions; call Reset when a session stops so a restart does not inherit
// stale detection counts.
type StabilityFilter struct {
	window        time.Duration
	minDetections int
	history       []time.Time
}

// NewStabilityFilter creates a filter with the default window and count
func NewStabilityFilter() *StabilityFilter {
	return NewStabilityFilterWithParams(DefaultStabilityWindow, DefaultMinDetections)
}

// NewStabilityFilterWithParams creates a filter with a custom lookback window
// and minimum detection count (floored at 1)
func NewStabilityFilterWithParams(window time.Duration, minDetections int) *StabilityFilter {
	if minDetections < 1 {
		minDetections = 1
	}
	return &StabilityFilter{
		window:        window,
		minDetections: minDetections,
	}
}

// Update records the raw estimate against a monotonic timestamp and returns
// the gated estimate: the raw value once the lookback window holds at least
// the minimum number of detections, unvoiced otherwise.
func (f *StabilityFilter) Update(raw Estimate, now time.Time) Estimate {
	cutoff := now.Add(-f.window)
	purge := 0
	for purge < len(f.history) && f.history[purge].Before(cutoff) {
		purge++
	}
	if purge > 0 {
		f.history = append(f.history[:0], f.history[purge:]...)
	}

	if !raw.Voiced {
		return Estimate{}
	}

	f.history = append(f.history, now)
	if len(f.history) < f.minDetections {
		return Estimate{}
	}

	return raw
}

// Reset clears the detection history for session teardown
func (f *StabilityFilter) Reset() {
	f.history = f.history[:0]
}
