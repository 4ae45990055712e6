package prefilter

// Tracker wraps a Prefilter with effectiveness tracking for one search.
//
// The tracker monitors the ratio of confirmed matches to candidates found.
// When effectiveness drops below a threshold (too many false positives),
// the prefilter is retired and the caller proposes every position instead,
// which avoids paying for both the prefilter and the evaluator at almost
// every offset.
//
// Example usage:
//
//	tracker := prefilter.NewTracker(pf)
//	next := func(pos int) int {
//	    if !tracker.IsActive() {
//	        return pos
//	    }
//	    return tracker.Find(haystack, pos)
//	}
type Tracker struct {
	inner Prefilter

	candidates uint64
	confirms   uint64

	checkInterval  uint64
	minEfficiency  float64
	warmupPeriod   uint64
	lastCheckpoint uint64

	active bool
}

// TrackerConfig holds configuration for the effectiveness tracker.
type TrackerConfig struct {
	// CheckInterval is how often to check effectiveness (in candidates).
	// Default: 64
	CheckInterval uint64

	// MinEfficiency is the minimum acceptable ratio of confirms/candidates.
	// Default: 0.1 (10%)
	MinEfficiency float64

	// WarmupPeriod is the minimum number of candidates before checking effectiveness.
	// Default: 128
	WarmupPeriod uint64
}

// DefaultTrackerConfig returns the default tracker configuration.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		CheckInterval: 64,
		MinEfficiency: 0.1,
		WarmupPeriod:  128,
	}
}

// NewTracker creates a new tracker for the given prefilter with default config.
//
// Returns nil if the inner prefilter is nil.
func NewTracker(inner Prefilter) *Tracker {
	return NewTrackerWithConfig(inner, DefaultTrackerConfig())
}

// NewTrackerWithConfig creates a new tracker with custom configuration.
//
// Returns nil if the inner prefilter is nil.
func NewTrackerWithConfig(inner Prefilter, config TrackerConfig) *Tracker {
	if inner == nil {
		return nil
	}
	return &Tracker{
		inner:         inner,
		checkInterval: config.CheckInterval,
		minEfficiency: config.MinEfficiency,
		warmupPeriod:  config.WarmupPeriod,
		active:        true,
	}
}

// Find returns the next candidate position, or -1 if none found or retired.
//
// Unlike the inner prefilter, this may return -1 even when candidates exist
// if the prefilter has been retired. Callers check IsActive first.
func (t *Tracker) Find(haystack []byte, start int) int {
	if !t.active {
		return -1
	}

	pos := t.inner.Find(haystack, start)
	if pos >= 0 {
		t.candidates++
		t.checkEffectiveness()
	}
	return pos
}

// ConfirmMatch records that a candidate turned out to be a match.
func (t *Tracker) ConfirmMatch() {
	t.confirms++
}

// IsActive returns true if the prefilter is still being used.
func (t *Tracker) IsActive() bool {
	return t.active
}

// Stats returns the current tracking statistics.
func (t *Tracker) Stats() (candidates, confirms uint64, efficiency float64, active bool) {
	candidates = t.candidates
	confirms = t.confirms
	if candidates > 0 {
		efficiency = float64(confirms) / float64(candidates)
	}
	active = t.active
	return
}

// Reset clears statistics and re-enables the prefilter.
func (t *Tracker) Reset() {
	t.candidates = 0
	t.confirms = 0
	t.lastCheckpoint = 0
	t.active = true
}

// checkEffectiveness retires the prefilter when too few candidates were
// confirmed. It only looks at the ratio every checkInterval candidates.
func (t *Tracker) checkEffectiveness() {
	if t.candidates < t.warmupPeriod {
		return
	}
	if t.candidates-t.lastCheckpoint < t.checkInterval {
		return
	}
	t.lastCheckpoint = t.candidates

	efficiency := float64(t.confirms) / float64(t.candidates)
	if efficiency < t.minEfficiency {
		t.active = false
	}
}
