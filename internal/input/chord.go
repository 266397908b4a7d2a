package input

import "time"

// Clock provides the current time. Use RealClock in production and a fixed
// clock in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// DefaultChordWindow is how close together two presses of the same key must
// land to count as a chord.
const DefaultChordWindow = 300 * time.Millisecond

// ChordDetector tracks the single most recent keystroke to recognize
// double-tap chords such as "g g". It is owned by whoever dispatches keys
// for it (one detector per navigation resolver), never shared.
type ChordDetector struct {
	window  time.Duration
	lastKey string
	lastAt  time.Time
	pending bool
}

// NewChordDetector creates a detector with the given window.
// A non-positive window falls back to DefaultChordWindow.
func NewChordDetector(window time.Duration) *ChordDetector {
	if window <= 0 {
		window = DefaultChordWindow
	}
	return &ChordDetector{window: window}
}

// Observe records a key press at the given time. It returns true when the
// previous observation was the same key within the window; the detector
// then resets so a third press starts a fresh chord. Any other key both
// fails to complete the chord and becomes the new pending observation.
func (d *ChordDetector) Observe(key string, now time.Time) bool {
	if d.pending && d.lastKey == key && now.Sub(d.lastAt) < d.window {
		d.pending = false
		return true
	}
	d.pending = true
	d.lastKey = key
	d.lastAt = now
	return false
}

// Reset clears any pending observation.
func (d *ChordDetector) Reset() {
	d.pending = false
	d.lastKey = ""
}
