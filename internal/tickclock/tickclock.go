// Package tickclock converts wall-clock elapsed time into monotonically
// non-decreasing PPQ ticks at a fixed tempo.
package tickclock

import "time"

// PPQ is the fixed SMF resolution: pulses (ticks) per quarter note.
const PPQ = 960

// TempoBPM is the fixed session tempo.
const TempoBPM = 120

// ticksPerSecond = PPQ * TempoBPM / 60 = 960 * 120 / 60 = 1920.
const ticksPerSecond = float64(PPQ) * float64(TempoBPM) / 60.0

// TickClock derives an absolute tick position from elapsed wall time.
// Monotonicity within one instance is a hard invariant: clock skew or a
// backwards wall-clock jump must never produce a decreasing tick.
type TickClock struct {
	t0       time.Time
	lastTick int64
}

// New starts a clock at the current instant.
func New() *TickClock {
	return &TickClock{t0: time.Now()}
}

// NowTick returns the current absolute tick, guaranteed to be ≥ the value
// returned by the previous call on this instance.
func (c *TickClock) NowTick() int64 {
	elapsed := time.Since(c.t0).Seconds()
	candidate := int64(elapsed*ticksPerSecond + 0.5) // round to nearest

	if candidate < c.lastTick {
		candidate = c.lastTick
	}
	c.lastTick = candidate
	return candidate
}
