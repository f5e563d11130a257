// Package pulse implements the µs timing-range arithmetic and the pulse
// model the decoder state machine is built on. Nothing in this package
// allocates or uses floating point; it is safe to call from an ISR.
package pulse

// Level is the electrical level a pulse transitioned away from.
type Level uint8

const (
	LO Level = iota
	HI
	UnknownLevel
)

// Other returns the complementary level: the level of the pulse an edge
// ends is the complement of the level the pin reports at that edge.
func (l Level) Other() Level {
	switch l {
	case LO:
		return HI
	case HI:
		return LO
	default:
		return UnknownLevel
	}
}

// Pulse is a single half-cycle: how long the line held a level, and which
// level it held. Duration saturates at the maximum representable value
// rather than wrapping, so an implausibly long pulse simply fails every
// protocol's range test instead of aliasing to a short one.
type Pulse struct {
	Duration uint32
	Level    Level
}

const maxDuration = ^uint32(0)

// NewPulse builds a Pulse from dur and level as given; it does no
// saturation itself. Durations computed with SaturatingDuration are
// already capped at maxDuration.
func NewPulse(dur uint32, level Level) Pulse {
	return Pulse{Duration: dur, Level: level}
}

// SaturatingDuration computes t1 - t0 on a wrapping µs clock and saturates
// the result to maxDuration rather than underflowing, mirroring the
// storage-saturation rule in the data model.
func SaturatingDuration(t0, t1 uint32) uint32 {
	if t1 < t0 {
		// clock wrapped; treat as a single huge interval rather than
		// producing a small, misleadingly-matching duration.
		return maxDuration
	}
	return t1 - t0
}

// CompareResult is the outcome of comparing a duration against a TimeRange.
type CompareResult int8

const (
	TooShort CompareResult = -1
	IsWithin CompareResult = 0
	TooLong  CompareResult = 1
)

// TimeRange is an inclusive-low, exclusive-high µs window: [Lo, Hi).
type TimeRange struct {
	Lo, Hi uint32
}

// NewTimeRange builds a symmetric ±tolerancePercent window around
// nominalCount*clockUs, matching the original makeTimingSpec arithmetic:
// lo = n*clock*(100-tol)/100, hi = n*clock*(100+tol)/100.
func NewTimeRange(clockUs uint32, tolerancePercent uint32, nominalCount uint32) TimeRange {
	base := nominalCount * clockUs
	return TimeRange{
		Lo: base * (100 - tolerancePercent) / 100,
		Hi: base * (100 + tolerancePercent) / 100,
	}
}

// Compare classifies d against the range.
func (r TimeRange) Compare(d uint32) CompareResult {
	switch {
	case d < r.Lo:
		return TooShort
	case d >= r.Hi:
		return TooLong
	default:
		return IsWithin
	}
}

// Within reports whether d falls in [Lo, Hi).
func (r TimeRange) Within(d uint32) bool {
	return r.Compare(d) == IsWithin
}

// NotTooShort reports whether d is IsWithin or TooLong — the "loose"
// synch-A acceptance rule used during data-phase resynchronization.
func (r TimeRange) NotTooShort(d uint32) bool {
	return r.Compare(d) != TooShort
}

// PulsePairRange holds the A and B half-pulse ranges of a synch or data
// pulse pair.
type PulsePairRange struct {
	A, B TimeRange
}

// Matches reports whether both half-pulses are IsWithin their ranges.
func (r PulsePairRange) Matches(a, b uint32) bool {
	return r.A.Within(a) && r.B.Within(b)
}

// MatchesLooseFirst applies the "synch-A may run long" rule: A must not be
// TooShort, B must be IsWithin. Used only during data-phase
// resynchronization, never during initial candidate collection.
func (r PulsePairRange) MatchesLooseFirst(a, b uint32) bool {
	return r.A.NotTooShort(a) && r.B.Within(b)
}
