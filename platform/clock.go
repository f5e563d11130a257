// Package platform provides the host collaborators the decoder core
// treats as external: a monotonic microsecond clock and the seam for
// attaching a real GPIO edge interrupt. Nothing here runs on the ISR
// path itself — OnEdge only ever consumes a timestamp this package
// produced.
package platform

import (
	"time"

	"golang.org/x/sys/unix"
)

// MonotonicClock reads CLOCK_MONOTONIC in microseconds, matching the
// decoder's t_µs contract. If unix.ClockGettime fails, NowUs falls back
// to time.Now() based elapsed time from construction, which still
// provides a monotonic (if less precise) source.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock constructs a clock whose NowUs readings are relative
// to an arbitrary epoch: the CLOCK_MONOTONIC origin, or construction time
// in the fallback path. Only differences
// between successive readings are meaningful, matching the decoder's use
// of durations rather than absolute time.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// NowUs returns the current monotonic microsecond reading.
func (c *MonotonicClock) NowUs() uint32 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err == nil {
		return uint32((ts.Sec*1_000_000 + ts.Nsec/1_000) & 0xffffffff)
	}
	return uint32(time.Since(c.start).Microseconds() & 0xffffffff)
}
