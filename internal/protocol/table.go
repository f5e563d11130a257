// Package protocol builds and holds the sorted, immutable protocol table
// the decoder's candidate search walks.
package protocol

import (
	"fmt"
	"sort"

	"github.com/rfswitch/rfswitch/internal/diag"
	"github.com/rfswitch/rfswitch/internal/pulse"
)

// Timing is one registered protocol's timing envelope: an id, a polarity,
// and the three pulse-pair ranges that define its synch and data bits.
type Timing struct {
	ID      uint16
	Inverse bool
	Synch   pulse.PulsePairRange
	Data0   pulse.PulsePairRange
	Data1   pulse.PulsePairRange
}

// BuildTiming is the runtime equivalent of the original source's
// compile-time makeTimingSpec template: it scales each nominal pulse
// count by clockUs and forms a symmetric ±tolerancePercent window.
func BuildTiming(id uint16, clockUs, tolerancePercent uint32, synchA, synchB, d0A, d0B, d1A, d1B uint32, inverse bool) Timing {
	rng := func(n uint32) pulse.TimeRange { return pulse.NewTimeRange(clockUs, tolerancePercent, n) }
	return Timing{
		ID:      id,
		Inverse: inverse,
		Synch:   pulse.PulsePairRange{A: rng(synchA), B: rng(synchB)},
		Data0:   pulse.PulsePairRange{A: rng(d0A), B: rng(d0B)},
		Data1:   pulse.PulsePairRange{A: rng(d1A), B: rng(d1B)},
	}
}

// Table is the two polarity-partitioned, sorted slices the decoder
// searches. It is immutable once built by NewTable.
type Table struct {
	Normal  []Timing
	Inverse []Timing
}

// NewTable partitions timings into normal/inverse slices and sorts each
// ascending by the lower bound of the synch-A range, enabling early-exit
// candidate collection. The table is small (O(10) entries); this sort
// runs once, before the ISR is attached, never from the decode path.
func NewTable(timings []Timing) Table {
	var t Table
	for _, tm := range timings {
		if tm.Inverse {
			t.Inverse = append(t.Inverse, tm)
		} else {
			t.Normal = append(t.Normal, tm)
		}
	}
	less := func(s []Timing) func(i, j int) bool {
		return func(i, j int) bool { return s[i].Synch.A.Lo < s[j].Synch.A.Lo }
	}
	sort.SliceStable(t.Normal, less(t.Normal))
	sort.SliceStable(t.Inverse, less(t.Inverse))
	return t
}

// Slice returns the polarity slice matching level: HI selects the normal
// slice, LO selects the inverse slice, matching collect_candidates'
// polarity choice.
func (t Table) Slice(level pulse.Level) []Timing {
	if level == pulse.HI {
		return t.Normal
	}
	return t.Inverse
}

// Dump reproduces the original table printout: one header line followed
// by one row per timing, normal entries first.
func (t Table) Dump(w diag.LineWriter) {
	w.WriteLine(" #,i,{<--------SYNCH----------->},{<---------DATA-0---------->},{<---------DATA-1---------->}")
	i := 0
	for _, tm := range t.Normal {
		w.WriteLine(dumpRow(i, tm))
		i++
	}
	for _, tm := range t.Inverse {
		w.WriteLine(dumpRow(i, tm))
		i++
	}
}

func dumpRow(i int, tm Timing) string {
	return fmt.Sprintf("%2d,%1d,{%s},{%s},{%s}", tm.ID, i, sprintRange(tm.Synch), sprintRange(tm.Data0), sprintRange(tm.Data1))
}

func sprintRange(p pulse.PulsePairRange) string {
	return fmt.Sprintf("%5d,%5d,%5d,%5d", p.A.Lo, p.A.Hi, p.B.Lo, p.B.Hi)
}
