// Package analyzer implements the offline pulse-timing heuristic: given a
// captured buffer of recent pulses, it clusters them by level and
// duration, identifies the synch and data categories, and proposes a
// protocol.Timing. Unlike the decoder, this package freely uses floating
// point — it never runs on the ISR path.
package analyzer

import (
	"fmt"
	"math"
	"sort"

	"github.com/rfswitch/rfswitch/internal/container"
	"github.com/rfswitch/rfswitch/internal/diag"
	"github.com/rfswitch/rfswitch/internal/pulse"
	"github.com/rfswitch/rfswitch/internal/tracer"
)

const (
	allCategoryCapacity   = 6
	synchCategoryCapacity = 2
	dataCategoryCapacity  = 4

	// synchPulsesMinRatio is the minimum ratio between the two synch
	// category averages required to accept a synch pair.
	synchPulsesMinRatio = 8.0
	// dataPulsesMinRatio is the minimum long/short ratio required for
	// each bit's pulse pair.
	dataPulsesMinRatio = 1.5

	// MinRecordsForDeduction is the minimum number of traced pulses the
	// analyzer needs before attempting a deduction.
	MinRecordsForDeduction = 132

	// emitClockUs is the scaling base used in the proposed timing line.
	emitClockUs = 10
)

// DeduceProtocol attempts to derive a protocol.Timing from records, the
// tracer's captured pulses, tolerating tolerancePercent deviation when
// clustering. It writes either a makeTimingSpec proposal line or a
// human-readable failure notice to sink, and reports whether a proposal
// was emitted.
func DeduceProtocol(records container.RingBufferReadAccess[tracer.Record], tolerancePercent float64, sink diag.LineWriter) bool {
	n := records.Size()
	if n < MinRecordsForDeduction {
		sink.WriteLine(fmt.Sprintf("protocol detection failed: only %d traced pulses, need at least %d", n, MinRecordsForDeduction))
		return false
	}

	all := buildAllCategories(records, tolerancePercent)
	if all.len() == 0 {
		sink.WriteLine("protocol detection failed: no pulse categories found")
		return false
	}
	sortCategoriesByAvg(all.categories)
	synchRef := all.categories[len(all.categories)-1]

	synch, data := buildSynchAndDataCategories(records, synchRef, tolerancePercent)

	if synch.len() != synchCategoryCapacity {
		sink.WriteLine(fmt.Sprintf("protocol detection failed: found %d synch categories, need exactly %d", synch.len(), synchCategoryCapacity))
		return false
	}
	sortCategoriesByAvg(synch.categories)
	synchShort, synchLong := synch.categories[0], synch.categories[1]
	if synchLong.avg <= synchPulsesMinRatio*synchShort.avg {
		sink.WriteLine("protocol detection failed: synch pulses do not meet the minimum long/short ratio")
		return false
	}

	if data.len() != dataCategoryCapacity {
		sink.WriteLine(fmt.Sprintf("protocol detection failed: found %d data categories, need exactly %d", data.len(), dataCategoryCapacity))
		return false
	}

	d0A, d0B, d1A, d1B, inverse, ok := assignDataPairs(data.categories, synchShort)
	if !ok {
		sink.WriteLine("protocol detection failed: could not separate data categories by level")
		return false
	}
	if d0B.mean() <= dataPulsesMinRatio*d0A.mean() {
		sink.WriteLine("protocol detection failed: data-0 pulses do not meet the minimum long/short ratio")
		return false
	}
	if d1A.mean() <= dataPulsesMinRatio*d1B.mean() {
		sink.WriteLine("protocol detection failed: data-1 pulses do not meet the minimum long/short ratio")
		return false
	}

	scale := func(c *category) int { return int(math.Round(c.mean() / emitClockUs)) }
	sink.WriteLine(fmt.Sprintf(
		"makeTimingSpec< #, %d, %d, %d, %d, %d, %d, %d, %d, %s>,",
		emitClockUs, int(tolerancePercent),
		scale(synchShort), scale(synchLong),
		scale(d0A), scale(d0B), scale(d1A), scale(d1B),
		boolWord(inverse),
	))
	return true
}

func boolWord(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func sortCategoriesByAvg(cats []*category) {
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].avg < cats[j].avg })
}

// buildAllCategories is pass 1: cluster every traced pulse into up to
// allCategoryCapacity categories by level and ±tolerancePercent duration.
func buildAllCategories(records container.RingBufferReadAccess[tracer.Record], tolerancePercent float64) *collection {
	c := newCollection(allCategoryCapacity)
	for i := 0; i < records.Size(); i++ {
		rec, ok := records.At(i)
		if !ok {
			continue
		}
		c.put(rec.Pulse.Level, rec.Pulse.Duration, tolerancePercent)
	}
	return c
}

// buildSynchAndDataCategories is pass 2: classify each pulse as synch-A,
// synch-B, or data by looking at the following pulse, then re-cluster
// into the capped synch/data collections.
func buildSynchAndDataCategories(records container.RingBufferReadAccess[tracer.Record], synchB *category, tolerancePercent float64) (*collection, *collection) {
	synch := newCollection(synchCategoryCapacity)
	data := newCollection(dataCategoryCapacity)

	n := records.Size()
	for i := 0; i < n; i++ {
		rec, ok := records.At(i)
		if !ok {
			continue
		}
		switch {
		case i+1 < n && isWithinTolerance(nextDuration(records, i+1), synchB.avg, tolerancePercent):
			synch.put(rec.Pulse.Level, rec.Pulse.Duration, tolerancePercent)
		case isWithinTolerance(float64(rec.Pulse.Duration), synchB.avg, tolerancePercent):
			synch.put(rec.Pulse.Level, rec.Pulse.Duration, tolerancePercent)
		default:
			data.put(rec.Pulse.Level, rec.Pulse.Duration, tolerancePercent)
		}
	}
	return synch, data
}

func nextDuration(records container.RingBufferReadAccess[tracer.Record], i int) float64 {
	rec, ok := records.At(i)
	if !ok {
		return math.MaxFloat64
	}
	return float64(rec.Pulse.Duration)
}

func isWithinTolerance(d, avg, tolerancePercent float64) bool {
	tol := avg * tolerancePercent / 100
	return d >= avg-tol && d <= avg+tol
}

// assignDataPairs sorts the four data categories by level then duration
// and binds them to d0A/d0B/d1A/d1B per the inverse/normal layout. The
// polarity is inverse iff the shorter synch category is LO.
func assignDataPairs(cats []*category, synchShort *category) (d0A, d0B, d1A, d1B *category, inverse bool, ok bool) {
	if len(cats) != dataCategoryCapacity {
		return nil, nil, nil, nil, false, false
	}
	var lo, hi []*category
	for _, c := range cats {
		if c.level == pulse.LO {
			lo = append(lo, c)
		} else {
			hi = append(hi, c)
		}
	}
	if len(lo) != 2 || len(hi) != 2 {
		return nil, nil, nil, nil, false, false
	}
	sortCategoriesByAvg(lo)
	sortCategoriesByAvg(hi)
	shortLO, longLO := lo[0], lo[1]
	shortHI, longHI := hi[0], hi[1]

	inverse = synchShort.level == pulse.LO
	if inverse {
		return shortLO, longHI, longLO, shortHI, true, true
	}
	return shortHI, longLO, longHI, shortLO, false, true
}
