// Package tracer implements the optional pulse-tracing ring buffer: a
// record of recent (pulse, ISR duration) pairs used for diagnostics and
// as the raw input to the offline analyzer.
package tracer

import (
	"fmt"
	"sync/atomic"

	"github.com/rfswitch/rfswitch/internal/container"
	"github.com/rfswitch/rfswitch/internal/diag"
	"github.com/rfswitch/rfswitch/internal/pulse"
)

// Record is a single traced pulse: the pulse itself, plus how long the
// decoder took to process the edge that produced it.
type Record struct {
	Pulse         pulse.Pulse
	ISRDurationUs uint32
}

// Tracer is a fixed-capacity ring buffer of Records, written by the ISR
// after the decoder has finished with an edge, and read by the
// foreground under the Lock/Unlock gate. The ISR silently skips the
// write while locked rather than blocking.
type Tracer struct {
	records *container.RingBuffer[Record]
	locked  atomic.Bool
}

// New allocates a Tracer with room for capacity records.
func New(capacity int) *Tracer {
	return &Tracer{records: container.NewRingBuffer[Record](capacity)}
}

// TracePulse records p and the ISR's service time for that edge. No-op if
// the foreground currently holds the lock for a dump.
func (t *Tracer) TracePulse(p pulse.Pulse, isrDurationUs uint32) {
	if t.locked.Load() {
		return
	}
	t.records.Push(Record{Pulse: p, ISRDurationUs: isrDurationUs})
}

// Lock must be called by the foreground before reading the buffer, and
// Unlock after. Both are cheap atomic stores; neither blocks the ISR,
// which simply drops writes for the duration instead of waiting.
func (t *Tracer) Lock()   { t.locked.Store(true) }
func (t *Tracer) Unlock() { t.locked.Store(false) }

// ReadAccess exposes a read-only view over the traced records, the input
// the offline analyzer consumes. Callers must hold the lock.
func (t *Tracer) ReadAccess() container.RingBufferReadAccess[Record] {
	return t.records.ReadAccess()
}

// Size returns the number of records currently held.
func (t *Tracer) Size() int { return t.records.Size() }

// Dump prints one line per record plus a trailing average-interrupt-load
// summary, bracketing the read under the lock itself so callers don't
// have to remember to.
func (t *Tracer) Dump(w diag.LineWriter) {
	t.Lock()
	defer t.Unlock()

	view := t.records.ReadAccess()
	var totalPulse, totalISR uint64
	for i := 0; i < view.Size(); i++ {
		rec, ok := view.At(i)
		if !ok {
			continue
		}
		level := "LO"
		if rec.Pulse.Level == pulse.HI {
			level = "HI"
		}
		w.WriteLine(fmt.Sprintf("%2d: pulse=%6d %s isr=%4d us", i, rec.Pulse.Duration, level, rec.ISRDurationUs))
		totalPulse += uint64(rec.Pulse.Duration)
		totalISR += uint64(rec.ISRDurationUs)
	}
	if totalPulse == 0 {
		w.WriteLine("Average CPU interrupt load = n/a (no pulses traced)")
		return
	}
	loadPercent := float64(totalISR) * 100.0 / float64(totalPulse)
	w.WriteLine(fmt.Sprintf("Average CPU interrupt load = %.2f%%", loadPercent))
}
