// Package decoder implements the ISR-callable receive state machine: it
// consumes edge timestamps, identifies which registered protocol is in
// play, and assembles a message packet, exposing it safely to a
// foreground consumer. OnEdge, collectCandidates and classifyPair never
// allocate, never take a lock, and never use floating point.
package decoder

import (
	"sync/atomic"
	"time"

	"github.com/rfswitch/rfswitch/internal/container"
	"github.com/rfswitch/rfswitch/internal/protocol"
	"github.com/rfswitch/rfswitch/internal/pulse"
)

// Tracer is the optional pulse-tracing collaborator. Decoder calls
// TracePulse after fully processing an edge, passing the time elapsed
// since OnEdge was entered, so it includes the decoder's own service
// time. A nil Tracer
// field elides tracing entirely, the Go equivalent of the source's
// with-tracer/without-tracer receiver specialization.
type Tracer interface {
	TracePulse(p pulse.Pulse, isrDurationUs uint32)
}

// Decoder is the receive state machine. Zero value is not usable; build
// with New.
type Decoder struct {
	table protocol.Table

	last *container.RingBuffer[pulse.Pulse]

	candidates *candidateSet
	message    MessagePacket

	available atomic.Bool
	suspended atomic.Bool

	dataPhasePulseCounter int
	lastInterruptUs       uint32

	tracer Tracer
}

// New constructs a Decoder bound to table. Equivalent to the source's
// setup(): must be called (and the returned Decoder's OnEdge left
// unreachable by the host ISR) before any edges are delivered.
func New(table protocol.Table) *Decoder {
	return &Decoder{
		table:      table,
		last:       container.NewRingBuffer[pulse.Pulse](2),
		candidates: newCandidateSet(),
	}
}

// SetTracer attaches a pulse tracer. Pass nil to disable tracing. Must be
// called while suspended, per the protocol table mutation contract.
func (d *Decoder) SetTracer(t Tracer) { d.tracer = t }

// OnEdge is the ISR entry point: pinHigh is the pin's level at the edge,
// tUs is the current monotonic microsecond clock reading.
func (d *Decoder) OnEdge(pinHigh bool, tUs uint32) {
	if d.suspended.Load() {
		return
	}
	entry := time.Now()
	duration := pulse.SaturatingDuration(d.lastInterruptUs, tUs)
	d.lastInterruptUs = tUs

	endedLevel := pulse.HI
	if pinHigh {
		endedLevel = pulse.LO
	}
	p := pulse.NewPulse(duration, endedLevel)
	d.last.Push(p)

	switch {
	case d.available.Load():
		// AVAILABLE dispatch: do nothing until the foreground resets.
	case d.candidates.size() > 0:
		d.dataPhasePulseCounter++
		if d.dataPhasePulseCounter >= 2 {
			d.dataPhasePulseCounter = 0
			pA, okA := d.last.At(0)
			pB, okB := d.last.At(1)
			if okA && okB {
				d.classifyPair(pA, pB)
			}
		}
	default:
		if d.last.Size() == 2 {
			pA, _ := d.last.At(0)
			pB, _ := d.last.At(1)
			d.collectCandidates(pA, pB)
		}
	}

	if d.tracer != nil {
		d.tracer.TracePulse(p, uint32(time.Since(entry).Microseconds()))
	}
}

// collectCandidates searches the polarity slice selected by pA's level
// for rows whose synch pair matches (pA, pB), early-exiting once a row's
// synch-A lower bound exceeds pA's duration (the table is sorted
// ascending on that bound).
func (d *Decoder) collectCandidates(pA, pB pulse.Pulse) {
	if pA.Level == pB.Level {
		return
	}
	d.candidates.polarity = pA.Level
	slice := d.table.Slice(pA.Level)
	for idx, row := range slice {
		if pA.Duration < row.Synch.A.Lo {
			break
		}
		if row.Synch.Matches(pA.Duration, pB.Duration) {
			d.candidates.push(idx)
		}
	}
}

type pairKind int

const (
	kindUnknown pairKind = iota
	kindData0
	kindData1
)

// classifyPair dispatches the completed pulse pair against every current
// candidate, iterating from last to first so removal by slot index is
// safe mid-loop.
func (d *Decoder) classifyPair(pA, pB pulse.Pulse) {
	decided := kindUnknown

	for i := d.candidates.size() - 1; i >= 0; i-- {
		row, ok := d.candidates.timingRow(d.table, i)
		if !ok {
			continue
		}

		if row.Synch.MatchesLooseFirst(pA.Duration, pB.Duration) {
			d.onSynchPair(pA, pB)
			return
		}

		aKind := classifyHalf(row.Data0.A, row.Data1.A, pA.Duration)
		bKind := classifyHalf(row.Data0.B, row.Data1.B, pB.Duration)

		if aKind != kindUnknown && aKind == bKind {
			if decided == kindUnknown {
				decided = aKind
			}
			continue
		}
		d.candidates.remove(i)
	}

	if decided == kindUnknown {
		d.onUnknownPair(pA, pB)
		return
	}
	bit := uint32(0)
	if decided == kindData1 {
		bit = 1
	}
	d.message.PushBit(bit)
}

func classifyHalf(data0, data1 pulse.TimeRange, d uint32) pairKind {
	switch {
	case data0.Within(d):
		return kindData0
	case data1.Within(d):
		return kindData1
	default:
		return kindUnknown
	}
}

// onSynchPair handles the SYNCH_PAIR outcome: latch a sufficiently long
// message, or discard and retry candidate collection on the same pulses.
func (d *Decoder) onSynchPair(pA, pB pulse.Pulse) {
	if d.message.BitsCount() >= MinBits {
		d.available.Store(true)
		return
	}
	d.message.Reset()
	d.candidates.reset()
	d.collectCandidates(pA, pB)
}

// onUnknownPair handles the UNKNOWN outcome: discard the in-progress
// message and candidates, then retry candidate collection.
func (d *Decoder) onUnknownPair(pA, pB pulse.Pulse) {
	d.message.Reset()
	d.candidates.reset()
	d.collectCandidates(pA, pB)
}

// --- Foreground API (non-ISR) ---

// Available reports whether a complete message is latched and ready.
func (d *Decoder) Available() bool { return d.available.Load() }

// ReceivedValue returns the accumulated bits as an integer, MSB is the
// first bit received. Undefined if Available is false.
func (d *Decoder) ReceivedValue() uint32 { return d.message.Value() }

// ReceivedBitsCount returns the bits in the message plus message overflow.
func (d *Decoder) ReceivedBitsCount() int { return d.message.BitsCount() }

// ReceivedProtocolCount returns the number of candidates that matched
// every pulse pair of the latched message.
func (d *Decoder) ReceivedProtocolCount() int { return d.candidates.size() }

// ReceivedProtocol returns the id of the i-th matching candidate, or -1
// if i is out of range.
func (d *Decoder) ReceivedProtocol(i int) int {
	row, ok := d.candidates.timingRow(d.table, i)
	if !ok {
		return -1
	}
	return int(row.ID)
}

// ResetAvailable clears the message, candidates, and the available flag,
// if a message is currently latched.
func (d *Decoder) ResetAvailable() {
	if !d.available.Load() {
		return
	}
	d.message.Reset()
	d.candidates.reset()
	d.available.Store(false)
}

// Suspend causes OnEdge to no-op on every subsequent edge.
func (d *Decoder) Suspend() { d.suspended.Store(true) }

// Resume clears decoder state and re-enables OnEdge.
func (d *Decoder) Resume() {
	d.message.Reset()
	d.candidates.reset()
	d.available.Store(false)
	d.dataPhasePulseCounter = 0
	d.last.Reset()
	d.suspended.Store(false)
}
