// Package rfswitch is the public façade over the pulse-decoding core: a
// Receiver binds a protocol table to a Decoder, forwards edges delivered
// through OnEdge, and
// exposes the read API, the pulse tracer, and the offline protocol
// analyzer as a single cohesive type, mirroring the original
// RcSwitchReceiver template facade.
package rfswitch

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/rfswitch/rfswitch/internal/analyzer"
	"github.com/rfswitch/rfswitch/internal/decoder"
	"github.com/rfswitch/rfswitch/internal/diag"
	"github.com/rfswitch/rfswitch/internal/protocol"
	"github.com/rfswitch/rfswitch/internal/tracer"
)

// Receiver is the public entry point: bind a protocol table with Begin,
// feed edges with OnEdge (from the host's ISR trampoline), and read
// decoded messages with the Received* methods.
type Receiver struct {
	ID uuid.UUID

	dec        *decoder.Decoder
	tracer     *tracer.Tracer
	tolerance  float64
	started    bool
}

// Option configures a Receiver at construction time.
type Option func(*Receiver)

// WithPulseTracer attaches a pulse tracer of the given capacity,
// matching the original's ReceiverWithPulseTracer<N> specialization.
// Omit this option for a tracer-less receiver, the without-tracer
// specialization.
func WithPulseTracer(capacity int) Option {
	return func(r *Receiver) {
		r.tracer = tracer.New(capacity)
	}
}

// New constructs a Receiver. It does not yet accept edges — call Begin
// first, matching the original's two-phase construct-then-begin pattern.
func New(opts ...Option) *Receiver {
	r := &Receiver{ID: uuid.New(), tolerance: 20}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Begin installs table and enables OnEdge. Must be called with the host
// ISR detached, or while the receiver is suspended.
func (r *Receiver) Begin(table protocol.Table) {
	r.dec = decoder.New(table)
	if r.tracer != nil {
		r.dec.SetTracer(r.tracer)
	}
	r.started = true
}

// OnEdge is the ISR entry point, forwarded to the decoder unchanged.
func (r *Receiver) OnEdge(pinHigh bool, tUs uint32) {
	if !r.started {
		return
	}
	r.dec.OnEdge(pinHigh, tUs)
}

// Available reports whether a decoded message is ready.
func (r *Receiver) Available() bool { return r.started && r.dec.Available() }

// ReceivedValue returns the decoded bits as an integer, MSB first.
func (r *Receiver) ReceivedValue() uint32 { return r.dec.ReceivedValue() }

// ReceivedBitsCount returns the number of bits decoded, including any
// dropped to overflow.
func (r *Receiver) ReceivedBitsCount() int { return r.dec.ReceivedBitsCount() }

// ReceivedProtocolCount returns how many protocol candidates matched the
// latched message.
func (r *Receiver) ReceivedProtocolCount() int { return r.dec.ReceivedProtocolCount() }

// ReceivedProtocol returns the id of the i-th matching candidate, or -1.
func (r *Receiver) ReceivedProtocol(i int) int { return r.dec.ReceivedProtocol(i) }

// ResetAvailable clears the latched message so decoding can continue.
func (r *Receiver) ResetAvailable() { r.dec.ResetAvailable() }

// Suspend stops OnEdge from touching decoder state.
func (r *Receiver) Suspend() { r.dec.Suspend() }

// Resume clears decoder state and re-enables OnEdge.
func (r *Receiver) Resume() { r.dec.Resume() }

// DumpPulseTracer writes the traced pulses to sink. If this receiver was
// built without WithPulseTracer, it writes a single "not enabled" notice
// instead.
func (r *Receiver) DumpPulseTracer(sink diag.LineWriter) {
	if r.tracer == nil {
		sink.WriteLine("pulse tracer not enabled for this receiver")
		return
	}
	r.tracer.Dump(sink)
}

// SetAnalyzerTolerancePercent overrides the ± tolerance percentage the
// offline analyzer uses when clustering pulses. Defaults to 20.
func (r *Receiver) SetAnalyzerTolerancePercent(pct float64) { r.tolerance = pct }

// DeduceProtocolFromPulseTracer runs the offline analyzer against the
// currently traced pulses and writes a proposed protocol.Timing, or a
// failure notice, to sink.
func (r *Receiver) DeduceProtocolFromPulseTracer(sink diag.LineWriter) bool {
	if r.tracer == nil {
		sink.WriteLine("pulse tracer not enabled for this receiver")
		return false
	}
	r.tracer.Lock()
	defer r.tracer.Unlock()
	return analyzer.DeduceProtocol(r.tracer.ReadAccess(), r.tolerance, sink)
}

// String renders a short identity line, used in logs.
func (r *Receiver) String() string {
	return fmt.Sprintf("rfswitch.Receiver{id=%s}", r.ID)
}
