package platform

import (
	"context"

	"github.com/rfswitch/rfswitch"
)

// EdgeSource is the seam between a real GPIO edge interrupt and the
// decoder: anything that can report "the pin changed level at this
// monotonic microsecond timestamp" can drive a Receiver. A production
// binary backs this with a real interrupt-capable GPIO library (the
// dependency pack's closest match is periph.io/x/conn's gpio.PinIn with
// WaitForEdge, used the same way in the pack's own wshat driver); this
// module ships only the interface and a Simulator, so it incurs no
// dependency on a GPIO library the chosen teacher does not itself use.
type EdgeSource interface {
	// WaitForEdge blocks until the next edge or ctx is done, returning
	// the pin's new level and the monotonic timestamp of the edge.
	WaitForEdge(ctx context.Context) (high bool, tUs uint32, err error)
}

// Run drives r.OnEdge from src until ctx is cancelled or src errors.
// This is the host ISR trampoline: on real hardware, the trampoline is
// whatever the platform's interrupt dispatcher calls; here it is a plain
// loop because Go has no ISR context to install into.
func Run(ctx context.Context, src EdgeSource, r *rfswitch.Receiver) error {
	for {
		high, tUs, err := src.WaitForEdge(ctx)
		if err != nil {
			return err
		}
		r.OnEdge(high, tUs)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
