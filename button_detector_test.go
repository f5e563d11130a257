package rfswitch

import (
	"testing"
	"time"

	"github.com/rfswitch/rfswitch/internal/protocol"
)

func newTestReceiver() *Receiver {
	r := New()
	r.Begin(protocol.Canonical)
	return r
}

// pressRow1 sends one closed row-1 message starting at t0 and returns the
// timestamp of its last edge, so a following press continues the clock.
func pressRow1(r *Receiver, t0 uint32, bits []int) uint32 {
	tUs := feedRow1Message(r, t0, bits)
	r.OnEdge(false, tUs+350)
	r.OnEdge(true, tUs+350+10850)
	return tUs + 350 + 10850
}

func TestButtonDetectorSignalsOncePerHeldPress(t *testing.T) {
	r := newTestReceiver()
	d := NewButtonDetector(10 * time.Millisecond)
	d.Begin(r)
	d.RCDataToButton = func(protocolID int, value uint32) ButtonCode {
		if value == 0x13 {
			return ButtonCode(1)
		}
		return NoButton
	}

	var presses []ButtonCode
	d.OnButtonPressed = func(code ButtonCode) { presses = append(presses, code) }

	// A held button retransmits the same value repeatedly; only the
	// first scan while off should signal.
	tUs := uint32(0)
	for i := 0; i < 3; i++ {
		tUs = pressRow1(r, tUs, []int{0, 1, 0, 0, 1, 1})
		d.ScanRcButtons()
	}

	if len(presses) != 1 {
		t.Fatalf("got %d presses for a held button, want 1: %v", len(presses), presses)
	}
	if presses[0] != ButtonCode(1) {
		t.Fatalf("pressed code = %d, want 1", presses[0])
	}
}

func TestButtonDetectorResignalsAfterReleaseAndDebounce(t *testing.T) {
	r := newTestReceiver()
	debounce := 5 * time.Millisecond
	d := NewButtonDetector(debounce)
	d.Begin(r)
	d.RCDataToButton = func(protocolID int, value uint32) ButtonCode {
		if value == 0x13 {
			return ButtonCode(1)
		}
		return NoButton
	}
	var presses int
	d.OnButtonPressed = func(ButtonCode) { presses++ }

	tUs := pressRow1(r, 0, []int{0, 1, 0, 0, 1, 1})
	d.ScanRcButtons() // press 1

	// No packet: button released, moves to OFF_DELAY then OFF once the
	// debounce window elapses.
	d.ScanRcButtons()
	time.Sleep(debounce + 2*time.Millisecond)
	d.ScanRcButtons()

	pressRow1(r, tUs, []int{0, 1, 0, 0, 1, 1})
	d.ScanRcButtons() // press 2, after a full release

	if presses != 2 {
		t.Fatalf("presses = %d, want 2 (release then re-press)", presses)
	}
}

func TestButtonDetectorIgnoresUnmappedPackets(t *testing.T) {
	r := newTestReceiver()
	d := NewButtonDetector(10 * time.Millisecond)
	d.Begin(r)
	d.RCDataToButton = func(int, uint32) ButtonCode { return NoButton }

	pressed := false
	d.OnButtonPressed = func(ButtonCode) { pressed = true }

	pressRow1(r, 0, []int{0, 1, 0, 0, 1, 1})
	d.ScanRcButtons()

	if pressed {
		t.Fatal("a packet that maps to NoButton must never signal OnButtonPressed")
	}
}

func TestButtonDetectorNilMapperResolvesToNoButton(t *testing.T) {
	r := newTestReceiver()
	d := NewButtonDetector(10 * time.Millisecond)
	d.Begin(r)
	// RCDataToButton left nil.
	pressRow1(r, 0, []int{0, 1, 0, 0, 1, 1})
	d.ScanRcButtons() // must not panic
}
