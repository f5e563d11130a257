package tracer

import (
	"strings"
	"testing"

	"github.com/rfswitch/rfswitch/internal/diag"
	"github.com/rfswitch/rfswitch/internal/pulse"
)

func TestTracePulseRecordsUntilLocked(t *testing.T) {
	tr := New(4)
	tr.TracePulse(pulse.Pulse{Duration: 100, Level: pulse.HI}, 5)
	tr.Lock()
	tr.TracePulse(pulse.Pulse{Duration: 200, Level: pulse.LO}, 5) // dropped, locked
	tr.Unlock()
	tr.TracePulse(pulse.Pulse{Duration: 300, Level: pulse.HI}, 5)

	if tr.Size() != 2 {
		t.Fatalf("Size() = %d, want 2 (the locked-window trace must be dropped)", tr.Size())
	}
}

func TestTracerDumpReportsInterruptLoad(t *testing.T) {
	tr := New(4)
	tr.TracePulse(pulse.Pulse{Duration: 1000, Level: pulse.HI}, 10)
	tr.TracePulse(pulse.Pulse{Duration: 1000, Level: pulse.LO}, 10)

	sink := &diag.SliceSink{}
	tr.Dump(sink)

	if len(sink.Lines) != 3 { // 2 records + summary
		t.Fatalf("Dump wrote %d lines, want 3", len(sink.Lines))
	}
	summary := sink.Lines[len(sink.Lines)-1]
	if !strings.Contains(summary, "Average CPU interrupt load = 1.00%") {
		t.Fatalf("unexpected summary line: %q", summary)
	}
}

func TestTracerDumpEmptyReportsNA(t *testing.T) {
	tr := New(4)
	sink := &diag.SliceSink{}
	tr.Dump(sink)
	if len(sink.Lines) != 1 || !strings.Contains(sink.Lines[0], "n/a") {
		t.Fatalf("unexpected dump of an empty tracer: %v", sink.Lines)
	}
}

func TestTracerDumpSelfBracketsLock(t *testing.T) {
	tr := New(4)
	tr.TracePulse(pulse.Pulse{Duration: 10, Level: pulse.HI}, 1)
	tr.Dump(&diag.SliceSink{})
	// Dump must release the lock itself so tracing resumes afterward.
	tr.TracePulse(pulse.Pulse{Duration: 20, Level: pulse.LO}, 1)
	if tr.Size() != 2 {
		t.Fatalf("Size() after Dump = %d, want 2 (Dump must not leave the tracer locked)", tr.Size())
	}
}
