package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rfswitch/rfswitch"
	"github.com/rfswitch/rfswitch/internal/protocol"
)

// New registers its collectors against the default Prometheus registry,
// so this package's tests construct exactly one Metrics instance and
// drive every assertion off it, avoiding a duplicate-registration panic.
func TestMetricsPoll(t *testing.T) {
	r := rfswitch.New()
	r.Begin(protocol.Canonical)
	m := New("test-receiver")

	m.Poll(r)
	if got := testutil.ToFloat64(m.messagesDecoded); got != 0 {
		t.Fatalf("messagesDecoded = %v before any message is available, want 0", got)
	}

	tUs := uint32(0)
	edge := func(pinHigh bool, durationUs uint32) {
		tUs += durationUs
		r.OnEdge(pinHigh, tUs)
	}
	edge(false, 350)
	edge(true, 10850)
	for _, bit := range []int{0, 1, 0, 0, 1, 1} {
		if bit == 0 {
			edge(false, 350)
			edge(true, 1050)
		} else {
			edge(false, 1050)
			edge(true, 350)
		}
	}
	edge(false, 350)
	edge(true, 10850)

	if !r.Available() {
		t.Fatal("setup: expected a latched message")
	}
	m.Poll(r)
	if got := testutil.ToFloat64(m.messagesDecoded); got != 1 {
		t.Fatalf("messagesDecoded = %v after one message, want 1", got)
	}
	if got := testutil.ToFloat64(m.bitsDecoded); got != 6 {
		t.Fatalf("bitsDecoded = %v, want 6", got)
	}

	m.RecordAnalyzerAttempt(true)
	m.RecordAnalyzerAttempt(false)
	if got := testutil.ToFloat64(m.analyzerAttempts); got != 2 {
		t.Fatalf("analyzerAttempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.analyzerSuccesses); got != 1 {
		t.Fatalf("analyzerSuccesses = %v, want 1", got)
	}
}
