package protocol

import (
	"testing"

	"github.com/rfswitch/rfswitch/internal/diag"
	"github.com/rfswitch/rfswitch/internal/pulse"
)

func TestNewTablePartitionsByPolarity(t *testing.T) {
	tbl := NewTable([]Timing{
		BuildTiming(1, 350, 20, 1, 31, 1, 3, 3, 1, false),
		BuildTiming(6, 450, 20, 1, 23, 1, 2, 2, 1, true),
		BuildTiming(2, 650, 20, 1, 10, 1, 3, 3, 1, false),
	})
	if len(tbl.Normal) != 2 {
		t.Fatalf("len(Normal) = %d, want 2", len(tbl.Normal))
	}
	if len(tbl.Inverse) != 1 {
		t.Fatalf("len(Inverse) = %d, want 1", len(tbl.Inverse))
	}
}

func TestNewTableSortsAscendingBySynchALo(t *testing.T) {
	tbl := NewTable([]Timing{
		BuildTiming(3, 100, 20, 30, 71, 4, 11, 9, 6, false), // synchA lo = 30*100*0.8=2400
		BuildTiming(1, 350, 20, 1, 31, 1, 3, 3, 1, false),   // synchA lo = 280
		BuildTiming(5, 500, 20, 6, 14, 1, 2, 2, 1, false),   // synchA lo = 2400
	})
	for i := 1; i < len(tbl.Normal); i++ {
		if tbl.Normal[i-1].Synch.A.Lo > tbl.Normal[i].Synch.A.Lo {
			t.Fatalf("Normal slice not ascending at %d: %d > %d", i, tbl.Normal[i-1].Synch.A.Lo, tbl.Normal[i].Synch.A.Lo)
		}
	}
	if tbl.Normal[0].ID != 1 {
		t.Fatalf("Normal[0].ID = %d, want 1 (smallest synch-A lower bound)", tbl.Normal[0].ID)
	}
}

func TestTableSlicePicksByLevel(t *testing.T) {
	tbl := NewTable([]Timing{
		BuildTiming(1, 350, 20, 1, 31, 1, 3, 3, 1, false),
		BuildTiming(6, 450, 20, 1, 23, 1, 2, 2, 1, true),
	})
	if len(tbl.Slice(pulse.HI)) != 1 || tbl.Slice(pulse.HI)[0].ID != 1 {
		t.Fatal("Slice(HI) should return the normal-polarity row")
	}
	if len(tbl.Slice(pulse.LO)) != 1 || tbl.Slice(pulse.LO)[0].ID != 6 {
		t.Fatal("Slice(LO) should return the inverse-polarity row")
	}
}

func TestTableDump(t *testing.T) {
	sink := &diag.SliceSink{}
	Canonical.Dump(sink)
	if len(sink.Lines) != len(Canonical.Normal)+len(Canonical.Inverse)+1 {
		t.Fatalf("Dump wrote %d lines, want header + %d rows", len(sink.Lines), len(Canonical.Normal)+len(Canonical.Inverse))
	}
	if sink.Lines[0][0] != ' ' {
		t.Fatalf("first dump line should be the header, got %q", sink.Lines[0])
	}
}

func TestCanonicalTableHasAllElevenRows(t *testing.T) {
	if got := len(Canonical.Normal) + len(Canonical.Inverse); got != 11 {
		t.Fatalf("Canonical has %d rows, want 11", got)
	}
}
