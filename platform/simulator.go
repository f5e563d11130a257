package platform

import (
	"context"
	"io"
)

// SimulatedEdge is one entry of a recorded or synthetic edge sequence:
// the level the pin reads at the edge, and how long since the prior edge.
type SimulatedEdge struct {
	High         bool
	DurationUs   uint32
}

// Simulator replays a fixed sequence of edges, for tests and for the
// cmd/rfswitchd demo binary's --simulate mode. It implements EdgeSource.
type Simulator struct {
	edges []SimulatedEdge
	i     int
	tUs   uint32
}

// NewSimulator builds a Simulator over edges, starting its internal
// monotonic clock at 0.
func NewSimulator(edges []SimulatedEdge) *Simulator {
	return &Simulator{edges: edges}
}

// WaitForEdge returns the next edge in sequence, or io.EOF once
// exhausted. It never blocks on ctx since the sequence is predetermined,
// but still honors cancellation.
func (s *Simulator) WaitForEdge(ctx context.Context) (bool, uint32, error) {
	if err := ctx.Err(); err != nil {
		return false, 0, err
	}
	if s.i >= len(s.edges) {
		return false, 0, io.EOF
	}
	e := s.edges[s.i]
	s.i++
	s.tUs += e.DurationUs
	return e.High, s.tUs, nil
}
