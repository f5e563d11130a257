package decoder

import (
	"github.com/rfswitch/rfswitch/internal/container"
	"github.com/rfswitch/rfswitch/internal/protocol"
	"github.com/rfswitch/rfswitch/internal/pulse"
)

// maxCandidates bounds the candidate set at 7, matching the source's
// MAX_PROTOCOL_CANDIDATES.
const maxCandidates = 7

// candidateSet is the bounded, overflow-counted set of protocol-table
// indices that still match the synch pair (and every data pair seen so
// far) of the message currently being assembled. All indices reference
// the single polarity slice recorded when the set was last (re)built.
type candidateSet struct {
	indices  *container.StackBuffer[int]
	polarity pulse.Level
}

func newCandidateSet() *candidateSet {
	return &candidateSet{indices: container.NewStackBuffer[int](maxCandidates)}
}

func (c *candidateSet) reset() {
	c.indices.Reset()
}

func (c *candidateSet) size() int { return c.indices.Size() }

func (c *candidateSet) push(idx int) bool {
	return c.indices.Push(idx)
}

// remove deletes the candidate at logical slot i (not the table index).
func (c *candidateSet) remove(i int) {
	c.indices.Remove(i)
}

func (c *candidateSet) at(i int) (int, bool) {
	return c.indices.At(i)
}

func (c *candidateSet) overflow() int { return c.indices.Overflow() }

// timingRow returns the protocol.Timing a candidate slot refers to.
func (c *candidateSet) timingRow(table protocol.Table, slot int) (protocol.Timing, bool) {
	idx, ok := c.at(slot)
	if !ok {
		return protocol.Timing{}, false
	}
	slice := table.Slice(c.polarity)
	if idx < 0 || idx >= len(slice) {
		return protocol.Timing{}, false
	}
	return slice[idx], true
}
