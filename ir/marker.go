package ir

import "github.com/willf/bitset"

// Marker is a cheap per-node boolean scoped to a single traversal. It is
// sized to the graph's node count at creation time; growing the graph
// afterwards and marking a new id grows the backing bitset transparently.
type Marker struct {
	bits *bitset.BitSet
}

// NewMarker allocates a Marker sized for g's current node count.
func NewMarker(g *Graph) *Marker {
	return &Marker{bits: bitset.New(uint(g.NumNodes()))}
}

// Mark sets id's bit.
func (m *Marker) Mark(id NodeID) { m.bits.Set(uint(id)) }

// Unmark clears id's bit.
func (m *Marker) Unmark(id NodeID) { m.bits.Clear(uint(id)) }

// IsMarked reports id's bit.
func (m *Marker) IsMarked(id NodeID) bool { return m.bits.Test(uint(id)) }

// Reset clears every bit, letting the Marker be reused for another pass
// over the same graph without reallocating.
func (m *Marker) Reset() { m.bits.ClearAll() }
