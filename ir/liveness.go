package ir

import "github.com/willf/bitset"

// LivenessAnalyzer assigns linear/life numbers to every placed node
// (Phase A) and builds one LiveInterval per linear number (Phase B).
// Requires the graph to be placed and a linear region order (produced
// by LinearOrder) to walk.
type LivenessAnalyzer struct {
	g         *Graph
	order     []NodeID
	numLinear int32
	intervals []*LiveInterval
	liveIn    map[NodeID]*bitset.BitSet
}

// NewLivenessAnalyzer constructs the pass over g, walking regions in the
// given linear order.
func NewLivenessAnalyzer(g *Graph, order []NodeID) *LivenessAnalyzer {
	return &LivenessAnalyzer{g: g, order: order}
}

// Run numbers every node and builds its live interval.
func (la *LivenessAnalyzer) Run() {
	la.numberPhaseA()
	la.intervals = make([]*LiveInterval, la.numLinear)
	for i := range la.intervals {
		la.intervals[i] = NewLiveInterval(int32(i))
	}
	la.liveIn = make(map[NodeID]*bitset.BitSet, len(la.order))
	la.buildIntervalsPhaseB()
	la.extendLoopHeaders()
}

// LiveIntervals returns the computed intervals, indexed by linear number.
func (la *LivenessAnalyzer) LiveIntervals() []*LiveInterval { return la.intervals }

// numberPhaseA walks the linear region order assigning each placed node a
// linear number and a life number, and records each region's [start,end)
// block range.
func (la *LivenessAnalyzer) numberPhaseA() {
	g := la.g
	var life, linear int32

	for _, region := range la.order {
		r := g.GetByIndex(region)
		r.blockStart = life

		for cur := r.first; cur != invalidID; {
			n := g.GetByIndex(cur)
			if n.Opcode() == OpJump {
				n.life = life
				break
			}
			n.linear = linear
			linear++
			if n.Opcode() != OpPhi {
				life += 2
			}
			n.life = life
			cur = n.next
		}

		if r.Opcode() != OpEnd {
			life += 2
		}
		r.blockEnd = life
	}

	la.numLinear = linear
}

// buildIntervalsPhaseB processes regions in reverse linear order, seeding
// each region's live-out set from its successors, walking its placed
// nodes backward to trim definitions and extend uses, and recording the
// resulting live-in set for its predecessors.
func (la *LivenessAnalyzer) buildIntervalsPhaseB() {
	for i := len(la.order) - 1; i >= 0; i-- {
		la.processRegion(la.order[i])
	}
}

func (la *LivenessAnalyzer) processRegion(region NodeID) {
	g := la.g
	r := g.GetByIndex(region)

	seed := bitset.New(uint(la.numLinear))
	for _, succ := range g.regionSuccessors(region) {
		if succ == invalidID {
			continue
		}
		if in, ok := la.liveIn[succ]; ok {
			seed.InPlaceUnion(in)
		}
		idx := g.predecessorSlot(succ, region)
		for cur := g.GetByIndex(succ).first; cur != invalidID; {
			n := g.GetByIndex(cur)
			if n.Opcode() != OpPhi {
				break
			}
			if in := g.DataInputs(cur)[idx]; in != invalidID {
				seed.Set(uint(g.GetByIndex(in).linear))
			}
			cur = n.next
		}
	}

	if r.last != invalidID {
		// Values live out of this region stay live to its block end, where
		// each successor's own ranges begin.
		for i, ok := seed.NextSet(0); ok; i, ok = seed.NextSet(i + 1) {
			la.intervals[i].Append(r.blockStart, r.blockEnd)
		}
	}

	for cur := r.last; cur != invalidID; {
		n := g.GetByIndex(cur)
		prev := n.prev
		if n.Opcode() == OpJump {
			cur = prev
			continue
		}

		la.intervals[n.linear].TrimBegin(n.life)
		seed.Clear(uint(n.linear))

		for _, in := range g.DataInputs(cur) {
			if in == invalidID {
				continue
			}
			inNode := g.GetByIndex(in)
			if inNode.Opcode() == OpConstant || inNode.Opcode() == OpParameter {
				continue
			}
			la.intervals[inNode.linear].Append(r.blockStart, n.life)
			seed.Set(uint(inNode.linear))
		}
		cur = prev
	}

	for cur := r.first; cur != invalidID; {
		n := g.GetByIndex(cur)
		if n.Opcode() != OpPhi {
			break
		}
		seed.Clear(uint(n.linear))
		cur = n.next
	}

	la.liveIn[region] = seed
}

// extendLoopHeaders keeps values live at loop entry alive through the
// whole body, so they survive to the back-edge: every linear number live
// at a reducible loop's header is extended to cover the latest body
// region's end life.
func (la *LivenessAnalyzer) extendLoopHeaders() {
	g := la.g
	for _, loop := range g.loops {
		if loop.header == invalidID || loop.irreducible {
			continue
		}
		header := g.GetByIndex(loop.header)

		var maxBodyEnd int32
		for _, region := range loop.body {
			if end := g.GetByIndex(region).blockEnd; end > maxBodyEnd {
				maxBodyEnd = end
			}
		}

		live := la.liveIn[loop.header]
		if live == nil {
			continue
		}
		for i, ok := live.NextSet(0); ok; i, ok = live.NextSet(i + 1) {
			la.intervals[i].Append(header.blockStart, maxBodyEnd+2)
		}
	}
}

// predecessorSlot returns the index of pred among successor's CFG
// predecessors, used to find the matching Phi input.
func (g *Graph) predecessorSlot(successor, pred NodeID) int {
	for i := 0; i < g.NumAllRegionInputs(successor); i++ {
		if g.owningRegion(g.RegionInput(successor, i)) == pred {
			return i
		}
	}
	fatalf("predecessorSlot: region %d is not a predecessor of %d", pred, successor)
	return -1
}
