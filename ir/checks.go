package ir

// ChecksElimination removes redundant NullCheck/BoundsCheck nodes: a
// check is redundant when an earlier check on the same value (and, for
// bounds checks, the same upper bound) dominates it. Requires DomTree,
// GCM and LivenessAnalyzer to have already run (the same-region tie-break
// compares life numbers).
type ChecksElimination struct {
	g *Graph
}

// NewChecksElimination constructs the pass over g.
func NewChecksElimination(g *Graph) *ChecksElimination { return &ChecksElimination{g: g} }

// Run walks nodes in RPO, eliminating every check dominated by an
// earlier equivalent one.
func (ce *ChecksElimination) Run() {
	g := ce.g
	rpo := NewRPONodes(g)
	rpo.Run()

	for _, id := range rpo.Vector() {
		n := g.GetByIndex(id)
		if n == nil {
			continue
		}
		switch n.Opcode() {
		case OpNullCheck:
			ce.eliminateNullCheck(id)
		case OpBoundsCheck:
			ce.eliminateBoundsCheck(id)
		}
	}
}

func (ce *ChecksElimination) eliminateNullCheck(id NodeID) {
	g := ce.g
	v := g.GetDataInput(id, 0)
	checked := g.GetByIndex(v)
	if checked == nil {
		return
	}
	for _, u := range append([]NodeID(nil), checked.DataUsers()...) {
		if u == id {
			continue
		}
		other := g.GetByIndex(u)
		if other == nil || other.Opcode() != OpNullCheck {
			continue
		}
		if g.GetDataInput(u, 0) != v {
			continue
		}
		if ce.dominates(id, u) {
			g.ReplaceDataUsers(u, id)
		}
	}
}

func (ce *ChecksElimination) eliminateBoundsCheck(id NodeID) {
	g := ce.g
	v := g.GetDataInput(id, 0)
	ub := g.GetDataInput(id, 1)
	checked := g.GetByIndex(v)
	if checked == nil {
		return
	}
	for _, u := range append([]NodeID(nil), checked.DataUsers()...) {
		if u == id {
			continue
		}
		other := g.GetByIndex(u)
		if other == nil || other.Opcode() != OpBoundsCheck {
			continue
		}
		if g.GetDataInput(u, 0) != v || g.GetDataInput(u, 1) != ub {
			continue
		}
		if ce.dominates(id, u) {
			g.ReplaceDataUsers(u, id)
		}
	}
}

// dominates reports whether a's check strictly precedes (and dominates)
// b's: either a's region dominates b's, or they share a region and a has
// the earlier life number.
func (ce *ChecksElimination) dominates(a, b NodeID) bool {
	g := ce.g
	ra := g.RegionOf(a)
	rb := g.RegionOf(b)
	if ra == rb {
		return g.GetByIndex(a).Life() < g.GetByIndex(b).Life()
	}
	return g.Dominates(ra, rb)
}
