package ir

// Loop is a natural loop in the control-flow graph: a header region plus
// the set of regions in its body, nested under an outer loop. The
// synthetic root loop (id 0) has no header and depth 0; it owns every
// region not claimed by a natural loop.
type Loop struct {
	id          LoopID
	header      NodeID // invalidID for the root loop
	outer       *Loop
	inner       []*Loop
	backedges   []NodeID
	body        []NodeID
	depth       int
	irreducible bool
}

// ID returns the loop's identifier (0 for the root loop).
func (l *Loop) ID() LoopID { return l.id }

// Header returns the loop's header region, or invalidID for the root loop.
func (l *Loop) Header() NodeID { return l.header }

// Outer returns the parent loop, or nil for the root loop.
func (l *Loop) Outer() *Loop { return l.outer }

// Inner returns the loop's directly nested children.
func (l *Loop) Inner() []*Loop { return l.inner }

// Backedges returns the regions that branch back to the header.
func (l *Loop) Backedges() []NodeID { return l.backedges }

// Body returns every region belonging to this loop (header included,
// nested inner-loop regions excluded).
func (l *Loop) Body() []NodeID { return l.body }

// Depth returns the loop nesting depth; the root loop has depth 0.
func (l *Loop) Depth() int { return l.depth }

// Irreducible reports whether any back-edge source is not dominated by
// the header.
func (l *Loop) Irreducible() bool { return l.irreducible }

// RootLoop returns the graph's synthetic root loop, or nil before
// LoopAnalysis has run.
func (g *Graph) RootLoop() *Loop {
	if len(g.loops) == 0 {
		return nil
	}
	return g.loops[0]
}

// NumLoops returns the number of loops found, including the root.
func (g *Graph) NumLoops() int { return len(g.loops) }

// LoopAnalysis finds natural loops via DFS back-edge detection, then
// populates each loop's body by walking predecessors from its
// back-edges up to its header, nesting inner loops as it goes.
type LoopAnalysis struct {
	g       *Graph
	trace   *Marker // regions on the current DFS path
	visited *Marker // regions fully closed
}

// NewLoopAnalysis constructs the pass over g. DomTree must already have
// run, since header-dominates-backedge determines irreducibility.
func NewLoopAnalysis(g *Graph) *LoopAnalysis {
	return &LoopAnalysis{g: g}
}

// Run finds every natural loop, builds the root loop, fills loop bodies,
// and assigns nesting depths.
func (la *LoopAnalysis) Run() {
	g := la.g
	la.trace = NewMarker(g)
	la.visited = NewMarker(g)

	la.dfs(g.StartRegion().ID(), invalidID)
	la.createRootLoop()
	la.completeLoops()
	la.setDepths(g.RootLoop(), 0)
}

func (la *LoopAnalysis) dfs(region, prev NodeID) {
	g := la.g
	if !la.trace.IsMarked(region) {
		la.trace.Mark(region)
	} else {
		la.processBackEdge(region, prev)
		return
	}

	if la.visited.IsMarked(region) {
		la.trace.Unmark(region)
		return
	}
	la.visited.Mark(region)

	for _, succ := range g.regionSuccessors(region) {
		if succ != invalidID {
			la.dfs(succ, region)
		}
	}
	la.trace.Unmark(region)
}

func (la *LoopAnalysis) processBackEdge(header, backedge NodeID) {
	g := la.g
	h := g.GetByIndex(header)
	loop := h.loop
	if loop == nil {
		loop = la.createLoop(header)
	}
	loop.backedges = append(loop.backedges, backedge)
	if !g.Dominates(header, backedge) {
		loop.irreducible = true
	}
}

func (la *LoopAnalysis) createLoop(header NodeID) *Loop {
	g := la.g
	loop := &Loop{id: LoopID(len(g.loops)), header: header}
	g.loops = append(g.loops, loop)
	g.GetByIndex(header).loop = loop
	loop.body = append(loop.body, header)
	return loop
}

func (la *LoopAnalysis) createRootLoop() {
	g := la.g
	root := &Loop{id: 0, header: invalidID}
	g.loops = append([]*Loop{root}, g.loops...)
	for i := 1; i < len(g.loops); i++ {
		g.loops[i].id = LoopID(i)
	}
}

// completeLoops walks regions in reverse RPO, filling each header's loop
// body (or, for irreducible loops, adding its back-edge sources directly),
// then joins every still-unclaimed region into the root loop.
func (la *LoopAnalysis) completeLoops() {
	g := la.g
	rpo := NewRPORegions(g)
	rpo.Run()
	order := rpo.Vector()

	for i := len(order) - 1; i >= 0; i-- {
		region := order[i]
		n := g.GetByIndex(region)
		if n.loop == nil || n.loop.header != region {
			continue
		}
		loop := n.loop
		if loop.irreducible {
			for _, backedge := range loop.backedges {
				if g.GetByIndex(backedge).loop != loop {
					loop.body = append(loop.body, backedge)
				}
			}
			continue
		}
		la.visited.Reset()
		la.visited.Mark(region)
		for _, backedge := range loop.backedges {
			la.fillLoop(loop, backedge)
		}
	}

	root := g.RootLoop()
	for _, region := range order {
		n := g.GetByIndex(region)
		if n.loop == nil {
			n.loop = root
			root.body = append(root.body, region)
		} else if n.loop.outer == nil && n.loop != root {
			n.loop.outer = root
			root.inner = append(root.inner, n.loop)
		}
	}
}

func (la *LoopAnalysis) fillLoop(loop *Loop, region NodeID) {
	g := la.g
	if la.visited.IsMarked(region) {
		return
	}
	la.visited.Mark(region)

	n := g.GetByIndex(region)
	if n.loop == nil {
		n.loop = loop
		loop.body = append(loop.body, region)
	} else if n.loop.header != loop.header {
		if n.loop.outer == nil {
			n.loop.outer = loop
			loop.inner = append(loop.inner, n.loop)
		}
	}

	for i := 0; i < g.NumAllRegionInputs(region); i++ {
		pred := g.RegionInput(region, i)
		la.fillLoop(loop, g.owningRegion(pred))
	}
}

func (la *LoopAnalysis) setDepths(loop *Loop, depth int) {
	loop.depth = depth
	for _, inner := range loop.inner {
		la.setDepths(inner, depth+1)
	}
}

// owningRegion walks n's control-input chain back to the region it is
// anchored to (Phi/Call/Return/Checks/If/Jump all chain back to a region).
func (g *Graph) owningRegion(n NodeID) NodeID {
	cur := n
	for {
		cn := g.GetByIndex(cur)
		if cn == nil {
			fatalf("owningRegion: no such node %d", n)
		}
		if isRegion(cn.op) {
			return cur
		}
		cur = g.GetControlInput(cur)
	}
}
