package ir

// GCM (Global Code Motion) schedules every unplaced data node into a
// control region, producing each region's placed-node doubly-linked list.
// It walks regions in RPO, and within each region follows the
// construction-time control-chain to discover Phi/Call/Return/Checks and
// the terminating Jump/If, recursively placing each node's floating data
// inputs immediately before the node itself.
type GCM struct {
	g           *Graph
	marker      *Marker
	terminators map[NodeID]NodeID
}

// NewGCM constructs the pass over g. RPO over regions must be
// constructible (the control skeleton must already be wired).
func NewGCM(g *Graph) *GCM { return &GCM{g: g} }

// Run places every node and marks the graph as scheduled. A region's
// terminator is recorded but not appended to its placed list until every
// region has been walked: Constants and Parameters discovered while
// scheduling a later region are always routed to Start, and pushing them
// immediately would otherwise land after Start's own terminator, which
// placeRegion visits first.
func (gc *GCM) Run() {
	g := gc.g
	gc.marker = NewMarker(g)
	gc.terminators = make(map[NodeID]NodeID)

	rpo := NewRPORegions(g)
	rpo.Run()

	for _, region := range rpo.Vector() {
		if g.GetByIndex(region).Opcode() == OpEnd {
			continue
		}
		gc.placeRegion(region)
	}
	for _, region := range rpo.Vector() {
		if term, ok := gc.terminators[region]; ok {
			gc.pushBack(region, term)
		}
	}
	g.SetPlaced()
}

// placeRegion walks region's control-chain from its control user, placing
// every node it finds. The terminator (Jump, If, or Return) is recorded
// for deferred placement by Run, so it always ends up as the tail of its
// region's placed list regardless of what other regions schedule later.
func (gc *GCM) placeRegion(region NodeID) {
	g := gc.g
	cur := g.ControlUser(region)
	for {
		n := g.GetByIndex(cur)
		switch n.Opcode() {
		case OpJump:
			gc.terminators[region] = cur
			return
		case OpIf:
			gc.place(region, g.GetDataInput(cur, 0))
			gc.terminators[region] = cur
			return
		case OpReturn:
			gc.placeDataInputs(region, cur)
			gc.terminators[region] = cur
			return
		default:
			gc.placeDataInputs(region, cur)
			gc.pushBack(region, cur)
			cur = g.ControlUser(cur)
		}
	}
}

// Terminator returns region's scheduled exit node (a Jump, If, or
// Return), derived as the tail of its placed list.
func (g *Graph) Terminator(region NodeID) NodeID {
	return g.GetByIndex(region).last
}

// place schedules node (and, recursively, its data inputs) if it has not
// already been placed. Constants and Parameters always go to Start.
func (gc *GCM) place(region, node NodeID) {
	if node == invalidID || gc.marker.IsMarked(node) {
		return
	}
	g := gc.g
	n := g.GetByIndex(node)
	switch n.Opcode() {
	case OpConstant, OpParameter:
		gc.placeDataInputs(g.StartRegion().ID(), node)
		gc.pushBack(g.StartRegion().ID(), node)
	default:
		gc.placeDataInputs(region, node)
		gc.pushBack(region, node)
	}
}

func (gc *GCM) placeDataInputs(region, node NodeID) {
	g := gc.g
	for _, in := range g.DataInputs(node) {
		gc.place(region, in)
	}
}

// pushBack appends node to region's placed list and marks it placed.
func (gc *GCM) pushBack(region, node NodeID) {
	if gc.marker.IsMarked(node) {
		return
	}
	gc.marker.Mark(node)
	gc.g.pushBackInst(region, node)
}

// pushBackInst threads node onto region's placed-list tail.
func (g *Graph) pushBackInst(region, node NodeID) {
	r := g.GetByIndex(region)
	n := g.GetByIndex(node)
	n.placed = true
	n.prev = r.last
	n.next = invalidID
	if r.last == invalidID {
		r.first = node
	} else {
		g.GetByIndex(r.last).next = node
	}
	r.last = node
}

// PlacedNodes returns region's placed nodes in list order.
func (g *Graph) PlacedNodes(region NodeID) []NodeID {
	var out []NodeID
	r := g.GetByIndex(region)
	for cur := r.first; cur != invalidID; cur = g.GetByIndex(cur).next {
		out = append(out, cur)
	}
	return out
}

// RegionOf returns the region a placed node belongs to, or invalidID if
// unplaced. Linear in region count; fine for the small graphs in scope.
func (g *Graph) RegionOf(node NodeID) NodeID {
	n := g.GetByIndex(node)
	if !n.placed {
		return invalidID
	}
	for _, r := range g.AllRegions() {
		for cur := r.first; cur != invalidID; cur = g.GetByIndex(cur).next {
			if cur == node {
				return r.id
			}
		}
	}
	return invalidID
}
