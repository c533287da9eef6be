package ir

// DomTree computes immediate dominance over control regions using the
// "remove one node at a time" algorithm: the full DFS-reachability set
// from Start is diffed against the reachability set obtained with each
// candidate region pre-marked as visited. Every region that drops out of
// the second set is dominated by the candidate.
type DomTree struct {
	g *Graph
}

// NewDomTree constructs the pass over g.
func NewDomTree(g *Graph) *DomTree { return &DomTree{g: g} }

// dfsRegions mirrors RPORegions' traversal but collects into an arbitrary
// slice without reversing, used both for the full reachability set and
// for each region-removed probe.
func (g *Graph) dfsRegions(start NodeID, marker *Marker, found *[]NodeID) {
	if marker.IsMarked(start) {
		return
	}
	marker.Mark(start)
	*found = append(*found, start)
	for _, succ := range g.regionSuccessors(start) {
		if succ != invalidID {
			g.dfsRegions(succ, marker, found)
		}
	}
}

// Run populates every region's Dominator and Dominated fields.
func (d *DomTree) Run() {
	g := d.g
	startID := g.StartRegion().ID()

	var full []NodeID
	fullMarker := NewMarker(g)
	g.dfsRegions(startID, fullMarker, &full)
	fullSet := toSet(full)

	rpo := NewRPORegions(g)
	rpo.Run()

	for _, investigated := range rpo.Vector() {
		marker := NewMarker(g)
		marker.Mark(investigated)

		var part []NodeID
		g.dfsRegions(startID, marker, &part)
		partSet := toSet(part)

		var dominated []NodeID
		for _, r := range rpo.Vector() {
			if r == investigated {
				continue
			}
			if fullSet[r] && !partSet[r] {
				dominated = append(dominated, r)
				g.GetByIndex(r).dom = investigated
			}
		}
		g.GetByIndex(investigated).dominated = dominated
	}
}

func toSet(ids []NodeID) map[NodeID]bool {
	m := make(map[NodeID]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// Dominates reports whether a dominates b (reflexively: a region
// dominates itself).
func (g *Graph) Dominates(a, b NodeID) bool {
	if a == b {
		return true
	}
	for _, d := range g.GetByIndex(a).dominated {
		if d == b {
			return true
		}
	}
	return false
}
