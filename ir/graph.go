package ir

// Graph is a named method container: a dense, index-stable arena of nodes
// plus the bookkeeping (placed flag, loop table, unit-test mode) the
// analyses and passes in this package decorate it with. The Graph is the
// sole owner of node identity and edge invariants; nothing outside this
// package mutates a Node's inputs or users directly.
type Graph struct {
	name      string
	nodes     []*Node
	numParams int
	placed    bool
	unitTest  bool
	loops     []*Loop
	cfg       *Config
}

// NewGraph creates an empty method graph with its Start (id 0) and End
// (id 1) regions already in place, matching the invariant that node 0 is
// always Start and node 1 is always End.
func NewGraph(name string, cfg *Config) *Graph {
	g := &Graph{name: name, cfg: cfg}
	start := g.alloc(OpStart, TypeNone)
	start.first, start.last = invalidID, invalidID
	end := g.alloc(OpEnd, TypeNone)
	end.first, end.last = invalidID, invalidID
	return g
}

// SetMethodName renames the graph.
func (g *Graph) SetMethodName(name string) { g.name = name }

// MethodName returns the graph's name, as printed by Dump.
func (g *Graph) MethodName() string { return g.name }

// SetNumParams records how many Parameter nodes this method accepts.
func (g *Graph) SetNumParams(n int) { g.numParams = n }

// NumParams returns the configured parameter count.
func (g *Graph) NumParams() int { return g.numParams }

// SetUnitTestMode toggles explicit-index construction via CreateAtIndex,
// used by tests that build graphs with IDs pinned to match a literal
// expected dump.
func (g *Graph) SetUnitTestMode(on bool) { g.unitTest = on }

// IsPlaced reports whether GCM has scheduled this graph.
func (g *Graph) IsPlaced() bool { return g.placed }

// SetPlaced marks the graph as scheduled; called by GCM.Run on success.
func (g *Graph) SetPlaced() { g.placed = true }

// NumNodes returns the length of the node arena, including deleted slots.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// AllNodes returns every live node, in index order.
func (g *Graph) AllNodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// AllRegions returns every live control region, in index order.
func (g *Graph) AllRegions() []*Node {
	out := make([]*Node, 0, 4)
	for _, n := range g.nodes {
		if n != nil && isRegion(n.op) {
			out = append(out, n)
		}
	}
	return out
}

// StartRegion returns node 0.
func (g *Graph) StartRegion() *Node { return g.nodes[0] }

// EndRegion returns node 1.
func (g *Graph) EndRegion() *Node { return g.nodes[1] }

// GetByIndex returns the node at i, or nil if out of range or deleted.
func (g *Graph) GetByIndex(i NodeID) *Node {
	if i < 0 || int(i) >= len(g.nodes) {
		return nil
	}
	return g.nodes[i]
}

// alloc appends a fresh node with a new id equal to the current node count.
func (g *Graph) alloc(op Opcode, typ Type) *Node {
	n := &Node{id: NodeID(len(g.nodes)), op: op, typ: typ, dom: invalidID, first: invalidID, last: invalidID, prev: invalidID, next: invalidID}
	g.nodes = append(g.nodes, n)
	return n
}

// CreateAtIndex creates a node of the given kind at an explicit index,
// for unit-test graphs whose expected dump pins specific ids. Fatal if
// called outside unit-test mode or if the index is already occupied.
func (g *Graph) CreateAtIndex(idx NodeID, op Opcode, typ Type) *Node {
	if !g.unitTest {
		fatalf("CreateAtIndex requires unit-test mode")
	}
	if int(idx) < len(g.nodes) && g.nodes[idx] != nil {
		fatalf("node already exists at index %d", idx)
	}
	for int(idx) >= len(g.nodes) {
		g.nodes = append(g.nodes, nil)
	}
	n := &Node{id: idx, op: op, typ: typ, dom: invalidID, first: invalidID, last: invalidID, prev: invalidID, next: invalidID}
	g.nodes[idx] = n
	return n
}

// CreateByOpcode dispatches to the right zero-initialized constructor for
// cloning, matching the "decode an unknown opcode" fatal error in spec.
func (g *Graph) CreateByOpcode(op Opcode, typ Type) *Node {
	switch op {
	case OpStart, OpRegion, OpEnd:
		n := g.alloc(op, typ)
		n.first, n.last = invalidID, invalidID
		return n
	case OpIf:
		n := g.alloc(op, typ)
		n.users = []NodeID{invalidID, invalidID}
		return n
	default:
		if op <= OpInvalid || op >= opcodeCount {
			fatalf("CreateByOpcode: unknown opcode %d", int(op))
		}
		return g.alloc(op, typ)
	}
}

// CreateRegion creates an interior control region.
func (g *Graph) CreateRegion() *Node { return g.CreateByOpcode(OpRegion, TypeNone) }

// CreateIf creates a brancher with a fixed true/false user pair.
func (g *Graph) CreateIf(cond NodeID) *Node {
	n := g.CreateByOpcode(OpIf, TypeNone)
	n.inputs = []NodeID{invalidID, invalidID}
	g.SetDataInput(n.id, 0, cond)
	return n
}

// CreateJump creates an unconditional control transfer.
func (g *Graph) CreateJump() *Node {
	n := g.CreateByOpcode(OpJump, TypeNone)
	n.inputs = []NodeID{invalidID}
	return n
}

// CreateConstant creates a 64-bit immediate, default type i64.
func (g *Graph) CreateConstant(imm int64) *Node {
	n := g.CreateByOpcode(OpConstant, TypeI64)
	n.imm = imm
	return n
}

// CreateParameter creates a 0-based parameter reference.
func (g *Graph) CreateParameter(idx uint32, typ Type) *Node {
	n := g.CreateByOpcode(OpParameter, typ)
	n.paramIdx = idx
	return n
}

func (g *Graph) createBinary(op Opcode, typ Type, a, b NodeID) *Node {
	n := g.CreateByOpcode(op, typ)
	n.inputs = []NodeID{invalidID, invalidID}
	g.SetDataInput(n.id, 0, a)
	g.SetDataInput(n.id, 1, b)
	return n
}

func (g *Graph) CreateAdd(a, b NodeID, typ Type) *Node { return g.createBinary(OpAdd, typ, a, b) }
func (g *Graph) CreateSub(a, b NodeID, typ Type) *Node { return g.createBinary(OpSub, typ, a, b) }
func (g *Graph) CreateMul(a, b NodeID, typ Type) *Node { return g.createBinary(OpMul, typ, a, b) }
func (g *Graph) CreateDiv(a, b NodeID, typ Type) *Node { return g.createBinary(OpDiv, typ, a, b) }
func (g *Graph) CreateShl(a, b NodeID, typ Type) *Node { return g.createBinary(OpShl, typ, a, b) }
func (g *Graph) CreateShr(a, b NodeID, typ Type) *Node { return g.createBinary(OpShr, typ, a, b) }
func (g *Graph) CreateAnd(a, b NodeID, typ Type) *Node { return g.createBinary(OpAnd, typ, a, b) }
func (g *Graph) CreateOr(a, b NodeID, typ Type) *Node  { return g.createBinary(OpOr, typ, a, b) }

// CreateCompare creates a fixed 2-arity comparison with a Bool result.
func (g *Graph) CreateCompare(cc ConditionCode, a, b NodeID) *Node {
	n := g.createBinary(OpCompare, TypeBool, a, b)
	n.cc = cc
	return n
}

// CreatePhi creates a dynamic-arity value merge anchored to region, with
// no predecessor values attached yet; callers add them with AppendDataInput.
func (g *Graph) CreatePhi(region NodeID, typ Type) *Node {
	n := g.CreateByOpcode(OpPhi, typ)
	n.inputs = []NodeID{invalidID}
	g.SetControlInput(n.id, region)
	return n
}

// CreateCall creates a dynamic-arity call to name with the given arguments.
func (g *Graph) CreateCall(name string, typ Type, args []NodeID) *Node {
	n := g.CreateByOpcode(OpCall, typ)
	n.callName = name
	n.inputs = []NodeID{invalidID}
	for i, a := range args {
		n.inputs = append(n.inputs, invalidID)
		g.SetDataInput(n.id, i, a)
	}
	return n
}

// CreateReturn creates a control-bearing return of value.
func (g *Graph) CreateReturn(value NodeID) *Node {
	n := g.CreateByOpcode(OpReturn, TypeNone)
	n.inputs = []NodeID{invalidID, invalidID}
	g.SetDataInput(n.id, 0, value)
	return n
}

// CreateNullCheck creates a pass-through null check of v.
func (g *Graph) CreateNullCheck(v NodeID, typ Type) *Node {
	n := g.CreateByOpcode(OpNullCheck, typ)
	n.inputs = []NodeID{invalidID, invalidID}
	g.SetDataInput(n.id, 0, v)
	return n
}

// CreateBoundsCheck creates a pass-through bounds check of v against ub.
func (g *Graph) CreateBoundsCheck(v, ub NodeID, typ Type) *Node {
	n := g.CreateByOpcode(OpBoundsCheck, typ)
	n.inputs = []NodeID{invalidID, invalidID, invalidID}
	g.SetDataInput(n.id, 0, v)
	g.SetDataInput(n.id, 1, ub)
	return n
}

// discard nils id's arena slot without touching any edge, used when the
// caller has already severed every edge by hand (inlining's precise
// control-chain splicing needs this instead of Delete's generic,
// splice-unsafe edge walk for reserved control-user slots).
func (g *Graph) discard(id NodeID) { g.nodes[id] = nil }

// Delete removes n's edges in both directions, nulls its arena slot, and
// leaves its id permanently unused; future GetByIndex(id) calls return nil.
func (g *Graph) Delete(id NodeID) {
	n := g.GetByIndex(id)
	if n == nil {
		fatalf("delete of unknown node %d", id)
	}
	for _, u := range append([]NodeID(nil), n.inputs...) {
		if u != invalidID {
			g.DeleteRawUser(u, id)
		}
	}
	for _, u := range append([]NodeID(nil), n.users...) {
		if u != invalidID {
			g.DeleteInput(u, id)
		}
	}
	g.nodes[id] = nil
}
