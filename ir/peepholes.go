package ir

// Peepholes walks the graph in node-RPO folding constant expressions and
// applying a short list of algebraic identities. A node rewritten by one
// rule is never reconsidered by a later rule in the same visit;
// redirected nodes become dead and are left for a later deletion pass.
type Peepholes struct {
	g *Graph
}

// NewPeepholes constructs the pass over g.
func NewPeepholes(g *Graph) *Peepholes { return &Peepholes{g: g} }

// Run applies constant folding and algebraic simplification to every
// Sub, Shl and Or node reachable in node-RPO.
func (p *Peepholes) Run() {
	rpo := NewRPONodes(p.g)
	rpo.Run()

	for _, id := range rpo.Vector() {
		n := p.g.GetByIndex(id)
		if n == nil {
			continue
		}
		switch n.Opcode() {
		case OpSub, OpShl, OpOr:
			p.visitBinary(id)
		}
	}
}

func (p *Peepholes) visitBinary(id NodeID) {
	g := p.g
	n := g.GetByIndex(id)
	if n == nil {
		return
	}
	if p.foldConstant(id) {
		return
	}

	switch n.Opcode() {
	case OpSub:
		p.simplifySub(id)
	case OpOr:
		p.simplifyOr(id)
	case OpShl:
		p.simplifyShl(id)
	}
}

// foldConstant replaces id with a single Constant when both its data
// inputs are already Constants, redirecting all of id's data users.
func (p *Peepholes) foldConstant(id NodeID) bool {
	g := p.g
	n := g.GetByIndex(id)
	a := g.GetByIndex(g.GetDataInput(id, 0))
	b := g.GetByIndex(g.GetDataInput(id, 1))
	if a == nil || b == nil || a.Opcode() != OpConstant || b.Opcode() != OpConstant {
		return false
	}

	var folded int64
	switch n.Opcode() {
	case OpSub:
		folded = a.Imm() - b.Imm()
	case OpShl:
		width := typeWidth(n.Type())
		folded = a.Imm() << (uint64(b.Imm()) % width)
	case OpOr:
		folded = a.Imm() | b.Imm()
	default:
		return false
	}

	c := g.CreateConstant(folded)
	c.typ = n.Type()
	g.ReplaceDataUsers(id, c.ID())
	return true
}

// typeWidth returns the bit width used to reduce shift counts.
func typeWidth(t Type) uint64 {
	switch t {
	case TypeI32, TypeU32:
		return 32
	default:
		return 64
	}
}

// simplifySub rewrites Sub(x, 0) -> x and Sub(Sub(x, c1), c2) -> Sub(x,
// c1+c2) when the inner Sub has a single data user.
func (p *Peepholes) simplifySub(id NodeID) {
	g := p.g
	x := g.GetDataInput(id, 0)
	b := g.GetByIndex(g.GetDataInput(id, 1))

	if b != nil && b.Opcode() == OpConstant && b.Imm() == 0 {
		g.ReplaceDataUsers(id, x)
		return
	}

	inner := g.GetByIndex(x)
	if inner != nil && inner.Opcode() == OpSub && inner.NumDataUsers() == 1 {
		c1 := g.GetByIndex(g.GetDataInput(inner.ID(), 1))
		if b != nil && b.Opcode() == OpConstant && c1 != nil && c1.Opcode() == OpConstant {
			sum := g.CreateConstant(c1.Imm() + b.Imm())
			sum.typ = c1.Type()
			newSub := g.CreateSub(g.GetDataInput(inner.ID(), 0), sum.ID(), inner.Type())
			g.ReplaceDataUsers(id, newSub.ID())
		}
	}
}

// simplifyOr rewrites Or(x, 0) -> x, checking either operand.
func (p *Peepholes) simplifyOr(id NodeID) {
	g := p.g
	a := g.GetByIndex(g.GetDataInput(id, 0))
	b := g.GetByIndex(g.GetDataInput(id, 1))
	if b != nil && b.Opcode() == OpConstant && b.Imm() == 0 {
		g.ReplaceDataUsers(id, g.GetDataInput(id, 0))
		return
	}
	if a != nil && a.Opcode() == OpConstant && a.Imm() == 0 {
		g.ReplaceDataUsers(id, g.GetDataInput(id, 1))
	}
}

// simplifyShl rewrites Shl(Shr(x, k), k) -> And(x, ~((1<<k)-1)) when
// both shift counts are the same constant.
func (p *Peepholes) simplifyShl(id NodeID) {
	g := p.g
	n := g.GetByIndex(id)
	inner := g.GetByIndex(g.GetDataInput(id, 0))
	k := g.GetByIndex(g.GetDataInput(id, 1))
	if inner == nil || inner.Opcode() != OpShr || k == nil || k.Opcode() != OpConstant {
		return
	}
	innerK := g.GetByIndex(g.GetDataInput(inner.ID(), 1))
	if innerK == nil || innerK.Opcode() != OpConstant || innerK.Imm() != k.Imm() {
		return
	}
	mask := g.CreateConstant(^((int64(1) << uint(k.Imm())) - 1))
	mask.typ = n.Type()
	and := g.CreateAnd(g.GetDataInput(inner.ID(), 0), mask.ID(), n.Type())
	g.ReplaceDataUsers(id, and.ID())
}
