package ir

import "strings"

// CalleeKey identifies a callable graph by its name and arity, the
// lookup key Inlining uses to resolve a Call site.
type CalleeKey struct {
	Name  string
	Arity int
}

// Inlining substitutes eligible Call nodes with a clone of their
// callee's graph. A registry maps (name, arity) to the callee Graph;
// a Call is eligible when its callee is registered, the running total
// of inlined nodes stays within budget, and the callee's name carries
// no "__noinline__" marker.
type Inlining struct {
	g              *Graph
	callees        map[CalleeKey]*Graph
	alreadyInlined int
}

// NewInlining constructs the pass over g with the given callee registry.
func NewInlining(g *Graph, callees map[CalleeKey]*Graph) *Inlining {
	return &Inlining{g: g, callees: callees}
}

// Run visits every Call node in RPO, inlining each eligible one.
func (in *Inlining) Run() {
	g := in.g
	rpo := NewRPONodes(g)
	rpo.Run()

	for _, id := range rpo.Vector() {
		n := g.GetByIndex(id)
		if n == nil || n.Opcode() != OpCall {
			continue
		}
		in.tryInline(id)
	}
}

func (in *Inlining) tryInline(call NodeID) {
	g := in.g
	n := g.GetByIndex(call)
	logger := g.cfg.logger()

	if strings.Contains(n.CallName(), "__noinline__") {
		skipInline(logger, n, errNoInlineMarker)
		return
	}
	callee, ok := in.callees[CalleeKey{Name: n.CallName(), Arity: n.NumDataInputs()}]
	if !ok {
		skipInline(logger, n, errCalleeNotFound)
		return
	}
	if in.alreadyInlined+callee.NumNodes() > g.cfg.inlineBudget() {
		skipInline(logger, n, errBudgetExceeded)
		return
	}

	in.inline(call, callee)
	in.alreadyInlined += callee.NumNodes()
}

// inline performs the four-step substitution: clone, parameter
// substitution, return substitution, and CFG splice.
func (in *Inlining) inline(call NodeID, callee *Graph) {
	g := in.g
	idMap := in.cloneCallee(callee)

	clonedStart := idMap[callee.StartRegion().ID()]
	clonedEnd := idMap[callee.EndRegion().ID()]

	in.substituteParameters(call, callee, idMap)

	var joinPred NodeID
	numRets := g.NumAllRegionInputs(clonedEnd)
	rets := make([]NodeID, numRets)
	for i := range rets {
		rets[i] = g.RegionInput(clonedEnd, i)
	}

	callType := g.GetByIndex(call).Type()
	if numRets == 1 {
		val, pred := in.unlinkReturn(rets[0], clonedEnd)
		g.ReplaceDataUsers(call, val)
		g.ReplaceControlUser(call, pred)
		joinPred = pred
	} else {
		newRegion := g.CreateRegion()
		phi := g.CreatePhi(newRegion.ID(), callType)
		for _, ret := range rets {
			val, pred := in.unlinkReturn(ret, clonedEnd)
			g.setControlUser(pred, newRegion.ID())
			g.addRegionInput(newRegion.ID(), pred)
			g.AppendDataInput(phi.ID(), val)
		}
		g.ReplaceDataUsers(call, phi.ID())
		g.ReplaceControlUser(call, newRegion.ID())
		joinPred = newRegion.ID()
	}
	_ = joinPred

	// Read the entry only now: for a one-block callee the cloned Start's
	// successor was its Return, which return substitution has replaced.
	entry := g.ControlUser(clonedStart)
	callerPred := g.GetControlInput(call)
	g.setControlUser(clonedStart, invalidID)
	g.SetControlInput(entry, callerPred)

	g.Delete(call)
	g.Delete(clonedStart)
	g.Delete(clonedEnd)
}

// substituteParameters rewires each cloned Parameter's data users to the
// matching argument of call, then discards the parameter node.
func (in *Inlining) substituteParameters(call NodeID, callee *Graph, idMap map[NodeID]NodeID) {
	g := in.g
	args := g.DataInputs(call)
	for _, old := range callee.AllNodes() {
		if old.Opcode() != OpParameter {
			continue
		}
		idx := int(old.ParamIndex())
		if idx >= len(args) {
			continue
		}
		paramNew := idMap[old.ID()]
		g.ReplaceDataUsers(paramNew, args[idx])
		g.Delete(paramNew)
	}
}

// unlinkReturn detaches ret from the graph by hand: its predecessor's
// reserved successor slot is cleared (not spliced, which would corrupt a
// reserved control-chain slot), its value input's data-user entry is
// removed, and it is dropped from end's region-input list.
func (in *Inlining) unlinkReturn(ret, end NodeID) (val, pred NodeID) {
	g := in.g
	val = g.GetDataInput(ret, 0)
	pred = g.GetControlInput(ret)
	g.setControlUser(pred, invalidID)
	g.DeleteDataUser(val, ret)
	g.DeleteInput(end, ret)
	g.discard(ret)
	return val, pred
}

// cloneCallee copies every node of callee into g, walking
// callee's nodes in RPO (an input-first topological order) so that every
// reference a node makes is already cloned by the time the node itself
// is created — except control-flow successors (Jump targets, If
// branches, and a Return's implicit End target), which point forward and
// are back-patched once every node exists.
func (in *Inlining) cloneCallee(callee *Graph) map[NodeID]NodeID {
	g := in.g
	idMap := make(map[NodeID]NodeID, callee.NumNodes())
	translate := func(old NodeID) NodeID {
		if old == invalidID {
			return invalidID
		}
		return idMap[old]
	}

	var pendingJumps, pendingIfs, pendingReturns []NodeID

	rpo := NewRPONodes(callee)
	rpo.Run()

	for _, oldID := range rpo.Vector() {
		old := callee.GetByIndex(oldID)
		var nn *Node

		switch old.Opcode() {
		case OpStart, OpEnd:
			nn = g.CreateByOpcode(old.Opcode(), TypeNone)
		case OpRegion:
			nn = g.CreateRegion()
		case OpIf:
			nn = g.CreateIf(translate(callee.GetDataInput(oldID, 0)))
			g.SetControlInput(nn.ID(), translate(callee.GetControlInput(oldID)))
			pendingIfs = append(pendingIfs, oldID)
		case OpJump:
			nn = g.CreateJump()
			g.SetControlInput(nn.ID(), translate(callee.GetControlInput(oldID)))
			pendingJumps = append(pendingJumps, oldID)
		case OpConstant:
			nn = g.CreateConstant(old.Imm())
			nn.typ = old.Type()
		case OpParameter:
			nn = g.CreateParameter(old.ParamIndex(), old.Type())
		case OpAdd, OpSub, OpMul, OpDiv, OpShl, OpShr, OpAnd, OpOr:
			nn = g.createBinary(old.Opcode(), old.Type(),
				translate(callee.GetDataInput(oldID, 0)), translate(callee.GetDataInput(oldID, 1)))
		case OpCompare:
			nn = g.CreateCompare(old.CC(),
				translate(callee.GetDataInput(oldID, 0)), translate(callee.GetDataInput(oldID, 1)))
		case OpPhi:
			nn = g.CreatePhi(translate(callee.GetControlInput(oldID)), old.Type())
			for _, in := range callee.DataInputs(oldID) {
				g.AppendDataInput(nn.ID(), translate(in))
			}
		case OpCall:
			args := make([]NodeID, 0, old.NumDataInputs())
			for _, in := range callee.DataInputs(oldID) {
				args = append(args, translate(in))
			}
			nn = g.CreateCall(old.CallName(), old.Type(), args)
			g.SetControlInput(nn.ID(), translate(callee.GetControlInput(oldID)))
		case OpReturn:
			nn = g.CreateReturn(translate(callee.GetDataInput(oldID, 0)))
			g.SetControlInput(nn.ID(), translate(callee.GetControlInput(oldID)))
			pendingReturns = append(pendingReturns, oldID)
		case OpNullCheck:
			nn = g.CreateNullCheck(translate(callee.GetDataInput(oldID, 0)), old.Type())
			g.SetControlInput(nn.ID(), translate(callee.GetControlInput(oldID)))
		case OpBoundsCheck:
			nn = g.CreateBoundsCheck(translate(callee.GetDataInput(oldID, 0)),
				translate(callee.GetDataInput(oldID, 1)), old.Type())
			g.SetControlInput(nn.ID(), translate(callee.GetControlInput(oldID)))
		default:
			fatalf("lite_clone: unknown opcode %v", old.Opcode())
		}

		idMap[oldID] = nn.ID()
	}

	for _, oldJump := range pendingJumps {
		g.SetJumpTarget(idMap[oldJump], idMap[callee.JumpTarget(oldJump)])
	}
	for _, oldIf := range pendingIfs {
		g.SetTrueBranch(idMap[oldIf], idMap[callee.TrueBranch(oldIf)])
		g.SetFalseBranch(idMap[oldIf], idMap[callee.FalseBranch(oldIf)])
	}
	for _, oldRet := range pendingReturns {
		newRet := idMap[oldRet]
		newEnd := idMap[callee.EndRegion().ID()]
		g.setControlUser(newRet, newEnd)
		g.addRegionInput(newEnd, newRet)
	}

	return idMap
}
