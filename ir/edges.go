package ir

// This file is the Graph façade for edge mutation: every place a node's
// inputs or users slice changes goes through one of these methods, which
// keep the "edges are bidirectional" invariant (§3) in both directions.

// SetControlInput wires id's control predecessor, recording the
// reciprocal control-user edge on ctrl. Fatal if id's opcode has no
// control slot.
func (g *Graph) SetControlInput(id, ctrl NodeID) {
	n := g.GetByIndex(id)
	if n == nil || !hasControlInput(n.op) {
		fatalf("SetControlInput: node %d has no control slot", id)
	}
	if len(n.inputs) == 0 {
		n.inputs = []NodeID{invalidID}
	}
	n.inputs[0] = ctrl
	g.setControlUser(ctrl, id)
}

// GetControlInput returns id's control predecessor.
func (g *Graph) GetControlInput(id NodeID) NodeID {
	n := g.GetByIndex(id)
	if n == nil || !hasControlInput(n.op) {
		fatalf("GetControlInput: node %d has no control slot", id)
	}
	return n.inputs[0]
}

// setControlUser records user as the reserved slot-0 control successor of
// target (the next body-chain node, or the branch target for Jump).
func (g *Graph) setControlUser(target, user NodeID) {
	n := g.GetByIndex(target)
	if n == nil || !reservesControlUser(n.op) {
		fatalf("setControlUser: node %d reserves no control-user slot", target)
	}
	if len(n.users) == 0 {
		n.users = append(n.users, user)
		return
	}
	n.users[0] = user
}

// ControlUser returns target's reserved control successor (invalidID if
// none has been set yet).
func (g *Graph) ControlUser(target NodeID) NodeID {
	n := g.GetByIndex(target)
	if n == nil || !reservesControlUser(n.op) {
		fatalf("ControlUser: node %d reserves no control-user slot", target)
	}
	if len(n.users) == 0 {
		return invalidID
	}
	return n.users[0]
}

// SetTrueBranch wires an If's true successor region.
func (g *Graph) SetTrueBranch(ifID, region NodeID) {
	n := g.mustOp(ifID, OpIf, "SetTrueBranch")
	n.users[0] = region
	g.addRegionInput(region, ifID)
}

// SetFalseBranch wires an If's false successor region.
func (g *Graph) SetFalseBranch(ifID, region NodeID) {
	n := g.mustOp(ifID, OpIf, "SetFalseBranch")
	n.users[1] = region
	g.addRegionInput(region, ifID)
}

// TrueBranch returns an If's true successor region.
func (g *Graph) TrueBranch(ifID NodeID) NodeID { return g.mustOp(ifID, OpIf, "TrueBranch").users[0] }

// FalseBranch returns an If's false successor region.
func (g *Graph) FalseBranch(ifID NodeID) NodeID { return g.mustOp(ifID, OpIf, "FalseBranch").users[1] }

// SetJumpTarget wires a Jump's single successor region.
func (g *Graph) SetJumpTarget(jumpID, region NodeID) {
	g.setControlUser(jumpID, region)
	g.addRegionInput(region, jumpID)
}

// JumpTarget returns a Jump's successor region.
func (g *Graph) JumpTarget(jumpID NodeID) NodeID { return g.ControlUser(jumpID) }

// SetReturnTarget wires a Return's implicit successor: the graph's End
// region, which also gains ret as one more CFG predecessor.
func (g *Graph) SetReturnTarget(ret NodeID) {
	end := g.EndRegion().ID()
	g.setControlUser(ret, end)
	g.addRegionInput(end, ret)
}

// addRegionInput records pred as one more CFG predecessor of region.
func (g *Graph) addRegionInput(region, pred NodeID) {
	n := g.mustOp(region, OpRegion, "addRegionInput")
	n.inputs = append(n.inputs, pred)
}

// mustOp fetches id and fatals unless its opcode is op (or, for regions,
// any region kind), returning the node for chained field access.
func (g *Graph) mustOp(id NodeID, op Opcode, who string) *Node {
	n := g.GetByIndex(id)
	if n == nil {
		fatalf("%s: no such node %d", who, id)
	}
	if op == OpRegion {
		if !isRegion(n.op) {
			fatalf("%s: node %d is not a region", who, id)
		}
		return n
	}
	if n.op != op {
		fatalf("%s: node %d is not %s", who, id, op)
	}
	return n
}

// NumAllRegionInputs returns a region's predecessor count (its raw input
// slice; regions have no control-slot offset).
func (g *Graph) NumAllRegionInputs(region NodeID) int {
	return len(g.mustOp(region, OpRegion, "NumAllRegionInputs").inputs)
}

// RegionInput returns the i-th CFG predecessor of region.
func (g *Graph) RegionInput(region NodeID, i int) NodeID {
	return g.mustOp(region, OpRegion, "RegionInput").inputs[i]
}

// SetDataInput writes data slot i of id (offset by the control slot when
// present), detaching any previous occupant and recording the reciprocal
// data-user edge on target.
func (g *Graph) SetDataInput(id NodeID, i int, target NodeID) {
	n := g.GetByIndex(id)
	if n == nil {
		fatalf("SetDataInput: no such node %d", id)
	}
	idx := i
	if hasControlInput(n.op) {
		idx++
	}
	if idx < 0 || idx >= len(n.inputs) {
		fatalf("SetDataInput: index %d out of range for node %d", i, id)
	}
	if old := n.inputs[idx]; old != invalidID && old != target {
		g.DeleteDataUser(old, id)
	}
	n.inputs[idx] = target
	if target != invalidID {
		g.AddDataUser(target, id)
	}
}

// GetDataInput reads data slot i of id.
func (g *Graph) GetDataInput(id NodeID, i int) NodeID {
	n := g.GetByIndex(id)
	if n == nil {
		fatalf("GetDataInput: no such node %d", id)
	}
	idx := i
	if hasControlInput(n.op) {
		idx++
	}
	if idx < 0 || idx >= len(n.inputs) {
		fatalf("GetDataInput: index %d out of range for node %d", i, id)
	}
	return n.inputs[idx]
}

// DataInputs returns all of id's data input ids, in order.
func (g *Graph) DataInputs(id NodeID) []NodeID {
	n := g.GetByIndex(id)
	if n == nil {
		fatalf("DataInputs: no such node %d", id)
	}
	if hasControlInput(n.op) {
		return n.inputs[1:]
	}
	return n.inputs
}

// AppendDataInput grows a dynamic node's (Phi, Call) input list by one
// data slot bound to target.
func (g *Graph) AppendDataInput(id, target NodeID) {
	n := g.GetByIndex(id)
	if n == nil {
		fatalf("AppendDataInput: no such node %d", id)
	}
	n.inputs = append(n.inputs, target)
	if target != invalidID {
		g.AddDataUser(target, id)
	}
}

// AddDataUser records consumer as a data user of producer, reserving
// users[0] for producer's control-chain successor first if producer's
// opcode calls for it and no user has been recorded yet. A duplicate
// consumer is a no-op.
func (g *Graph) AddDataUser(producer, consumer NodeID) {
	n := g.GetByIndex(producer)
	if n == nil {
		fatalf("AddDataUser: no such node %d", producer)
	}
	if reservesControlUser(n.op) && len(n.users) == 0 {
		n.users = append(n.users, invalidID)
	}
	for _, u := range n.DataUsers() {
		if u == consumer {
			return
		}
	}
	n.users = append(n.users, consumer)
}

// DeleteDataUser removes consumer from producer's data users. Fatal if
// consumer is not present.
func (g *Graph) DeleteDataUser(producer, consumer NodeID) {
	n := g.GetByIndex(producer)
	if n == nil {
		fatalf("DeleteDataUser: no such node %d", producer)
	}
	start := n.dataUserStart()
	for i := start; i < len(n.users); i++ {
		if n.users[i] == consumer {
			n.users = append(n.users[:i], n.users[i+1:]...)
			return
		}
	}
	fatalf("DeleteDataUser: %d is not a data user of %d", consumer, producer)
}

// ReplaceDataUsers retargets every data user of old onto this, then
// clears old's data user list. Control users (the reserved slot-0 chain
// pointer / branch targets) are untouched; see ReplaceControlUser.
func (g *Graph) ReplaceDataUsers(oldID, newID NodeID) {
	old := g.GetByIndex(oldID)
	if old == nil {
		fatalf("ReplaceDataUsers: no such node %d", oldID)
	}
	for _, u := range append([]NodeID(nil), old.DataUsers()...) {
		consumer := g.GetByIndex(u)
		if consumer == nil {
			continue
		}
		start := 0
		if hasControlInput(consumer.op) {
			start = 1
		}
		for i := start; i < len(consumer.inputs); i++ {
			if consumer.inputs[i] == oldID {
				consumer.inputs[i] = newID
			}
		}
		g.AddDataUser(newID, u)
	}
	start := old.dataUserStart()
	old.users = old.users[:start]
}

// ReplaceControlUser retargets old's reserved control-chain successor
// onto this node's chain, used when splicing the graph (inlining, checks
// elimination on control-adjacent rewrites).
func (g *Graph) ReplaceControlUser(oldID, newID NodeID) {
	old := g.GetByIndex(oldID)
	if old == nil || !reservesControlUser(old.op) {
		fatalf("ReplaceControlUser: node %d reserves no control-user slot", oldID)
	}
	if len(old.users) == 0 {
		return
	}
	successor := old.users[0]
	old.users[0] = invalidID
	if successor == invalidID {
		return
	}
	g.SetControlInput(successor, newID)
}

// DeleteRawUser removes the first occurrence of target from id's raw user
// list (any slot). A missing node or an absent target is ignored. Used by
// Delete to sever both directions of every edge touching a removed node.
func (g *Graph) DeleteRawUser(id, target NodeID) {
	n := g.GetByIndex(id)
	if n == nil {
		return
	}
	for i, u := range n.users {
		if u == target {
			n.users = append(n.users[:i], n.users[i+1:]...)
			return
		}
	}
}

// DeleteInput removes target from id's raw input list (any slot, dynamic
// nodes only), asserting it is present — per the corrected semantics
// noted in design notes (an earlier revision asserted the opposite).
func (g *Graph) DeleteInput(id, target NodeID) {
	n := g.GetByIndex(id)
	if n == nil {
		fatalf("DeleteInput: no such node %d", id)
	}
	for i, in := range n.inputs {
		if in == target {
			n.inputs = append(n.inputs[:i], n.inputs[i+1:]...)
			return
		}
	}
	fatalf("DeleteInput: %d is not an input of %d", target, id)
}
