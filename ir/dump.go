package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// DumpUnscheduled renders every node in id order (the pre-GCM form).
func (g *Graph) DumpUnscheduled() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Method: %s\nInstructions:\n", g.name)
	for _, n := range g.AllNodes() {
		writeNodeLine(&b, g, n)
	}
	return b.String()
}

// DumpScheduled renders the placed form: each region's header line
// followed by its placed-node sequence, separated by dashed rules.
func (g *Graph) DumpScheduled() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Method: %s\nInstructions is PLACED:\n", g.name)
	for i, r := range g.AllRegions() {
		if i > 0 {
			b.WriteString("----------------------------\n")
		}
		writeNodeLine(&b, g, r)
		for cur := r.first; cur != invalidID; cur = g.GetByIndex(cur).next {
			writeNodeLine(&b, g, g.GetByIndex(cur))
		}
	}
	return b.String()
}

func writeNodeLine(b *strings.Builder, g *Graph, n *Node) {
	fmt.Fprintf(b, "%4d.%-4s%-10s ", n.id, n.typ.String(), n.op.String())
	writeOperands(b, g, n)
	writeUsers(b, g, n)
	b.WriteString("\n")
}

func writeOperands(b *strings.Builder, g *Graph, n *Node) {
	switch n.op {
	case OpConstant:
		fmt.Fprintf(b, "0x%x", n.imm)
	case OpParameter:
		fmt.Fprintf(b, "%q", strconv.Itoa(int(n.paramIdx)))
	case OpCompare:
		fmt.Fprintf(b, "%s v%d, v%d", n.cc, g.GetDataInput(n.id, 0), g.GetDataInput(n.id, 1))
	case OpCall:
		fmt.Fprintf(b, "%q", n.callName)
		for _, a := range g.DataInputs(n.id) {
			fmt.Fprintf(b, ", v%d", a)
		}
	case OpIf:
		fmt.Fprintf(b, "v%d", g.GetDataInput(n.id, 0))
	case OpJump:
		// no operands
	case OpPhi:
		fmt.Fprintf(b, "v%d", g.GetControlInput(n.id))
		for i, in := range g.DataInputs(n.id) {
			pred := g.RegionInput(g.GetControlInput(n.id), i)
			fmt.Fprintf(b, ", v%d(R%d)", in, pred)
		}
	case OpReturn, OpNullCheck, OpBoundsCheck:
		for i := 0; i < n.NumDataInputs(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "v%d", g.GetDataInput(n.id, i))
		}
	case OpStart, OpRegion, OpEnd:
		writeRegionSuffix(b, g, n)
	default:
		for i, in := range g.DataInputs(n.id) {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "v%d", in)
		}
	}
}

func writeRegionSuffix(b *strings.Builder, g *Graph, n *Node) {
	if n.loop == nil {
		return
	}
	loopLabel := "root"
	if n.loop.header != invalidID {
		loopLabel = strconv.Itoa(int(n.loop.id))
	}
	fmt.Fprintf(b, "[Loop:%s, Depth:%d", loopLabel, n.loop.depth)
	if n.loop.header == n.id {
		b.WriteString(", Header")
	}
	for _, be := range n.loop.backedges {
		if be == n.id {
			b.WriteString(", Backedge")
			break
		}
	}
	if n.loop.irreducible && n.loop.header == n.id {
		b.WriteString(", Irreducible")
	}
	b.WriteString("]")
}

func writeUsers(b *strings.Builder, g *Graph, n *Node) {
	switch n.op {
	case OpIf:
		t, f := "NOT_SET", "NOT_SET"
		if n.users[0] != invalidID {
			t = fmt.Sprintf("v%d", n.users[0])
		}
		if n.users[1] != invalidID {
			f = fmt.Sprintf("v%d", n.users[1])
		}
		fmt.Fprintf(b, " -> T:%s, F:%s", t, f)
	default:
		users := n.DataUsers()
		if len(users) == 0 {
			return
		}
		b.WriteString(" -> ")
		for i, u := range users {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "v%d", u)
		}
	}
}

// DumpDomTree renders the dominator relation computed by DomTree.
func (g *Graph) DumpDomTree() string {
	var b strings.Builder
	b.WriteString("Dominations in graph:\n")
	for _, r := range g.AllRegions() {
		dom := ""
		if r.dom != invalidID {
			dom = strconv.Itoa(int(r.dom))
		}
		fmt.Fprintf(&b, "%4d) %s -> ", r.id, dom)
		for i, d := range r.dominated {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%d", d)
		}
		b.WriteString("\n")
	}
	return b.String()
}
