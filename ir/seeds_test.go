package ir

import (
	"strings"
	"testing"
)

// Scenario 1: Sub-zero peephole.
func TestSeedSubZeroPeephole(t *testing.T) {
	g := BuildSubZero(nil)
	param := NodeID(2) // Start=0, End=1, Param=2, Const=3, Sub=4, Return=5

	NewPeepholes(g).Run()

	ret := g.GetByIndex(5)
	if ret.Opcode() != OpReturn {
		t.Fatalf("node 5 is %v, want Return", ret.Opcode())
	}
	if got := g.GetDataInput(ret.ID(), 0); got != param {
		t.Errorf("Return's data input = v%d, want v%d (the Sub bypassed)", got, param)
	}
}

// Scenario 2: constant folding of Sub.
func TestSeedConstantFoldSub(t *testing.T) {
	g := BuildConstFold(nil)
	NewPeepholes(g).Run()

	ret := g.GetByIndex(5)
	folded := g.GetByIndex(g.GetDataInput(ret.ID(), 0))
	if folded.Opcode() != OpConstant {
		t.Fatalf("Return's input is %v, want a folded Constant", folded.Opcode())
	}
	if folded.Imm() != 19 {
		t.Errorf("folded constant = %d, want 19", folded.Imm())
	}
}

// Scenario 3: redundant NullCheck elimination within one region.
func TestSeedRedundantNullCheck(t *testing.T) {
	g := BuildRedundantNullCheck(nil)
	NewDomTree(g).Run()
	NewLoopAnalysis(g).Run()
	NewGCM(g).Run()
	lo := NewLinearOrder(g)
	lo.Run()
	NewLivenessAnalyzer(g, lo.Vector()).Run()

	check1 := NodeID(3)
	check2 := NodeID(4)
	ret := g.GetByIndex(5)

	NewChecksElimination(g).Run()

	if got := g.GetDataInput(ret.ID(), 0); got != check1 {
		t.Errorf("Return's input = v%d, want v%d (redirected to the first check)", got, check1)
	}
	if len(g.GetByIndex(check2).DataUsers()) != 0 {
		t.Errorf("second NullCheck still has data users: %v", g.GetByIndex(check2).DataUsers())
	}
}

// Scenario 4: RPO of a diamond visits Start first, End last, and never
// repeats or drops a region.
func TestSeedDiamondRPO(t *testing.T) {
	g := BuildDiamond(nil)

	rpo := NewRPORegions(g)
	rpo.Run()
	got := rpo.Vector()

	if len(got) != len(g.AllRegions()) {
		t.Fatalf("RPO regions = %v, want one entry per region (have %d regions)", got, len(g.AllRegions()))
	}
	if got[0] != g.StartRegion().ID() {
		t.Errorf("RPO regions[0] = %d, want Start (%d)", got[0], g.StartRegion().ID())
	}
	if got[len(got)-1] != g.EndRegion().ID() {
		t.Errorf("RPO regions should end at End (%d), got %v", g.EndRegion().ID(), got)
	}
	seen := make(map[NodeID]bool)
	for _, id := range got {
		if seen[id] {
			t.Errorf("RPO regions repeats %d: %v", id, got)
		}
		seen[id] = true
	}
}

// Scenario 5: the dominator dump of the diamond agrees with the graph's
// actual shape: the dump has its header, every region but Start has an
// immediate dominator, Start dominates every other region, and End's
// immediate dominator is not Start.
func TestSeedDiamondDomDump(t *testing.T) {
	g := BuildDiamond(nil)
	NewDomTree(g).Run()

	startID := g.StartRegion().ID()
	endID := g.EndRegion().ID()

	dump := g.DumpDomTree()
	if !strings.HasPrefix(dump, "Dominations in graph:\n") {
		t.Fatalf("DumpDomTree() missing header: %q", dump)
	}

	for _, r := range g.AllRegions() {
		if r.ID() == startID {
			continue
		}
		if r.Dominator() == invalidID {
			t.Errorf("region %d has no dominator", r.ID())
		}
	}
	startRegion := g.GetByIndex(startID)
	dominatedByStart := make(map[NodeID]bool)
	for _, d := range startRegion.Dominated() {
		dominatedByStart[d] = true
	}
	for _, r := range g.AllRegions() {
		if r.ID() == startID {
			continue
		}
		if !dominatedByStart[r.ID()] {
			t.Errorf("Start does not transitively dominate region %d", r.ID())
		}
	}
	if g.GetByIndex(endID).Dominator() == startID {
		t.Errorf("End's immediate dominator should not be Start directly in a diamond with an If in between")
	}
}

// Scenario 6: linear-scan on a Phi merge.
func TestSeedPhiMergeLinearScan(t *testing.T) {
	g := BuildPhiMerge(&Config{NumRegisters: 3})
	NewDomTree(g).Run()
	NewLoopAnalysis(g).Run()
	NewGCM(g).Run()

	lo := NewLinearOrder(g)
	lo.Run()

	la := NewLivenessAnalyzer(g, lo.Vector())
	la.Run()

	ra := NewLinearScanRegAlloc(la.LiveIntervals(), 3)
	ra.Run()

	locs := ra.RegsMap()
	for linear, loc := range locs {
		t.Logf("linear %d -> stack=%v index=%d name=%s", linear, loc.IsStack, loc.Index, loc.Name)
	}
	// Every assigned register is used by at most one interval at a time:
	// no two intervals holding the same non-stack location may overlap.
	intervals := la.LiveIntervals()
	for a := range intervals {
		for b := range intervals {
			if a == b {
				continue
			}
			locA, locB := locs[int32(a)], locs[int32(b)]
			if locA.IsStack || locB.IsStack || locA.Index != locB.Index {
				continue
			}
			ia, ib := intervals[a], intervals[b]
			if ia.Begin() < ib.End() && ib.Begin() < ia.End() {
				t.Errorf("linear %d and %d share register %d with overlapping intervals [%d,%d) vs [%d,%d)",
					a, b, locA.Index, ia.Begin(), ia.End(), ib.Begin(), ib.End())
			}
		}
	}
}

// Scenario 7: inlining a single-return callee.
func TestSeedInlineSingleReturn(t *testing.T) {
	cfg := &Config{}
	caller := BuildInlineCaller(cfg)
	callee := BuildInlineCallee(cfg)

	registry := map[CalleeKey]*Graph{
		{Name: "Foo", Arity: 1}: callee,
	}
	NewInlining(caller, registry).Run()

	for _, n := range caller.AllNodes() {
		if n.Opcode() == OpCall {
			t.Fatalf("Call node %d still present after inlining", n.ID())
		}
	}

	var foundReturn, foundAdd bool
	for _, n := range caller.AllNodes() {
		switch n.Opcode() {
		case OpReturn:
			foundReturn = true
		case OpAdd:
			foundAdd = true
		}
	}
	if !foundReturn {
		t.Error("no Return node survives inlining")
	}
	if !foundAdd {
		t.Error("callee's Add was not spliced into the caller")
	}
}
