package ir

// Sample graphs matching the seed scenarios, exercised by both the test
// suite and the irdump CLI so both see the exact same literal IR.

// BuildSubZero builds: Param v2; Const v3 = 0; Sub v4 = v2 - v3; Return v5 = v4.
func BuildSubZero(cfg *Config) *Graph {
	g := NewGraph("subZero", cfg)
	start := g.StartRegion()
	param := g.CreateParameter(0, TypeI64)
	zero := g.CreateConstant(0)
	sub := g.CreateSub(param.ID(), zero.ID(), TypeI64)
	ret := g.CreateReturn(sub.ID())
	g.SetControlInput(ret.ID(), start.ID())
	g.SetReturnTarget(ret.ID())
	return g
}

// BuildConstFold builds: Const v2 = 22; Const v3 = 3; Sub v4 = v2 - v3; Return v5 = v4.
func BuildConstFold(cfg *Config) *Graph {
	g := NewGraph("constFold", cfg)
	start := g.StartRegion()
	a := g.CreateConstant(22)
	b := g.CreateConstant(3)
	sub := g.CreateSub(a.ID(), b.ID(), TypeI64)
	ret := g.CreateReturn(sub.ID())
	g.SetControlInput(ret.ID(), start.ID())
	g.SetReturnTarget(ret.ID())
	return g
}

// BuildRedundantNullCheck builds a single region with a parameter checked
// twice: the second NullCheck is dominated by the first within the region.
func BuildRedundantNullCheck(cfg *Config) *Graph {
	g := NewGraph("redundantNullCheck", cfg)
	start := g.StartRegion()
	param := g.CreateParameter(0, TypeRef)

	check1 := g.CreateNullCheck(param.ID(), TypeRef)
	g.SetControlInput(check1.ID(), start.ID())

	check2 := g.CreateNullCheck(param.ID(), TypeRef)
	g.SetControlInput(check2.ID(), check1.ID())

	ret := g.CreateReturn(check2.ID())
	g.SetControlInput(ret.ID(), check2.ID())
	g.SetReturnTarget(ret.ID())
	return g
}

// BuildDiamond builds the Start -> R3 -> If -> {R5 -> R7, R7} -> End shape
// used by the RPO and dominator-dump seed scenarios. The labels are not
// node ids: R3, R5 and R7 get ids 2, 8 and 9 here.
func BuildDiamond(cfg *Config) *Graph {
	g := NewGraph("diamond", cfg)
	start := g.StartRegion()

	r3 := g.CreateRegion()
	j0 := g.CreateJump()
	g.SetControlInput(j0.ID(), start.ID())
	g.SetJumpTarget(j0.ID(), r3.ID())

	param := g.CreateParameter(0, TypeI64)
	zero := g.CreateConstant(0)
	cmp := g.CreateCompare(CondGT, param.ID(), zero.ID())
	iff := g.CreateIf(cmp.ID())
	g.SetControlInput(iff.ID(), r3.ID())

	r5 := g.CreateRegion()
	r7 := g.CreateRegion()
	g.SetTrueBranch(iff.ID(), r5.ID())
	g.SetFalseBranch(iff.ID(), r7.ID())

	j1 := g.CreateJump()
	g.SetControlInput(j1.ID(), r5.ID())
	g.SetJumpTarget(j1.ID(), r7.ID())

	ret := g.CreateReturn(param.ID())
	g.SetControlInput(ret.ID(), r7.ID())
	g.SetReturnTarget(ret.ID())
	return g
}

// BuildPhiMerge builds the diamond's merge region with a Phi selecting
// between the parameter (on the If's false edge) and the constant 1 (on
// the edge from R5), for the linear-scan seed scenario.
func BuildPhiMerge(cfg *Config) *Graph {
	g := NewGraph("phiMerge", cfg)
	start := g.StartRegion()

	r3 := g.CreateRegion()
	j0 := g.CreateJump()
	g.SetControlInput(j0.ID(), start.ID())
	g.SetJumpTarget(j0.ID(), r3.ID())

	param := g.CreateParameter(0, TypeI64)
	zero := g.CreateConstant(0)
	cmp := g.CreateCompare(CondGT, param.ID(), zero.ID())
	iff := g.CreateIf(cmp.ID())
	g.SetControlInput(iff.ID(), r3.ID())

	r5 := g.CreateRegion()
	r7 := g.CreateRegion()
	g.SetTrueBranch(iff.ID(), r5.ID())
	g.SetFalseBranch(iff.ID(), r7.ID())

	one := g.CreateConstant(1)
	j1 := g.CreateJump()
	g.SetControlInput(j1.ID(), r5.ID())
	g.SetJumpTarget(j1.ID(), r7.ID())

	phi := g.CreatePhi(r7.ID(), TypeI64)
	g.AppendDataInput(phi.ID(), param.ID())
	g.AppendDataInput(phi.ID(), one.ID())

	ret := g.CreateReturn(phi.ID())
	g.SetControlInput(ret.ID(), phi.ID())
	g.SetReturnTarget(ret.ID())
	return g
}

// BuildInlineCaller builds a caller `main` with a single-argument Call to
// "Foo", and BuildInlineCallee builds the matching single-return callee.
func BuildInlineCaller(cfg *Config) *Graph {
	g := NewGraph("main", cfg)
	start := g.StartRegion()
	arg := g.CreateConstant(7)
	call := g.CreateCall("Foo", TypeI64, []NodeID{arg.ID()})
	g.SetControlInput(call.ID(), start.ID())

	ret := g.CreateReturn(call.ID())
	g.SetControlInput(ret.ID(), call.ID())
	g.SetReturnTarget(ret.ID())
	return g
}

// BuildInlineCallee builds Foo(param) -> Return(param + 1).
func BuildInlineCallee(cfg *Config) *Graph {
	g := NewGraph("Foo", cfg)
	start := g.StartRegion()
	param := g.CreateParameter(0, TypeI64)
	one := g.CreateConstant(1)
	sum := g.CreateAdd(param.ID(), one.ID(), TypeI64)
	ret := g.CreateReturn(sum.ID())
	g.SetControlInput(ret.ID(), start.ID())
	g.SetReturnTarget(ret.ID())
	return g
}
