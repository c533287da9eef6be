// Command irdump builds one of a fixed set of named sample graphs in
// memory, runs a requested subset of passes over it, and writes the
// resulting dumps to stdout. It does not parse source text.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/techie-mike/compiler-for-vm/ir"
)

var version = "dev"

var samples = map[string]func(*ir.Config) *ir.Graph{
	"sub-zero":      ir.BuildSubZero,
	"const-fold":    ir.BuildConstFold,
	"null-check":    ir.BuildRedundantNullCheck,
	"diamond":       ir.BuildDiamond,
	"phi-merge":     ir.BuildPhiMerge,
	"inline-caller": ir.BuildInlineCaller,
}

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var (
		sample    string
		numRegs   int
		dRPO      bool
		dDom      bool
		dLoop     bool
		dGCM      bool
		dLinear   bool
		dLive     bool
		dRegAlloc bool
		dPeephole bool
		dChecks   bool
		dInline   bool
	)

	cmd := &cobra.Command{
		Use:     "irdump",
		Short:   "Build a sample IR graph and dump the result of selected passes",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			build, ok := samples[sample]
			if !ok {
				return fmt.Errorf("unknown sample %q (known: %s)", sample, knownSamples())
			}

			cfg := &ir.Config{NumRegisters: numRegs}
			g := build(cfg)

			if dInline && sample == "inline-caller" {
				callee := ir.BuildInlineCallee(cfg)
				registry := map[ir.CalleeKey]*ir.Graph{
					{Name: "Foo", Arity: 1}: callee,
				}
				ir.NewInlining(g, registry).Run()
			}

			if dPeephole {
				ir.NewPeepholes(g).Run()
			}

			needsDomTree := dRPO || dDom || dLoop || dGCM || dLinear || dLive || dRegAlloc || dChecks
			needsSchedule := dGCM || dLinear || dLive || dRegAlloc || dChecks
			needsLiveness := dLive || dRegAlloc || dChecks

			if needsDomTree {
				ir.NewDomTree(g).Run()
				ir.NewLoopAnalysis(g).Run()
			}

			if dRPO {
				rpo := ir.NewRPORegions(g)
				rpo.Run()
				fmt.Fprintf(out, "RPO regions: %v\n", rpo.Vector())
				nodes := ir.NewRPONodes(g)
				nodes.Run()
				fmt.Fprintf(out, "RPO nodes: %v\n", nodes.Vector())
			}
			if dDom {
				fmt.Fprint(out, g.DumpDomTree())
			}
			if dLoop {
				for _, r := range g.AllRegions() {
					if loop := r.Loop(); loop != nil && loop.Header() == r.ID() {
						fmt.Fprintf(out, "loop %d: header v%d, depth %d, irreducible %v\n",
							loop.ID(), r.ID(), loop.Depth(), loop.Irreducible())
					}
				}
			}

			var order []ir.NodeID
			if needsSchedule {
				ir.NewGCM(g).Run()
				lo := ir.NewLinearOrder(g)
				lo.Run()
				order = lo.Vector()
			}
			if dGCM {
				fmt.Fprint(out, g.DumpScheduled())
			}
			if dLinear {
				fmt.Fprintf(out, "Linear order: %v\n", order)
			}

			var intervals []*ir.LiveInterval
			if needsLiveness {
				la := ir.NewLivenessAnalyzer(g, order)
				la.Run()
				intervals = la.LiveIntervals()
			}
			if dChecks {
				ir.NewChecksElimination(g).Run()
				fmt.Fprint(out, g.DumpScheduled())
			}
			if dLive {
				for _, iv := range intervals {
					fmt.Fprintf(out, "linear %d: [%d, %d)\n", iv.LinearNumber(), iv.Begin(), iv.End())
				}
			}
			if dRegAlloc {
				ra := ir.NewLinearScanRegAlloc(intervals, numRegs)
				ra.Run()
				for linear, loc := range ra.RegsMap() {
					fmt.Fprintf(out, "linear %d: %s\n", linear, loc.Name)
				}
			}

			if !dRPO && !dDom && !dLoop && !dGCM && !dLinear && !dLive && !dRegAlloc && !dChecks {
				fmt.Fprint(out, g.DumpUnscheduled())
			}
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.Flags().StringVar(&sample, "sample", "diamond", "named sample graph to build: "+knownSamples())
	cmd.Flags().IntVar(&numRegs, "regs", 3, "register pool size for --dregalloc")
	cmd.Flags().BoolVar(&dRPO, "drpo", false, "dump RPO over regions and nodes")
	cmd.Flags().BoolVar(&dDom, "ddom", false, "dump the dominator tree")
	cmd.Flags().BoolVar(&dLoop, "dloop", false, "run loop analysis")
	cmd.Flags().BoolVar(&dGCM, "dgcm", false, "run GCM and dump the scheduled graph")
	cmd.Flags().BoolVar(&dLinear, "dlinear", false, "dump the linear order")
	cmd.Flags().BoolVar(&dLive, "dlive", false, "dump live intervals")
	cmd.Flags().BoolVar(&dRegAlloc, "dregalloc", false, "run linear-scan register allocation")
	cmd.Flags().BoolVar(&dPeephole, "dpeephole", false, "run peepholes and constant folding before dumping")
	cmd.Flags().BoolVar(&dChecks, "dchecks", false, "run redundant checks elimination before dumping")
	cmd.Flags().BoolVar(&dInline, "dinline", false, "run inlining before dumping (sample=inline-caller only)")

	return cmd
}

func knownSamples() string {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	return fmt.Sprint(names)
}
