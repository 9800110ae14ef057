// Package opt implements the goto-reduction pass. It lowers the number of
// explicit jumps a method must encode in two ways: inverting conditional
// branches so the fallthrough path goes to the better fallthrough
// candidate, and replacing gotos that lead only to a return by the return
// itself. Returns encode smaller than gotos and compress better, having no
// offset.
package opt

import (
	"fmt"

	"bopt/internal/cfg"
	"bopt/internal/ir"
)

// Process builds the CFG of a linear method body, reduces its gotos and
// linearizes it back. It is a pure function of the input method: the
// returned sequence and stats depend on nothing else, which is what makes
// per-method parallel invocation safe.
func Process(insns []ir.Instr) ([]ir.Instr, Stats, error) {
	g, err := cfg.Build(insns)
	if err != nil {
		return nil, Stats{}, err
	}
	stats := ReduceGotos(g)
	return g.Linearize(), stats, nil
}

// ReduceGotos runs both optimizations on an already-built graph.
func ReduceGotos(g *cfg.Graph) Stats {
	var stats Stats
	invertConditionalBranches(g, &stats)
	collapseGotoReturns(g, &stats)
	return stats
}

// invertConditionalBranches flips a conditional branch and swaps its edge
// targets when that improves the fallthrough candidate. Fallthrough can
// satisfy at most one predecessor of a block, so a goto edge into a
// multi-predecessor block will likely need an explicit jump anyway, while
// the branch edge needs one regardless of where it points. Pointing the
// goto edge at a single-predecessor block costs nothing and maximizes the
// chance the linearizer elides the jump.
//
// The rewrite falsifies its own trigger (the goto target ends up with one
// predecessor), so a second application is a no-op.
func invertConditionalBranches(g *cfg.Graph, stats *Stats) {
	for _, id := range g.Order() {
		last := g.LastInstr(id)
		if last == nil || last.Kind != ir.InstrCondBranch {
			continue
		}

		gotoEdge, ok := g.SuccEdge(id, cfg.EdgeGoto)
		if !ok {
			panic(fmt.Sprintf("reducegotos: bb%d ends with a conditional branch but has no goto edge", id))
		}
		branchEdge, ok := g.SuccEdge(id, cfg.EdgeBranch)
		if !ok {
			panic(fmt.Sprintf("reducegotos: bb%d ends with a conditional branch but has no branch edge", id))
		}

		gotoTarget := g.EdgeDst(gotoEdge)
		branchTarget := g.EdgeDst(branchEdge)
		if g.NumPreds(gotoTarget) > 1 && g.NumPreds(branchTarget) == 1 {
			stats.InvertedConditionalBranches++
			last.CondBranch.Test = last.CondBranch.Test.Invert()
			g.SetEdgeTarget(branchEdge, gotoTarget)
			g.SetEdgeTarget(gotoEdge, branchTarget)
		}
	}
}

// collapseGotoReturns inlines single-return blocks into every predecessor
// that reaches them over a goto edge, deleting the edge. A return is
// cloned per predecessor: instruction count may grow, jump count always
// shrinks by one per deleted edge.
//
// When the predecessor ends with a move staging the returned value, the
// clone is rewritten to read the move's source and the move is dropped.
// Dropping a move can expose a new single-return block or a new trailing
// move, so the scan reruns until one pass removes no move. Each removal
// strictly shrinks the set of eligible trailing moves, so the loop
// terminates. Edge deletions are deferred to the end of each scan so the
// edge sets stay stable under the live iteration.
//
// The layout snapshot is captured once, before the first scan, and the
// fallthrough-adjacency check keeps using it across reruns.
func collapseGotoReturns(g *cfg.Graph, stats *Stats) {
	order := g.Order()
	for {
		rerun := false
		var toDelete []cfg.EdgeID

		for idx, id := range order {
			b := g.Block(id)
			if len(b.Instrs) != 1 {
				continue
			}
			ret := b.Instrs[0]
			if ret.Kind != ir.InstrReturn {
				continue
			}

			for _, e := range g.PredEdges(id) {
				if g.EdgeKindOf(e) != cfg.EdgeGoto {
					continue
				}
				src := g.EdgeSrc(e)
				clone := ret.Clone()

				removedMove := false
				if clone.Return.HasValue {
					// A trailing "move dst, src" feeding "return dst" of
					// matching width collapses into "return src".
					if last := g.LastInstr(src); last != nil &&
						last.Kind == ir.InstrMove &&
						last.Move.Dst == clone.Return.Src &&
						last.Move.Wide == clone.Return.Wide {
						clone.Return.Src = last.Move.Src
						g.RemoveLastInstr(src)
						stats.TrailingMovesRemoved++
						removedMove = true
						rerun = true
					}
				}

				if !removedMove && idx > 0 && order[idx-1] == src {
					// Linearization never emits a goto here; inlining the
					// return would grow code without removing a jump.
					continue
				}

				g.AppendInstr(src, clone)
				toDelete = append(toDelete, e)
			}
		}

		for _, e := range toDelete {
			g.DeleteEdge(e)
			stats.GotosReplacedWithReturns++
		}
		if !rerun {
			return
		}
	}
}
