package cfg

import (
	"fmt"

	"fortio.org/safecast"

	"bopt/internal/ir"
)

// Linearize flattens the graph back into a linear instruction sequence
// following the frozen layout order. A surviving goto edge materializes an
// explicit goto only when its target is not the next block in layout;
// branch and goto targets are patched to final instruction indices in a
// second pass. Blocks left unreachable by deleted edges are still emitted;
// removing them is a separate simplification.
func (g *Graph) Linearize() []ir.Instr {
	var out []ir.Instr
	start := make([]int, len(g.blocks))

	type patch struct {
		at     int     // index in out
		target BlockID // block whose start offset goes into the instruction
	}
	var patches []patch

	for li, id := range g.layout {
		b := &g.blocks[id]
		start[id] = len(out)
		for _, in := range b.Instrs {
			if in.Kind == ir.InstrCondBranch {
				be, ok := g.SuccEdge(id, EdgeBranch)
				if !ok {
					panic(fmt.Sprintf("cfg: block bb%d ends with a conditional branch but has no branch edge", id))
				}
				patches = append(patches, patch{at: len(out), target: g.edges[be].to})
			}
			out = append(out, in.Clone())
		}
		if ge, ok := g.SuccEdge(id, EdgeGoto); ok {
			to := g.edges[ge].to
			if li+1 >= len(g.layout) || g.layout[li+1] != to {
				patches = append(patches, patch{at: len(out), target: to})
				out = append(out, ir.Instr{Kind: ir.InstrGoto})
			}
		}
	}

	for _, p := range patches {
		off, err := safecast.Conv[int32](start[p.target])
		if err != nil {
			panic(fmt.Errorf("cfg: instruction offset overflow: %w", err))
		}
		switch out[p.at].Kind {
		case ir.InstrCondBranch:
			out[p.at].CondBranch.Target = off
		case ir.InstrGoto:
			out[p.at].Goto.Target = off
		}
	}

	return out
}
