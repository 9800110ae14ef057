package cfg

import (
	"fmt"

	"bopt/internal/ir"
)

// Build constructs the control-flow graph of a linear instruction
// sequence. Block boundaries follow the usual leader rules: the entry,
// every branch or goto target, and every instruction after a branch, goto
// or return start a block. Goto instructions are absorbed into goto edges;
// conditional branches keep their instruction and grow a branch edge for
// the taken path plus a goto edge for the fallthrough.
func Build(insns []ir.Instr) (*Graph, error) {
	g := &Graph{}
	n := len(insns)
	if n == 0 {
		return g, nil
	}

	target := func(i int) (int, bool) {
		switch insns[i].Kind {
		case ir.InstrGoto:
			return int(insns[i].Goto.Target), true
		case ir.InstrCondBranch:
			return int(insns[i].CondBranch.Target), true
		default:
			return 0, false
		}
	}

	leader := make([]bool, n)
	leader[0] = true
	for i := range insns {
		if t, ok := target(i); ok {
			if t < 0 || t >= n {
				return nil, fmt.Errorf("cfg: instruction %d jumps to %d, out of range [0, %d)", i, t, n)
			}
			leader[t] = true
		}
		switch insns[i].Kind {
		case ir.InstrGoto, ir.InstrCondBranch, ir.InstrReturn:
			if i+1 < n {
				leader[i+1] = true
			}
		}
	}

	// Carve blocks in linear order; that order is the frozen layout.
	blockAt := make([]BlockID, n)
	for i := range insns {
		if leader[i] {
			id := BlockID(len(g.blocks)) //nolint:gosec // G115: bounded by instruction count
			g.blocks = append(g.blocks, Block{ID: id})
			g.layout = append(g.layout, id)
		}
		id := g.layout[len(g.layout)-1]
		blockAt[i] = id
		if insns[i].Kind != ir.InstrGoto {
			b := &g.blocks[id]
			b.Instrs = append(b.Instrs, insns[i].Clone())
		}
	}

	// Wire edges off each block's final linear instruction.
	for i := range insns {
		if i+1 < n && blockAt[i+1] == blockAt[i] {
			continue // not the last instruction of its block
		}
		id := blockAt[i]
		switch insns[i].Kind {
		case ir.InstrGoto:
			t, _ := target(i)
			g.addEdge(id, blockAt[t], EdgeGoto)
		case ir.InstrCondBranch:
			if i+1 >= n {
				return nil, fmt.Errorf("cfg: conditional branch at %d falls off the method end", i)
			}
			t, _ := target(i)
			g.addEdge(id, blockAt[t], EdgeBranch)
			g.addEdge(id, blockAt[i+1], EdgeGoto)
		case ir.InstrReturn:
			// terminal, no successors
		default:
			if i+1 >= n {
				return nil, fmt.Errorf("cfg: method falls off the end at instruction %d", i)
			}
			g.addEdge(id, blockAt[i+1], EdgeGoto)
		}
	}

	return g, nil
}
