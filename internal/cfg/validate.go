package cfg

import (
	"errors"
	"fmt"

	"bopt/internal/ir"
)

// Validate checks graph invariants. Returns an error describing every
// violation found.
func (g *Graph) Validate() error {
	var errs []error

	for i := range g.blocks {
		b := &g.blocks[i]
		id := b.ID

		var gotos, branches int
		for _, e := range b.succs {
			ed := &g.edges[e]
			if ed.dead {
				errs = append(errs, fmt.Errorf("bb%d: dead edge %d still linked as successor", id, e))
				continue
			}
			if ed.from != id {
				errs = append(errs, fmt.Errorf("bb%d: successor edge %d claims source bb%d", id, e, ed.from))
			}
			switch ed.kind {
			case EdgeGoto:
				gotos++
			case EdgeBranch:
				branches++
			}
		}
		if gotos > 1 {
			errs = append(errs, fmt.Errorf("bb%d: %d outgoing goto edges", id, gotos))
		}
		if branches > 1 {
			errs = append(errs, fmt.Errorf("bb%d: %d outgoing branch edges", id, branches))
		}
		if last := g.LastInstr(id); last != nil && last.Kind == ir.InstrCondBranch {
			if gotos != 1 || branches != 1 {
				errs = append(errs, fmt.Errorf("bb%d: conditional branch block has %d goto and %d branch edges", id, gotos, branches))
			}
		} else if branches != 0 {
			errs = append(errs, fmt.Errorf("bb%d: branch edge without a conditional branch terminator", id))
		}

		for _, e := range b.preds {
			ed := &g.edges[e]
			if ed.dead {
				errs = append(errs, fmt.Errorf("bb%d: dead edge %d still linked as predecessor", id, e))
				continue
			}
			if ed.to != id {
				errs = append(errs, fmt.Errorf("bb%d: predecessor edge %d claims target bb%d", id, e, ed.to))
			}
		}
	}

	return errors.Join(errs...)
}
