// Package cfg provides an editable control-flow graph over linear
// instruction sequences. Blocks and edges live in arenas addressed by
// stable IDs, so deleting one edge never invalidates an ID held elsewhere:
// deletion marks the arena slot dead and unlinks it from the endpoint
// blocks.
package cfg

import (
	"bopt/internal/ir"
)

// BlockID indexes the block arena.
type BlockID int32

// EdgeID indexes the edge arena.
type EdgeID int32

// EdgeKind distinguishes the two outgoing paths of a block.
type EdgeKind uint8

const (
	// EdgeGoto is unconditional continuation: fallthrough when the target
	// is next in layout, an explicit goto otherwise.
	EdgeGoto EdgeKind = iota
	// EdgeBranch is the taken path of a conditional test. It always needs
	// an explicit conditional jump, whatever its target.
	EdgeBranch
)

// Block is a basic block: an ordered instruction run plus its incident
// edges. Goto instructions are never stored; they live on edges.
type Block struct {
	ID     BlockID
	Instrs []ir.Instr

	preds []EdgeID
	succs []EdgeID
}

type edge struct {
	from BlockID
	to   BlockID
	kind EdgeKind
	dead bool
}

// Graph owns the block and edge arenas and the layout order. The layout is
// frozen at build time: edge mutations never reorder blocks.
type Graph struct {
	blocks []Block
	edges  []edge
	layout []BlockID
}

// NumBlocks returns the number of blocks in the graph.
func (g *Graph) NumBlocks() int {
	return len(g.blocks)
}

// Block returns the block with the given ID.
func (g *Graph) Block(id BlockID) *Block {
	return &g.blocks[id]
}

// Order returns a copy of the frozen layout order.
func (g *Graph) Order() []BlockID {
	return append([]BlockID(nil), g.layout...)
}

// EdgeSrc returns the source block of an edge.
func (g *Graph) EdgeSrc(e EdgeID) BlockID { return g.edges[e].from }

// EdgeDst returns the target block of an edge.
func (g *Graph) EdgeDst(e EdgeID) BlockID { return g.edges[e].to }

// EdgeKindOf returns the kind of an edge.
func (g *Graph) EdgeKindOf(e EdgeID) EdgeKind { return g.edges[e].kind }

// PredEdges returns a copy of the alive incoming edges of a block. The
// copy keeps iteration safe while the caller mutates block contents.
func (g *Graph) PredEdges(id BlockID) []EdgeID {
	return append([]EdgeID(nil), g.blocks[id].preds...)
}

// NumPreds returns the number of alive incoming edges of a block.
func (g *Graph) NumPreds(id BlockID) int {
	return len(g.blocks[id].preds)
}

// SuccEdge returns the outgoing edge of the given kind, if any. Under the
// graph invariants a block has at most one outgoing edge per kind.
func (g *Graph) SuccEdge(id BlockID, kind EdgeKind) (EdgeID, bool) {
	for _, e := range g.blocks[id].succs {
		if g.edges[e].kind == kind {
			return e, true
		}
	}
	return 0, false
}

// FirstInstr returns the first instruction of a block, or nil when empty.
func (g *Graph) FirstInstr(id BlockID) *ir.Instr {
	b := &g.blocks[id]
	if len(b.Instrs) == 0 {
		return nil
	}
	return &b.Instrs[0]
}

// LastInstr returns the last instruction of a block, or nil when empty.
func (g *Graph) LastInstr(id BlockID) *ir.Instr {
	b := &g.blocks[id]
	if len(b.Instrs) == 0 {
		return nil
	}
	return &b.Instrs[len(b.Instrs)-1]
}

// AppendInstr appends an instruction to the end of a block.
func (g *Graph) AppendInstr(id BlockID, in ir.Instr) {
	b := &g.blocks[id]
	b.Instrs = append(b.Instrs, in)
}

// RemoveLastInstr removes the last instruction of a block.
func (g *Graph) RemoveLastInstr(id BlockID) {
	b := &g.blocks[id]
	b.Instrs = b.Instrs[:len(b.Instrs)-1]
}

// addEdge links a new edge into both endpoint blocks.
func (g *Graph) addEdge(from, to BlockID, kind EdgeKind) EdgeID {
	e := EdgeID(len(g.edges)) //nolint:gosec // G115: bounded by edge count
	g.edges = append(g.edges, edge{from: from, to: to, kind: kind})
	g.blocks[from].succs = append(g.blocks[from].succs, e)
	g.blocks[to].preds = append(g.blocks[to].preds, e)
	return e
}

// SetEdgeTarget retargets an edge to a new block, updating the pred lists
// of the old and new targets. Layout order and block contents are
// untouched.
func (g *Graph) SetEdgeTarget(e EdgeID, to BlockID) {
	ed := &g.edges[e]
	removeEdgeID(&g.blocks[ed.to].preds, e)
	ed.to = to
	g.blocks[to].preds = append(g.blocks[to].preds, e)
}

// DeleteEdge unlinks an edge from both endpoints and marks its arena slot
// dead. The EdgeID stays valid but the edge no longer participates in any
// query.
func (g *Graph) DeleteEdge(e EdgeID) {
	ed := &g.edges[e]
	if ed.dead {
		return
	}
	removeEdgeID(&g.blocks[ed.from].succs, e)
	removeEdgeID(&g.blocks[ed.to].preds, e)
	ed.dead = true
}

func removeEdgeID(list *[]EdgeID, e EdgeID) {
	for i, x := range *list {
		if x == e {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}
