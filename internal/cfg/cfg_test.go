package cfg_test

import (
	"testing"

	"bopt/internal/cfg"
	"bopt/internal/ir"
)

func condBranch(test ir.TestKind, a ir.Reg, target int32) ir.Instr {
	in := ir.Instr{Kind: ir.InstrCondBranch}
	in.CondBranch = ir.CondBranchInstr{Test: test, A: a, Target: target}
	return in
}

func jump(target int32) ir.Instr {
	in := ir.Instr{Kind: ir.InstrGoto}
	in.Goto = ir.GotoInstr{Target: target}
	return in
}

func ret(src ir.Reg) ir.Instr {
	in := ir.Instr{Kind: ir.InstrReturn}
	in.Return = ir.ReturnInstr{HasValue: true, Src: src}
	return in
}

func retVoid() ir.Instr {
	return ir.Instr{Kind: ir.InstrReturn}
}

func move(dst, src ir.Reg) ir.Instr {
	in := ir.Instr{Kind: ir.InstrMove}
	in.Move = ir.MoveInstr{Dst: dst, Src: src}
	return in
}

func opaque(name string, regs ...ir.Reg) ir.Instr {
	in := ir.Instr{Kind: ir.InstrOther}
	in.Other = ir.OtherInstr{Name: name, Regs: regs}
	return in
}

func mustBuild(t *testing.T, insns []ir.Instr) *cfg.Graph {
	t.Helper()
	g, err := cfg.Build(insns)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("built graph fails validation: %v", err)
	}
	return g
}

// TestBuild_CondBranchEdges checks that a conditional branch block gets
// exactly one branch edge to the taken target and one goto edge to the
// fallthrough.
func TestBuild_CondBranchEdges(t *testing.T) {
	// 0: if-eqz v0 -> 3
	// 1: neg v0
	// 2: return v0
	// 3: return v0
	g := mustBuild(t, []ir.Instr{
		condBranch(ir.TestEqz, 0, 3),
		opaque("neg", 0),
		ret(0),
		ret(0),
	})

	if g.NumBlocks() != 3 {
		t.Fatalf("NumBlocks = %d, want 3", g.NumBlocks())
	}

	be, ok := g.SuccEdge(0, cfg.EdgeBranch)
	if !ok {
		t.Fatal("bb0 has no branch edge")
	}
	ge, ok := g.SuccEdge(0, cfg.EdgeGoto)
	if !ok {
		t.Fatal("bb0 has no goto edge")
	}
	if g.EdgeDst(be) != 2 {
		t.Errorf("branch edge target = bb%d, want bb2", g.EdgeDst(be))
	}
	if g.EdgeDst(ge) != 1 {
		t.Errorf("goto edge target = bb%d, want bb1", g.EdgeDst(ge))
	}
}

// TestBuild_AbsorbsGotos checks that goto instructions become edges rather
// than block contents.
func TestBuild_AbsorbsGotos(t *testing.T) {
	// 0: neg v0
	// 1: goto 2
	// 2: return
	g := mustBuild(t, []ir.Instr{
		opaque("neg", 0),
		jump(2),
		retVoid(),
	})

	b := g.Block(0)
	for _, in := range b.Instrs {
		if in.Kind == ir.InstrGoto {
			t.Error("goto instruction survived into a block")
		}
	}
	if _, ok := g.SuccEdge(0, cfg.EdgeGoto); !ok {
		t.Error("absorbed goto left no goto edge behind")
	}
}

// TestBuild_BadTarget checks that out-of-range jump targets are build
// errors, not panics.
func TestBuild_BadTarget(t *testing.T) {
	_, err := cfg.Build([]ir.Instr{jump(5), retVoid()})
	if err == nil {
		t.Error("Build accepted a jump past the method end")
	}
}

// TestBuild_FallsOffEnd checks that a method with no terminal return is
// rejected.
func TestBuild_FallsOffEnd(t *testing.T) {
	_, err := cfg.Build([]ir.Instr{opaque("neg", 0)})
	if err == nil {
		t.Error("Build accepted a method that falls off the end")
	}
	_, err = cfg.Build([]ir.Instr{condBranch(ir.TestEqz, 0, 0)})
	if err == nil {
		t.Error("Build accepted a trailing conditional branch")
	}
}

// TestLinearize_FallthroughElision checks that a goto edge to the next
// block in layout emits no instruction, while a goto edge over a gap does.
func TestLinearize_FallthroughElision(t *testing.T) {
	// 0: if-eqz v0 -> 3
	// 1: neg v0
	// 2: goto 4
	// 3: neg v1
	// 4: return
	g := mustBuild(t, []ir.Instr{
		condBranch(ir.TestEqz, 0, 3),
		opaque("neg", 0),
		jump(4),
		opaque("neg", 1),
		retVoid(),
	})

	out := g.Linearize()
	var gotos int
	for _, in := range out {
		if in.Kind == ir.InstrGoto {
			gotos++
		}
	}
	// bb1 jumps over bb2 to the return block: one explicit goto. bb0's
	// fallthrough and bb2's fallthrough need none.
	if gotos != 1 {
		t.Errorf("linearized with %d gotos, want 1", gotos)
	}
}

// TestLinearize_RoundTrip checks that building and linearizing an already
// well-laid-out method reproduces it.
func TestLinearize_RoundTrip(t *testing.T) {
	insns := []ir.Instr{
		condBranch(ir.TestEqz, 0, 3),
		move(1, 0),
		ret(1),
		opaque("neg", 0),
		ret(0),
	}
	g := mustBuild(t, insns)
	out := g.Linearize()

	if len(out) != len(insns) {
		t.Fatalf("round trip changed length: %d -> %d", len(insns), len(out))
	}
	for i := range insns {
		if out[i].Kind != insns[i].Kind {
			t.Errorf("instruction %d kind changed: %v -> %v", i, insns[i].Kind, out[i].Kind)
		}
	}
	if out[0].CondBranch.Target != 3 {
		t.Errorf("branch target = %d, want 3", out[0].CondBranch.Target)
	}
}

// TestSetEdgeTarget_UpdatesPreds checks retargeting moves the edge across
// pred lists without touching layout order.
func TestSetEdgeTarget_UpdatesPreds(t *testing.T) {
	g := mustBuild(t, []ir.Instr{
		condBranch(ir.TestEqz, 0, 3),
		opaque("neg", 0),
		ret(0),
		ret(0),
	})
	orderBefore := g.Order()

	be, _ := g.SuccEdge(0, cfg.EdgeBranch)
	oldTo := g.EdgeDst(be) // bb2
	g.SetEdgeTarget(be, 1)

	if g.EdgeDst(be) != 1 {
		t.Errorf("EdgeDst = bb%d, want bb1", g.EdgeDst(be))
	}
	if g.NumPreds(oldTo) != 0 {
		t.Errorf("old target still has %d preds", g.NumPreds(oldTo))
	}
	if g.NumPreds(1) != 2 {
		t.Errorf("new target has %d preds, want 2", g.NumPreds(1))
	}

	orderAfter := g.Order()
	for i := range orderBefore {
		if orderBefore[i] != orderAfter[i] {
			t.Fatal("retargeting changed the layout order")
		}
	}
}

// TestDeleteEdge_Unlinks checks that a deleted edge disappears from both
// endpoints and stays deleted on a second call.
func TestDeleteEdge_Unlinks(t *testing.T) {
	g := mustBuild(t, []ir.Instr{
		opaque("neg", 0),
		jump(2),
		retVoid(),
	})

	ge, _ := g.SuccEdge(0, cfg.EdgeGoto)
	g.DeleteEdge(ge)
	g.DeleteEdge(ge) // repeat delete is a no-op

	if _, ok := g.SuccEdge(0, cfg.EdgeGoto); ok {
		t.Error("deleted edge still reachable from its source")
	}
	if g.NumPreds(1) != 0 {
		t.Errorf("deleted edge still counted: %d preds", g.NumPreds(1))
	}
	if err := g.Validate(); err != nil {
		t.Errorf("graph invalid after edge deletion: %v", err)
	}
}

// TestBuild_Empty checks the zero-instruction method.
func TestBuild_Empty(t *testing.T) {
	g := mustBuild(t, nil)
	if g.NumBlocks() != 0 {
		t.Errorf("NumBlocks = %d, want 0", g.NumBlocks())
	}
	if out := g.Linearize(); len(out) != 0 {
		t.Errorf("Linearize of empty graph returned %d instructions", len(out))
	}
}
