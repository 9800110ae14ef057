package ir_test

import (
	"testing"

	"bopt/internal/ir"
)

// TestClone_Independent checks that a clone shares no mutable state with
// the original: rewriting clone operands must not leak back.
func TestClone_Independent(t *testing.T) {
	orig := ir.Instr{Kind: ir.InstrReturn}
	orig.Return = ir.ReturnInstr{HasValue: true, Src: 1}

	clone := orig.Clone()
	clone.Return.Src = 7

	if orig.Return.Src != 1 {
		t.Errorf("rewriting the clone changed the original: Src = %d", orig.Return.Src)
	}
}

// TestClone_OpaqueRegs checks that the register list of an opaque
// instruction is deep-copied.
func TestClone_OpaqueRegs(t *testing.T) {
	orig := ir.Instr{Kind: ir.InstrOther}
	orig.Other = ir.OtherInstr{Name: "add", Regs: []ir.Reg{0, 1, 2}}

	clone := orig.Clone()
	clone.Other.Regs[0] = 9

	if orig.Other.Regs[0] != 0 {
		t.Errorf("clone shares its register slice with the original")
	}
}
