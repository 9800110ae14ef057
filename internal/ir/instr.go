// Package ir defines the register-based instruction model the optimizer
// operates on. Instructions are a tagged union: only branches, gotos,
// returns and moves are semantically inspected; everything else travels
// through the pass as an opaque payload.
package ir

// Reg identifies a virtual register in a method frame.
type Reg uint16

// InstrKind enumerates instruction kinds.
type InstrKind uint8

const (
	// InstrCondBranch is a conditional branch on a register test.
	InstrCondBranch InstrKind = iota
	// InstrGoto is an unconditional jump. It only exists in linear form;
	// the CFG absorbs it into a goto edge.
	InstrGoto
	// InstrReturn returns from the method, optionally carrying a value.
	InstrReturn
	// InstrMove copies one register into another.
	InstrMove
	// InstrOther is any instruction the optimizer does not inspect.
	InstrOther
)

// Instr is a single instruction. Kind selects which payload field is live.
type Instr struct {
	Kind InstrKind

	CondBranch CondBranchInstr
	Goto       GotoInstr
	Return     ReturnInstr
	Move       MoveInstr
	Other      OtherInstr
}

// CondBranchInstr branches to Target when the test holds, otherwise falls
// through. Target is a linear instruction index and is meaningful only in
// linear form; in CFG form the taken path lives on the branch edge.
type CondBranchInstr struct {
	Test   TestKind
	A      Reg
	B      Reg // unused for compare-to-zero tests
	Target int32
}

// GotoInstr jumps unconditionally to a linear instruction index.
type GotoInstr struct {
	Target int32
}

// ReturnInstr ends the method. When HasValue is set it reads Src; Wide
// marks a two-register value.
type ReturnInstr struct {
	HasValue bool
	Src      Reg
	Wide     bool
}

// MoveInstr copies Src into Dst; Wide marks a two-register value.
type MoveInstr struct {
	Dst  Reg
	Src  Reg
	Wide bool
}

// OtherInstr is an opaque instruction: a mnemonic plus the registers it
// touches. The optimizer copies it verbatim.
type OtherInstr struct {
	Name string
	Regs []Reg
}

// Clone returns a fully independent copy of the instruction. The copy
// shares no mutable state with the original, so rewriting its operands is
// safe.
func (in Instr) Clone() Instr {
	out := in
	if in.Kind == InstrOther && in.Other.Regs != nil {
		out.Other.Regs = append([]Reg(nil), in.Other.Regs...)
	}
	return out
}
