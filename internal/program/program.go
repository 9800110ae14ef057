// Package program holds the method containers the optimizer runs over and
// their on-disk representations: a msgpack container for pipelines and a
// text assembly for fixtures and inspection.
package program

import (
	"bopt/internal/ir"
)

// Program is a set of classes, each carrying its methods.
type Program struct {
	Classes []Class
}

// Class groups methods under a name.
type Class struct {
	Name    string
	Methods []Method
}

// Method is a named linear instruction sequence over a register frame.
type Method struct {
	Name      string
	Registers uint16
	Insns     []ir.Instr
}

// NumMethods returns the total method count across all classes.
func (p *Program) NumMethods() int {
	n := 0
	for i := range p.Classes {
		n += len(p.Classes[i].Methods)
	}
	return n
}
