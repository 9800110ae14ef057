package program

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"bopt/internal/ir"
)

// WriteText writes a human-readable assembly listing of a program. The
// output round-trips through ParseText.
func WriteText(w io.Writer, p *Program) error {
	for ci := range p.Classes {
		c := &p.Classes[ci]
		if _, err := fmt.Fprintf(w, "class %s\n", c.Name); err != nil {
			return err
		}
		for mi := range c.Methods {
			m := &c.Methods[mi]
			if _, err := fmt.Fprintf(w, "method %s %d\n", m.Name, m.Registers); err != nil {
				return err
			}

			// Label every instruction index some jump targets.
			targets := make(map[int32]bool)
			for i := range m.Insns {
				switch m.Insns[i].Kind {
				case ir.InstrGoto:
					targets[m.Insns[i].Goto.Target] = true
				case ir.InstrCondBranch:
					targets[m.Insns[i].CondBranch.Target] = true
				}
			}

			for i := range m.Insns {
				idx, err := safecast.Conv[int32](i)
				if err != nil {
					return fmt.Errorf("method %s: instruction index overflow: %w", m.Name, err)
				}
				if targets[idx] {
					if _, err := fmt.Fprintf(w, "L%d:\n", idx); err != nil {
						return err
					}
				}
				if _, err := fmt.Fprintf(w, "  %s\n", formatInstr(&m.Insns[i])); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w, "end"); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatInstr(in *ir.Instr) string {
	switch in.Kind {
	case ir.InstrCondBranch:
		cb := &in.CondBranch
		if cb.Test.CompareToZero() {
			return fmt.Sprintf("if-%s v%d, L%d", cb.Test, cb.A, cb.Target)
		}
		return fmt.Sprintf("if-%s v%d, v%d, L%d", cb.Test, cb.A, cb.B, cb.Target)
	case ir.InstrGoto:
		return fmt.Sprintf("goto L%d", in.Goto.Target)
	case ir.InstrReturn:
		r := &in.Return
		if !r.HasValue {
			return "return"
		}
		if r.Wide {
			return fmt.Sprintf("return-wide v%d", r.Src)
		}
		return fmt.Sprintf("return v%d", r.Src)
	case ir.InstrMove:
		mv := &in.Move
		if mv.Wide {
			return fmt.Sprintf("move-wide v%d, v%d", mv.Dst, mv.Src)
		}
		return fmt.Sprintf("move v%d, v%d", mv.Dst, mv.Src)
	case ir.InstrOther:
		if len(in.Other.Regs) == 0 {
			return in.Other.Name
		}
		args := make([]string, len(in.Other.Regs))
		for i, r := range in.Other.Regs {
			args[i] = fmt.Sprintf("v%d", r)
		}
		return in.Other.Name + " " + strings.Join(args, ", ")
	default:
		return fmt.Sprintf("<unknown kind %d>", in.Kind)
	}
}

// ParseText parses the assembly listing format produced by WriteText.
// Grammar, line oriented:
//
//	class <name>
//	method <name> <registers>
//	L<label>:
//	  <mnemonic> [operands]
//	end
//
// '#' starts a comment. Labels name the next instruction and are resolved
// to instruction indices once the enclosing method ends.
func ParseText(r io.Reader) (*Program, error) {
	p := &Program{}
	var cls *Class

	var m *Method
	labels := map[string]int32{}
	type fixup struct {
		insn  int
		label string
		line  int
	}
	var fixups []fixup

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
		switch {
		case fields[0] == "class":
			if m != nil {
				return nil, fmt.Errorf("line %d: class inside method", lineNo)
			}
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: class wants a name", lineNo)
			}
			p.Classes = append(p.Classes, Class{Name: fields[1]})
			cls = &p.Classes[len(p.Classes)-1]

		case fields[0] == "method":
			if cls == nil {
				return nil, fmt.Errorf("line %d: method outside class", lineNo)
			}
			if m != nil {
				return nil, fmt.Errorf("line %d: method inside method", lineNo)
			}
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: method wants a name and a register count", lineNo)
			}
			regs, err := strconv.ParseUint(fields[2], 10, 16)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad register count %q", lineNo, fields[2])
			}
			m = &Method{Name: fields[1], Registers: uint16(regs)}

		case fields[0] == "end":
			if m == nil {
				return nil, fmt.Errorf("line %d: end outside method", lineNo)
			}
			for _, fx := range fixups {
				idx, ok := labels[fx.label]
				if !ok {
					return nil, fmt.Errorf("line %d: undefined label %s", fx.line, fx.label)
				}
				switch m.Insns[fx.insn].Kind {
				case ir.InstrGoto:
					m.Insns[fx.insn].Goto.Target = idx
				case ir.InstrCondBranch:
					m.Insns[fx.insn].CondBranch.Target = idx
				}
			}
			cls.Methods = append(cls.Methods, *m)
			m = nil
			labels = map[string]int32{}
			fixups = nil

		case strings.HasSuffix(fields[0], ":") && len(fields) == 1:
			if m == nil {
				return nil, fmt.Errorf("line %d: label outside method", lineNo)
			}
			name := strings.TrimSuffix(fields[0], ":")
			if _, dup := labels[name]; dup {
				return nil, fmt.Errorf("line %d: duplicate label %s", lineNo, name)
			}
			idx, err := safecast.Conv[int32](len(m.Insns))
			if err != nil {
				return nil, fmt.Errorf("line %d: instruction index overflow: %w", lineNo, err)
			}
			labels[name] = idx

		default:
			if m == nil {
				return nil, fmt.Errorf("line %d: instruction outside method", lineNo)
			}
			in, label, err := parseInstr(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if label != "" {
				fixups = append(fixups, fixup{insn: len(m.Insns), label: label, line: lineNo})
			}
			m.Insns = append(m.Insns, in)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if m != nil {
		return nil, fmt.Errorf("method %s missing end", m.Name)
	}
	return p, nil
}

func parseInstr(fields []string) (ir.Instr, string, error) {
	mnem, args := fields[0], fields[1:]
	switch {
	case strings.HasPrefix(mnem, "if-"):
		test, ok := ir.ParseTestKind(strings.TrimPrefix(mnem, "if-"))
		if !ok {
			return ir.Instr{}, "", fmt.Errorf("unknown test %q", mnem)
		}
		in := ir.Instr{Kind: ir.InstrCondBranch}
		in.CondBranch.Test = test
		want := 3
		if test.CompareToZero() {
			want = 2
		}
		if len(args) != want {
			return ir.Instr{}, "", fmt.Errorf("%s wants %d operands, got %d", mnem, want, len(args))
		}
		a, err := parseReg(args[0])
		if err != nil {
			return ir.Instr{}, "", err
		}
		in.CondBranch.A = a
		if !test.CompareToZero() {
			b, err := parseReg(args[1])
			if err != nil {
				return ir.Instr{}, "", err
			}
			in.CondBranch.B = b
		}
		return in, args[len(args)-1], nil

	case mnem == "goto":
		if len(args) != 1 {
			return ir.Instr{}, "", fmt.Errorf("goto wants a label")
		}
		return ir.Instr{Kind: ir.InstrGoto}, args[0], nil

	case mnem == "return" || mnem == "return-wide":
		in := ir.Instr{Kind: ir.InstrReturn}
		switch len(args) {
		case 0:
			if mnem == "return-wide" {
				return ir.Instr{}, "", fmt.Errorf("return-wide wants a register")
			}
		case 1:
			src, err := parseReg(args[0])
			if err != nil {
				return ir.Instr{}, "", err
			}
			in.Return.HasValue = true
			in.Return.Src = src
			in.Return.Wide = mnem == "return-wide"
		default:
			return ir.Instr{}, "", fmt.Errorf("%s wants at most one register", mnem)
		}
		return in, "", nil

	case mnem == "move" || mnem == "move-wide":
		if len(args) != 2 {
			return ir.Instr{}, "", fmt.Errorf("%s wants two registers", mnem)
		}
		dst, err := parseReg(args[0])
		if err != nil {
			return ir.Instr{}, "", err
		}
		src, err := parseReg(args[1])
		if err != nil {
			return ir.Instr{}, "", err
		}
		in := ir.Instr{Kind: ir.InstrMove}
		in.Move.Dst = dst
		in.Move.Src = src
		in.Move.Wide = mnem == "move-wide"
		return in, "", nil

	default:
		in := ir.Instr{Kind: ir.InstrOther}
		in.Other.Name = mnem
		for _, a := range args {
			r, err := parseReg(a)
			if err != nil {
				return ir.Instr{}, "", err
			}
			in.Other.Regs = append(in.Other.Regs, r)
		}
		return in, "", nil
	}
}

func parseReg(s string) (ir.Reg, error) {
	if !strings.HasPrefix(s, "v") {
		return 0, fmt.Errorf("bad register %q", s)
	}
	n, err := strconv.ParseUint(s[1:], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("bad register %q", s)
	}
	return ir.Reg(n), nil
}
