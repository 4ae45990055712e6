// Package nfa compiles syntax trees into linear instruction programs and
// executes them.
//
// A Program is a slice of instructions whose indices are addresses. The
// compiler emits it by recursive descent, writing placeholder targets and
// patching them once the code they jump over has been emitted. Two
// evaluators interpret the same program:
//
//   - Backtracker explores Split branches depth-first, left branch first,
//     using an explicit work-stack and a visited set of (address, position)
//     pairs so its work is bounded by program length times input length.
//   - PikeVM advances every live address together, one code point at a
//     time, and never revisits a state for the same position.
//
// Both report the same result for every program and input.
package nfa

import (
	"fmt"
	"strings"
)

// Addr is an instruction address: an index into a Program.
// Its width bounds the length of a program.
type Addr uint32

// MaxAddr is the largest representable address.
const MaxAddr = Addr(^uint32(0))

// Op identifies the kind of an instruction.
type Op uint8

const (
	// OpChar consumes one code point equal to Inst.Rune.
	OpChar Op = iota

	// OpMatch accepts the input consumed so far.
	OpMatch

	// OpJump transfers control to Inst.X.
	OpJump

	// OpSplit tries Inst.X and, only if that fails, Inst.Y.
	OpSplit
)

// String returns a human-readable representation of the Op
func (op Op) String() string {
	switch op {
	case OpChar:
		return "char"
	case OpMatch:
		return "match"
	case OpJump:
		return "jump"
	case OpSplit:
		return "split"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Inst is a single instruction. The Op determines which fields are valid.
type Inst struct {
	Op   Op
	Rune rune // OpChar
	X    Addr // OpJump target, OpSplit preferred target
	Y    Addr // OpSplit fallback target
}

// String renders the instruction in assembler form, e.g. "split 0001 0003".
func (i Inst) String() string {
	switch i.Op {
	case OpChar:
		return fmt.Sprintf("char %c", i.Rune)
	case OpMatch:
		return "match"
	case OpJump:
		return fmt.Sprintf("jump %04d", i.X)
	case OpSplit:
		return fmt.Sprintf("split %04d %04d", i.X, i.Y)
	default:
		return i.Op.String()
	}
}

// Program is a compiled pattern. Programs produced by Compile satisfy:
// every Jump and Split target is an index into the same program, and the
// last instruction is Match.
type Program []Inst

// Len returns the number of instructions.
func (p Program) Len() int {
	return len(p)
}

// At returns the instruction at addr, or false if addr is out of range.
func (p Program) At(addr Addr) (Inst, bool) {
	if uint64(addr) >= uint64(len(p)) {
		return Inst{}, false
	}
	return p[addr], true
}

// Validate checks the program invariants established by the compiler.
// Evaluators do not call it; it exists for tests and tools inspecting
// hand-built programs.
func (p Program) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty program", ErrInvalidProgram)
	}
	if p[len(p)-1].Op != OpMatch {
		return fmt.Errorf("%w: last instruction is %s, not match", ErrInvalidProgram, p[len(p)-1])
	}
	for i, inst := range p {
		switch inst.Op {
		case OpChar, OpMatch:
		case OpJump:
			if _, ok := p.At(inst.X); !ok {
				return fmt.Errorf("%w: %04d: %s targets missing address", ErrInvalidProgram, i, inst)
			}
		case OpSplit:
			_, okX := p.At(inst.X)
			_, okY := p.At(inst.Y)
			if !okX || !okY {
				return fmt.Errorf("%w: %04d: %s targets missing address", ErrInvalidProgram, i, inst)
			}
		default:
			return fmt.Errorf("%w: %04d: unknown op %s", ErrInvalidProgram, i, inst.Op)
		}
	}
	return nil
}

// String returns an address-annotated listing of the program, one
// instruction per line.
func (p Program) String() string {
	var b strings.Builder
	for i, inst := range p {
		fmt.Fprintf(&b, "%04d: %s\n", i, inst)
	}
	return b.String()
}
