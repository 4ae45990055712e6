package nfa

import (
	"fmt"

	"github.com/coregx/regvm/internal/conv"
	"github.com/coregx/regvm/syntax"
)

// CompilerConfig configures code generation.
type CompilerConfig struct {
	// MaxInsts caps the length of the generated program. Emitting past it
	// fails with ErrPCOverflow. Zero means the whole address space.
	MaxInsts int

	// MaxRecursionDepth limits how deeply nested a syntax tree may be.
	// Default: 1000
	MaxRecursionDepth int
}

// DefaultCompilerConfig returns a compiler configuration with sensible defaults
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		MaxInsts:          0,
		MaxRecursionDepth: 1000,
	}
}

// placeholder marks a forward target that has not been patched yet.
const placeholder = MaxAddr

// Compiler turns syntax trees into programs. A Compiler may be reused but
// is not safe for concurrent use.
type Compiler struct {
	config CompilerConfig
	limit  uint64 // maximum program length

	// pc is the address the next instruction will get. Every emit is
	// paired with a checked incPC, so pc == len(insts) after each step.
	pc    Addr
	insts Program
	depth int
}

// NewCompiler creates a new compiler with the given configuration
func NewCompiler(config CompilerConfig) *Compiler {
	if config.MaxRecursionDepth <= 0 {
		config.MaxRecursionDepth = DefaultCompilerConfig().MaxRecursionDepth
	}
	limit := uint64(MaxAddr)
	if config.MaxInsts > 0 && uint64(config.MaxInsts) < limit {
		limit = uint64(config.MaxInsts)
	}
	return &Compiler{config: config, limit: limit}
}

// NewDefaultCompiler creates a new compiler with default configuration
func NewDefaultCompiler() *Compiler {
	return NewCompiler(DefaultCompilerConfig())
}

// Compile compiles node with the default configuration.
func Compile(node *syntax.Node) (Program, error) {
	return NewDefaultCompiler().Compile(node)
}

// Compile generates the program for node, terminated by a Match
// instruction.
//
// Example: "ab|c" compiles to
//
//	0000: split 0001 0004
//	0001: char a
//	0002: char b
//	0003: jump 0005
//	0004: char c
//	0005: match
func (c *Compiler) Compile(node *syntax.Node) (Program, error) {
	c.pc = 0
	c.insts = nil
	c.depth = 0

	if node == nil {
		return nil, fmt.Errorf("nfa: compile nil syntax tree")
	}
	if err := c.gen(node); err != nil {
		return nil, err
	}

	if err := c.incPC(); err != nil {
		return nil, err
	}
	c.emit(Inst{Op: OpMatch})

	prog := c.insts
	c.insts = nil
	return prog, nil
}

func (c *Compiler) emit(inst Inst) {
	c.insts = append(c.insts, inst)
}

// incPC advances the program counter, failing once the program would no
// longer fit the address width or the configured limit.
func (c *Compiler) incPC() error {
	next, ok := conv.AddUint32(uint32(c.pc), 1)
	if !ok || uint64(next) > c.limit {
		return ErrPCOverflow
	}
	c.pc = Addr(next)
	return nil
}

func (c *Compiler) gen(n *syntax.Node) error {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.config.MaxRecursionDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrTooComplex, c.config.MaxRecursionDepth)
	}

	switch n.Op {
	case syntax.OpChar:
		return c.genChar(n.Rune)
	case syntax.OpPlus:
		return c.genPlus(n.Sub[0])
	case syntax.OpStar:
		return c.genStar(n.Sub[0])
	case syntax.OpQuestion:
		return c.genQuestion(n.Sub[0])
	case syntax.OpOr:
		return c.genOr(n.Sub[0], n.Sub[1])
	case syntax.OpSeq:
		for _, sub := range n.Sub {
			if err := c.gen(sub); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("nfa: cannot compile %s node", n.Op)
	}
}

func (c *Compiler) genChar(r rune) error {
	c.emit(Inst{Op: OpChar, Rune: r})
	return c.incPC()
}

// genPlus emits
//
//	L1: e
//	    split L1, L2
//	L2:
func (c *Compiler) genPlus(e *syntax.Node) error {
	l1 := c.pc
	if err := c.gen(e); err != nil {
		return err
	}

	split := c.pc
	c.emit(Inst{Op: OpSplit, X: l1, Y: placeholder})
	if err := c.incPC(); err != nil {
		return err
	}

	return c.patchSplit(split, c.pc, ErrFailPlus)
}

// genStar emits
//
//	L0: split L1, L2
//	L1: e
//	    jump L0
//	L2:
func (c *Compiler) genStar(e *syntax.Node) error {
	split := c.pc
	if err := c.incPC(); err != nil {
		return err
	}
	l1 := c.pc
	c.emit(Inst{Op: OpSplit, X: l1, Y: placeholder})

	if err := c.gen(e); err != nil {
		return err
	}

	c.emit(Inst{Op: OpJump, X: split})
	if err := c.incPC(); err != nil {
		return err
	}

	return c.patchSplit(split, c.pc, ErrFailStar)
}

// genQuestion emits
//
//	    split L1, L2
//	L1: e
//	L2:
func (c *Compiler) genQuestion(e *syntax.Node) error {
	split := c.pc
	if err := c.incPC(); err != nil {
		return err
	}
	l1 := c.pc
	c.emit(Inst{Op: OpSplit, X: l1, Y: placeholder})

	if err := c.gen(e); err != nil {
		return err
	}

	return c.patchSplit(split, c.pc, ErrFailQuestion)
}

// genOr emits
//
//	    split L1, L2
//	L1: e1
//	    jump L3
//	L2: e2
//	L3:
func (c *Compiler) genOr(e1, e2 *syntax.Node) error {
	split := c.pc
	if err := c.incPC(); err != nil {
		return err
	}
	l1 := c.pc
	c.emit(Inst{Op: OpSplit, X: l1, Y: placeholder})

	if err := c.gen(e1); err != nil {
		return err
	}

	jump := c.pc
	c.emit(Inst{Op: OpJump, X: placeholder})
	if err := c.incPC(); err != nil {
		return err
	}

	if err := c.patchSplit(split, c.pc, ErrFailOr); err != nil {
		return err
	}

	if err := c.gen(e2); err != nil {
		return err
	}

	return c.patchJump(jump, c.pc, ErrFailOr)
}

// patchSplit sets the fallback target of the split at addr.
func (c *Compiler) patchSplit(addr, target Addr, fail error) error {
	if uint64(addr) >= uint64(len(c.insts)) || c.insts[addr].Op != OpSplit {
		return fail
	}
	c.insts[addr].Y = target
	return nil
}

// patchJump sets the target of the jump at addr.
func (c *Compiler) patchJump(addr, target Addr, fail error) error {
	if uint64(addr) >= uint64(len(c.insts)) || c.insts[addr].Op != OpJump {
		return fail
	}
	c.insts[addr].X = target
	return nil
}
