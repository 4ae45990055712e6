package nfa

import (
	"errors"
	"fmt"
)

// Code generation errors.
var (
	// ErrPCOverflow indicates the program counter left the address space,
	// either while emitting a program or while stepping through one.
	ErrPCOverflow = errors.New("program counter overflow")

	// ErrTooComplex indicates the syntax tree is nested deeper than the
	// compiler's recursion limit.
	ErrTooComplex = errors.New("pattern too complex")

	// ErrFailPlus, ErrFailStar, ErrFailQuestion and ErrFailOr indicate that a
	// placeholder slot did not hold the instruction the compiler emitted
	// there. They signal a compiler defect, never a property of the pattern.
	ErrFailPlus     = errors.New("backpatch failed for plus")
	ErrFailStar     = errors.New("backpatch failed for star")
	ErrFailQuestion = errors.New("backpatch failed for question")
	ErrFailOr       = errors.New("backpatch failed for or")
)

// Evaluation errors.
var (
	// ErrInvalidPC indicates an instruction address outside the program.
	ErrInvalidPC = errors.New("invalid instruction address")

	// ErrStackExhausted indicates the backtracker's work-stack hit its
	// frame limit.
	ErrStackExhausted = errors.New("backtrack stack exhausted")

	// ErrVisitedLimit indicates the input is too long for the backtracker's
	// visited set. PikeVM has no such limit.
	ErrVisitedLimit = errors.New("input too large for backtracker")

	// ErrInvalidProgram is returned by Program.Validate.
	ErrInvalidProgram = errors.New("invalid program")
)

// PCError reports an evaluation failure at a specific address.
type PCError struct {
	PC  Addr
	Err error
}

// Error implements the error interface
func (e *PCError) Error() string {
	return fmt.Sprintf("%v at %04d", e.Err, e.PC)
}

// Unwrap returns the underlying error
func (e *PCError) Unwrap() error {
	return e.Err
}
