package meta

import "fmt"

// Stage names the pipeline step that failed.
type Stage string

const (
	// StageParse reports a malformed pattern. The wrapped error is a
	// *syntax.Error.
	StageParse Stage = "parse"

	// StageGenerate reports a failure to emit the program, such as
	// nfa.ErrPCOverflow or nfa.ErrTooComplex.
	StageGenerate Stage = "generate"

	// StageEvaluate reports a failure while running the program, such as
	// nfa.ErrStackExhausted or nfa.ErrInvalidPC.
	StageEvaluate Stage = "evaluate"
)

// Error reports a failure tagged with the stage that produced it.
// errors.Is and errors.As see through it to the stage's own error.
type Error struct {
	Stage   Stage
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("regvm: %s %q: %v", e.Stage, e.Pattern, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
