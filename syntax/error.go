package syntax

import (
	"fmt"
)

// ErrorCode describes a failure to parse a pattern.
//
// ErrorCode values are also errors, so callers can test for a kind with
// errors.Is(err, syntax.ErrNoOperand) regardless of position.
type ErrorCode string

const (
	// ErrInvalidEscape reports a backslash followed by a character that is
	// not a metacharacter.
	ErrInvalidEscape ErrorCode = "invalid escape sequence"

	// ErrInvalidRightParen reports a ')' with no open group. Only returned
	// when parsing with Strict; the default parser ignores such parens.
	ErrInvalidRightParen ErrorCode = "invalid right parenthesis"

	// ErrNoOperand reports a quantifier or '|' without an operand.
	ErrNoOperand ErrorCode = "no operand expression"

	// ErrNoRightParen reports a group left open at the end of the pattern.
	ErrNoRightParen ErrorCode = "no right parenthesis"

	// ErrEmpty reports a pattern that reduces to nothing.
	ErrEmpty ErrorCode = "empty expression"

	// ErrMissingEscape reports a backslash at the end of the pattern.
	ErrMissingEscape ErrorCode = "trailing backslash at end of expression"

	// ErrInvalidUTF8 reports a pattern byte that does not begin a valid
	// UTF-8 sequence.
	ErrInvalidUTF8 ErrorCode = "invalid UTF-8"
)

// Error implements the error interface.
func (e ErrorCode) Error() string {
	return string(e)
}

// String returns the description of the code.
func (e ErrorCode) String() string {
	return string(e)
}

// Error describes a failure to parse a pattern and where it happened.
type Error struct {
	Code ErrorCode
	Expr string // the pattern being parsed
	Pos  int    // code point offset into Expr, -1 when the error has no position
	Char rune   // offending character for ErrInvalidEscape
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Code == ErrInvalidEscape:
		return fmt.Sprintf("syntax: %s: pos = %d, char = %q", e.Code, e.Pos, e.Char)
	case e.Pos >= 0:
		return fmt.Sprintf("syntax: %s: pos = %d", e.Code, e.Pos)
	default:
		return "syntax: " + e.Code.String()
	}
}

// Unwrap returns the error code so errors.Is matches on kind.
func (e *Error) Unwrap() error {
	return e.Code
}
