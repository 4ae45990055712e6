package syntax

import "unicode/utf8"

// Flags control optional parser behavior.
type Flags uint8

const (
	// Strict rejects a ')' that closes no group with ErrInvalidRightParen.
	// Without it such a paren is ignored.
	Strict Flags = 1 << iota
)

// Parse parses pattern and returns its syntax tree.
//
// The pattern must be valid UTF-8; an invalid byte is reported as
// ErrInvalidUTF8 at its code point offset. An encoded U+FFFD is an
// ordinary literal.
//
// Example:
//
//	node, err := syntax.Parse("a|b|c")
//	// node.Dump() == "Or(Or(Char('a'),Char('b')),Char('c'))"
func Parse(pattern string) (*Node, error) {
	return ParseWithFlags(pattern, 0)
}

// ParseWithFlags is like Parse but applies flags.
func ParseWithFlags(pattern string, flags Flags) (*Node, error) {
	p := &parser{expr: pattern, flags: flags}
	return p.parse()
}

// frame is the parser state saved by '(' and restored by ')'.
type frame struct {
	seq []*Node
	alt *Node
}

// parser is a single forward pass over the code points of a pattern.
type parser struct {
	expr  string
	flags Flags

	// seq holds the completed nodes of the sequence being built.
	seq []*Node

	// alt is the left operand waiting for the right side of a '|'.
	alt *Node

	// stack holds one frame per unclosed '('.
	stack []frame

	// escape is set after a '\' until the next code point.
	escape bool
}

func (p *parser) parse() (*Node, error) {
	pos := 0
	for i, c := range p.expr {
		if c == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(p.expr[i:]); size == 1 {
				return nil, p.error(ErrInvalidUTF8, pos)
			}
		}
		if err := p.step(pos, c); err != nil {
			return nil, err
		}
		pos++
	}

	if p.escape {
		return nil, p.error(ErrMissingEscape, pos)
	}
	if len(p.stack) > 0 {
		return nil, p.error(ErrNoRightParen, -1)
	}
	if err := p.closeAlternation(pos); err != nil {
		return nil, err
	}

	switch len(p.seq) {
	case 0:
		return nil, p.error(ErrEmpty, -1)
	case 1:
		return p.seq[0], nil
	default:
		return Seq(p.seq...), nil
	}
}

func (p *parser) step(pos int, c rune) error {
	if p.escape {
		p.escape = false
		if !isMeta(c) {
			return &Error{Code: ErrInvalidEscape, Expr: p.expr, Pos: pos, Char: c}
		}
		p.seq = append(p.seq, Char(c))
		return nil
	}

	switch c {
	case '+', '*', '?':
		return p.quantify(pos, c)
	case '(':
		p.stack = append(p.stack, frame{seq: p.seq, alt: p.alt})
		p.seq, p.alt = nil, nil
	case ')':
		return p.closeGroup(pos)
	case '|':
		return p.alternate(pos)
	case '\\':
		p.escape = true
	default:
		p.seq = append(p.seq, Char(c))
	}
	return nil
}

// quantify wraps the last completed node.
func (p *parser) quantify(pos int, c rune) error {
	if len(p.seq) == 0 {
		return p.error(ErrNoOperand, pos)
	}
	last := len(p.seq) - 1
	switch c {
	case '+':
		p.seq[last] = Plus(p.seq[last])
	case '*':
		p.seq[last] = Star(p.seq[last])
	default:
		p.seq[last] = Question(p.seq[last])
	}
	return nil
}

// alternate ends the current operand of a '|'.
func (p *parser) alternate(pos int) error {
	operand, err := p.operand(pos)
	if err != nil {
		return err
	}
	if p.alt == nil {
		p.alt = operand
	} else {
		p.alt = Or(p.alt, operand)
	}
	p.seq = nil
	return nil
}

// closeAlternation joins a waiting left operand with the pending sequence.
func (p *parser) closeAlternation(pos int) error {
	if p.alt == nil {
		return nil
	}
	right, err := p.operand(pos)
	if err != nil {
		return err
	}
	p.seq = []*Node{Or(p.alt, right)}
	p.alt = nil
	return nil
}

func (p *parser) closeGroup(pos int) error {
	if len(p.stack) == 0 {
		if p.flags&Strict != 0 {
			return p.error(ErrInvalidRightParen, pos)
		}
		return nil
	}
	if err := p.closeAlternation(pos); err != nil {
		return err
	}

	var group *Node
	if len(p.seq) == 1 {
		group = p.seq[0]
	} else {
		// An empty group stays an empty sequence and matches the empty string.
		group = Seq(p.seq...)
	}

	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	p.seq = append(top.seq, group)
	p.alt = top.alt
	return nil
}

// operand collapses the pending sequence into a single alternation operand.
func (p *parser) operand(pos int) (*Node, error) {
	switch len(p.seq) {
	case 0:
		return nil, p.error(ErrNoOperand, pos)
	case 1:
		if p.seq[0].IsEmpty() {
			return nil, p.error(ErrNoOperand, pos)
		}
		return p.seq[0], nil
	default:
		return Seq(p.seq...), nil
	}
}

func (p *parser) error(code ErrorCode, pos int) *Error {
	return &Error{Code: code, Expr: p.expr, Pos: pos}
}

// isMeta reports whether c must be escaped to be matched literally.
func isMeta(c rune) bool {
	switch c {
	case '\\', '(', ')', '|', '+', '*', '?':
		return true
	}
	return false
}
