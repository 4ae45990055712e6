// Package syntax parses regular expression patterns into syntax trees.
//
// The accepted language is deliberately small: literal code points,
// concatenation, grouping with parentheses, alternation with '|', the
// quantifiers '+', '*' and '?', and backslash escapes for the metacharacters
// themselves. Trees produced here are consumed by the nfa compiler.
package syntax

import (
	"strconv"
	"strings"
)

// Op identifies the kind of a syntax tree node.
type Op uint8

const (
	// OpChar matches exactly one code point equal to Node.Rune.
	OpChar Op = iota + 1

	// OpPlus matches one or more repetitions of Sub[0].
	OpPlus

	// OpStar matches zero or more repetitions of Sub[0].
	OpStar

	// OpQuestion matches zero or one occurrence of Sub[0].
	OpQuestion

	// OpOr matches Sub[0] or Sub[1], preferring Sub[0].
	OpOr

	// OpSeq matches Sub in order.
	OpSeq
)

// String returns the name of the operator.
func (op Op) String() string {
	switch op {
	case OpChar:
		return "Char"
	case OpPlus:
		return "Plus"
	case OpStar:
		return "Star"
	case OpQuestion:
		return "Question"
	case OpOr:
		return "Or"
	case OpSeq:
		return "Seq"
	default:
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
}

// Node is a node in a parsed pattern. Every node is owned by exactly one
// parent; trees are never shared or cyclic.
type Node struct {
	Op   Op
	Rune rune    // OpChar only
	Sub  []*Node // children; see the Op constants for arity
}

// Char returns a node matching r.
func Char(r rune) *Node {
	return &Node{Op: OpChar, Rune: r}
}

// Plus returns a node matching one or more of sub.
func Plus(sub *Node) *Node {
	return &Node{Op: OpPlus, Sub: []*Node{sub}}
}

// Star returns a node matching zero or more of sub.
func Star(sub *Node) *Node {
	return &Node{Op: OpStar, Sub: []*Node{sub}}
}

// Question returns a node matching zero or one of sub.
func Question(sub *Node) *Node {
	return &Node{Op: OpQuestion, Sub: []*Node{sub}}
}

// Or returns a node matching left or right.
func Or(left, right *Node) *Node {
	return &Node{Op: OpOr, Sub: []*Node{left, right}}
}

// Seq returns a node matching nodes in order.
func Seq(nodes ...*Node) *Node {
	return &Node{Op: OpSeq, Sub: nodes}
}

// Equal reports whether n and other are structurally identical.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Op != other.Op || len(n.Sub) != len(other.Sub) {
		return false
	}
	if n.Op == OpChar && n.Rune != other.Rune {
		return false
	}
	for i := range n.Sub {
		if !n.Sub[i].Equal(other.Sub[i]) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether n is a sequence with no children.
func (n *Node) IsEmpty() bool {
	return n.Op == OpSeq && len(n.Sub) == 0
}

// String returns a pattern for n. Parsing the result yields a tree equal
// to n.
func (n *Node) String() string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

// Dump returns the tree in constructor notation, e.g. Or(Char('a'),Char('b')).
func (n *Node) Dump() string {
	var b strings.Builder
	dumpNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	switch n.Op {
	case OpChar:
		if isMeta(n.Rune) {
			b.WriteByte('\\')
		}
		b.WriteRune(n.Rune)
	case OpPlus, OpStar, OpQuestion:
		sub := n.Sub[0]
		if sub.Op == OpChar {
			writeNode(b, sub)
		} else {
			writeGroup(b, sub)
		}
		switch n.Op {
		case OpPlus:
			b.WriteByte('+')
		case OpStar:
			b.WriteByte('*')
		default:
			b.WriteByte('?')
		}
	case OpOr:
		// Alternation is left associative, so only a right operand that is
		// itself an alternation needs a group.
		writeNode(b, n.Sub[0])
		b.WriteByte('|')
		if n.Sub[1].Op == OpOr {
			writeGroup(b, n.Sub[1])
		} else {
			writeNode(b, n.Sub[1])
		}
	case OpSeq:
		if len(n.Sub) == 0 {
			b.WriteString("()")
			return
		}
		for _, sub := range n.Sub {
			if sub.Op == OpOr || sub.Op == OpSeq {
				writeGroup(b, sub)
			} else {
				writeNode(b, sub)
			}
		}
	}
}

func writeGroup(b *strings.Builder, n *Node) {
	if n.IsEmpty() {
		b.WriteString("()")
		return
	}
	b.WriteByte('(')
	writeNode(b, n)
	b.WriteByte(')')
}

func dumpNode(b *strings.Builder, n *Node) {
	b.WriteString(n.Op.String())
	b.WriteByte('(')
	if n.Op == OpChar {
		b.WriteByte('\'')
		b.WriteRune(n.Rune)
		b.WriteByte('\'')
	}
	for i, sub := range n.Sub {
		if i > 0 {
			b.WriteByte(',')
		}
		dumpNode(b, sub)
	}
	b.WriteByte(')')
}
