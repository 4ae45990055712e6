// Package patterngen generates random syntax trees and inputs for
// property tests.
package patterngen

import (
	"math/rand"

	"github.com/coregx/regvm/syntax"
)

// runes is the alphabet drawn from. A small alphabet keeps random inputs
// likely to match; the metacharacter and the multi-byte rune exercise
// escaping and decoding.
var runes = []rune{'a', 'a', 'b', 'b', 'c', '(', 'é'}

// Rune returns a random code point from the alphabet.
func Rune(rng *rand.Rand) rune {
	return runes[rng.Intn(len(runes))]
}

// Node returns a random well-formed tree no deeper than depth.
func Node(rng *rand.Rand, depth int) *syntax.Node {
	if depth <= 0 {
		return syntax.Char(Rune(rng))
	}
	switch rng.Intn(9) {
	case 0, 1:
		return syntax.Char(Rune(rng))
	case 8:
		// Empty group.
		return syntax.Seq()
	case 2:
		return syntax.Plus(Node(rng, depth-1))
	case 3:
		return syntax.Star(Node(rng, depth-1))
	case 4:
		return syntax.Question(Node(rng, depth-1))
	case 5:
		return syntax.Or(operand(rng, depth-1), operand(rng, depth-1))
	default:
		n := 2 + rng.Intn(3)
		sub := make([]*syntax.Node, n)
		for i := range sub {
			sub[i] = Node(rng, depth-1)
		}
		return syntax.Seq(sub...)
	}
}

// operand returns a random tree that can stand on either side of '|',
// which rules out the empty group.
func operand(rng *rand.Rand, depth int) *syntax.Node {
	for {
		if n := Node(rng, depth); !n.IsEmpty() {
			return n
		}
	}
}

// Input returns a random string of at most maxLen code points.
func Input(rng *rand.Rand, maxLen int) string {
	n := rng.Intn(maxLen + 1)
	buf := make([]rune, n)
	for i := range buf {
		buf[i] = Rune(rng)
	}
	return string(buf)
}
