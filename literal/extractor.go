package literal

import (
	"unicode/utf8"

	"github.com/coregx/regvm/syntax"
)

// ExtractorConfig configures literal extraction limits.
//
// Example:
//
//	config := literal.ExtractorConfig{
//	    MaxLiterals:   64,
//	    MaxLiteralLen: 64,
//	}
//	extractor := literal.New(config)
type ExtractorConfig struct {
	// MaxLiterals limits the number of literals in a sequence. A
	// concatenation whose cross product would exceed it stops growing its
	// literals; an alternation that would exceed it gives up entirely.
	// Default: 64.
	MaxLiterals int

	// MaxLiteralLen limits the length of each literal in bytes. Longer
	// literals are truncated and become incomplete.
	// Default: 64.
	MaxLiteralLen int
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 64,
	}
}

// maxDepth guards against excessively nested trees.
const maxDepth = 100

// Extractor extracts prefix literals from syntax trees.
//
// Example:
//
//	re, _ := syntax.Parse("hello|world")
//	extractor := literal.New(literal.DefaultConfig())
//	prefixes := extractor.ExtractPrefixes(re)
//	// prefixes = ["hello", "world"], both complete
type Extractor struct {
	config ExtractorConfig
}

// New creates a new Extractor with the given configuration.
// Non-positive limits fall back to their defaults.
func New(config ExtractorConfig) *Extractor {
	def := DefaultConfig()
	if config.MaxLiterals <= 0 {
		config.MaxLiterals = def.MaxLiterals
	}
	if config.MaxLiteralLen <= 0 {
		config.MaxLiteralLen = def.MaxLiteralLen
	}
	return &Extractor{config: config}
}

// ExtractPrefixes returns a sequence covering every match of re: each match
// either equals a complete literal of the sequence or begins with an
// incomplete one.
//
// Examples:
//
//	"hello"       → ["hello"]                 (complete)
//	"foo|bar"     → ["foo", "bar"]            (complete)
//	"ab+c"        → ["ab"]                    (incomplete)
//	"a*b"         → ["a" incomplete, "b" complete]
//	"a?"          → ["a", ""]                 (empty literal: no constraint)
//
// The result is never empty. A sequence holding the empty literal means no
// useful prefix exists.
func (e *Extractor) ExtractPrefixes(re *syntax.Node) *Seq {
	if re == nil {
		return anything()
	}
	seq := e.prefixes(re, 0)
	seq.Truncate(e.config.MaxLiteralLen)
	return seq
}

// anything is the sequence that constrains nothing.
func anything() *Seq {
	return NewSeq(NewLiteral([]byte{}, false))
}

// empty is the sequence whose only match is the empty string.
func empty() *Seq {
	return NewSeq(NewLiteral([]byte{}, true))
}

func (e *Extractor) prefixes(re *syntax.Node, depth int) *Seq {
	if depth > maxDepth {
		return anything()
	}

	switch re.Op {
	case syntax.OpChar:
		return NewSeq(NewLiteral(utf8.AppendRune(nil, re.Rune), true))

	case syntax.OpSeq:
		// Cross product, left to right. Once no literal is complete,
		// later children cannot extend anything.
		acc := empty()
		for _, sub := range re.Sub {
			if !hasComplete(acc) {
				break
			}
			acc = e.concat(acc, e.prefixes(sub, depth+1))
		}
		return acc

	case syntax.OpOr:
		acc := e.prefixes(re.Sub[0], depth+1)
		for _, lit := range e.prefixes(re.Sub[1], depth+1).Literals() {
			acc.add(lit)
		}
		if acc.Len() > e.config.MaxLiterals {
			return anything()
		}
		return acc

	case syntax.OpQuestion:
		acc := e.prefixes(re.Sub[0], depth+1)
		acc.add(NewLiteral([]byte{}, true))
		return acc

	case syntax.OpStar:
		// Zero iterations give the empty match; one or more begin with a
		// match of the body followed by anything.
		acc := e.prefixes(re.Sub[0], depth+1)
		acc.MakeInexact()
		acc.add(NewLiteral([]byte{}, true))
		return acc

	case syntax.OpPlus:
		acc := e.prefixes(re.Sub[0], depth+1)
		acc.MakeInexact()
		return acc

	default:
		return anything()
	}
}

// concat returns the cross product of a and b. Incomplete literals of a
// are kept as they are. If the product would exceed MaxLiterals, a is
// returned with every literal made incomplete, which still covers the
// concatenation.
func (e *Extractor) concat(a, b *Seq) *Seq {
	size := 0
	for _, x := range a.literals {
		if x.Complete {
			size += b.Len()
		} else {
			size++
		}
	}
	if size > e.config.MaxLiterals {
		a.MakeInexact()
		return a
	}

	out := NewSeq()
	for _, x := range a.literals {
		if !x.Complete {
			out.add(x)
			continue
		}
		for _, y := range b.literals {
			joined := make([]byte, 0, len(x.Bytes)+len(y.Bytes))
			joined = append(joined, x.Bytes...)
			joined = append(joined, y.Bytes...)
			out.add(NewLiteral(joined, y.Complete))
		}
	}
	out.Truncate(e.config.MaxLiteralLen)
	return out
}

func hasComplete(s *Seq) bool {
	for _, lit := range s.Literals() {
		if lit.Complete {
			return true
		}
	}
	return false
}
