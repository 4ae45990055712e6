// Package prefilter provides fast candidate filtering for unanchored search
// using extracted prefix literals.
//
// Every match of a pattern begins with one of its prefix literals, so a
// search only needs to run an evaluator where one of them occurs. The
// package selects a search primitive from the literal set:
//   - Single byte → memchr (bytes.IndexByte)
//   - Single substring → memmem (bytes.Index)
//   - Several literals with a common prefix → memchr or memmem on the prefix
//   - Several literals → Aho-Corasick automaton
//
// Example usage:
//
//	re, _ := syntax.Parse("hello|world")
//	prefixes := literal.New(literal.DefaultConfig()).ExtractPrefixes(re)
//	pf := prefilter.Build(prefixes)
//
//	haystack := []byte("foo hello bar world baz")
//	pos := pf.Find(haystack, 0)
//	// pos == 4 (position of "hello")
package prefilter

import (
	"bytes"

	"github.com/coregx/ahocorasick"
	"github.com/coregx/regvm/literal"
)

// Prefilter finds candidate match positions before an evaluator runs.
type Prefilter interface {
	// Find returns the smallest offset at or after start where one of the
	// literals begins, or -1 if there is none.
	//
	// A candidate does NOT guarantee a match; the caller must verify it
	// with an evaluator unless IsComplete() is true.
	Find(haystack []byte, start int) int

	// IsComplete reports whether a candidate is always a match, namely
	// when the pattern matches exactly one literal and nothing else.
	IsComplete() bool

	// LiteralLen returns the length of the match at a candidate when
	// IsComplete() is true, and 0 otherwise.
	LiteralLen() int

	// HeapBytes returns the heap memory held by the prefilter.
	HeapBytes() int
}

// Build constructs the best prefilter for the prefix literals in seq.
//
// Returns nil when the literals cannot narrow a search: seq is empty or
// holds the empty literal, or the automaton cannot be built.
//
// Several literals are truncated to the length of the shortest one first.
// With every needle of equal length, the earliest occurrence found by the
// automaton is also the leftmost candidate. Literals that still share a
// common prefix are searched for by that prefix alone.
func Build(seq *literal.Seq) Prefilter {
	if seq.IsEmpty() || seq.ContainsEmpty() {
		return nil
	}

	lits := seq.Clone()
	lits.Minimize()
	if lits.Len() > 1 {
		lits.Truncate(lits.MinLen())
		lits.Minimize()
	}

	if lits.Len() == 1 {
		complete := seq.Len() == 1 && seq.AllComplete()
		return newSingle(lits.Get(0).Bytes, complete)
	}
	if lcp := lits.LongestCommonPrefix(); len(lcp) > 0 {
		return newSingle(lcp, false)
	}

	return newAhoCorasickPrefilter(lits)
}

// newSingle returns the single-needle prefilter for needle.
func newSingle(needle []byte, complete bool) Prefilter {
	if len(needle) == 1 {
		return newMemchrPrefilter(needle[0], complete)
	}
	return newMemmemPrefilter(needle, complete)
}

// memchrPrefilter searches for a single byte.
//
// Example patterns:
//
//	"a+b"   → search for 'a'
//	"x|xy"  → after minimization → search for 'x'
type memchrPrefilter struct {
	needle   byte
	complete bool
}

func newMemchrPrefilter(needle byte, complete bool) Prefilter {
	return &memchrPrefilter{
		needle:   needle,
		complete: complete,
	}
}

// Find implements Prefilter.Find using bytes.IndexByte.
func (p *memchrPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}

	idx := bytes.IndexByte(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// IsComplete implements Prefilter.IsComplete.
func (p *memchrPrefilter) IsComplete() bool {
	return p.complete
}

// LiteralLen implements Prefilter.LiteralLen.
func (p *memchrPrefilter) LiteralLen() int {
	if p.complete {
		return 1
	}
	return 0
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *memchrPrefilter) HeapBytes() int {
	return 0
}

// memmemPrefilter searches for a single substring.
//
// Example patterns:
//
//	"hello"  → search for "hello" (complete)
//	"ab+c"   → search for "ab"
type memmemPrefilter struct {
	needle   []byte
	complete bool
}

func newMemmemPrefilter(needle []byte, complete bool) Prefilter {
	return &memmemPrefilter{
		needle:   bytes.Clone(needle),
		complete: complete,
	}
}

// Find implements Prefilter.Find using bytes.Index.
func (p *memmemPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}

	idx := bytes.Index(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// IsComplete implements Prefilter.IsComplete.
func (p *memmemPrefilter) IsComplete() bool {
	return p.complete
}

// LiteralLen implements Prefilter.LiteralLen.
func (p *memmemPrefilter) LiteralLen() int {
	if p.complete {
		return len(p.needle)
	}
	return 0
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *memmemPrefilter) HeapBytes() int {
	return len(p.needle)
}

// ahoCorasickPrefilter searches for several equal-length needles at once.
type ahoCorasickPrefilter struct {
	automaton *ahocorasick.Automaton
	heapBytes int
}

func newAhoCorasickPrefilter(lits *literal.Seq) Prefilter {
	builder := ahocorasick.NewBuilder()
	heap := 0
	for _, lit := range lits.Literals() {
		builder.AddPattern(lit.Bytes)
		heap += len(lit.Bytes)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &ahoCorasickPrefilter{
		automaton: auto,
		heapBytes: heap,
	}
}

// Find implements Prefilter.Find using the automaton.
func (p *ahoCorasickPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}

	m := p.automaton.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}

// IsComplete implements Prefilter.IsComplete.
// Truncated needles never determine a match.
func (p *ahoCorasickPrefilter) IsComplete() bool {
	return false
}

// LiteralLen implements Prefilter.LiteralLen.
func (p *ahoCorasickPrefilter) LiteralLen() int {
	return 0
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *ahoCorasickPrefilter) HeapBytes() int {
	return p.heapBytes
}
