// Package literal extracts literal byte sequences from syntax trees.
//
// The extracted literals feed the prefilter: every match of a pattern must
// begin with one of its prefix literals, so positions where none of them
// occurs can be skipped without running an evaluator.
//
// Key concepts:
//   - A Literal is a byte sequence that every match it stands for begins with
//   - A complete Literal is itself a whole match of the pattern
//   - A Seq is a set of alternative literals (e.g., from alternations like "foo|bar")
package literal

import (
	"bytes"
	"sort"
)

// Literal is a literal byte sequence extracted from a pattern.
//
// Example:
//   - Pattern "hello" → Literal{[]byte("hello"), true}
//   - Pattern "hello+" → Literal{[]byte("hello"), false} (prefix only)
type Literal struct {
	// Bytes contains the UTF-8 encoding of the literal.
	Bytes []byte

	// Complete reports whether Bytes is itself a match. If false, Bytes is
	// only a necessary prefix of the matches it stands for.
	Complete bool
}

// NewLiteral creates a new Literal from the given byte sequence and completeness flag.
func NewLiteral(b []byte, complete bool) Literal {
	return Literal{
		Bytes:    b,
		Complete: complete,
	}
}

// Len returns the length of the literal in bytes.
func (l Literal) Len() int {
	return len(l.Bytes)
}

// String returns a string representation of the literal for debugging purposes.
// Format: "literal{bytes, complete=true/false}"
func (l Literal) String() string {
	complete := "false"
	if l.Complete {
		complete = "true"
	}
	return "literal{" + string(l.Bytes) + ", complete=" + complete + "}"
}

// Seq is a set of alternative literals. A Seq extracted from a pattern
// covers it: every match either equals a complete literal of the Seq or
// begins with an incomplete one.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("foo"), true),
//	    literal.NewLiteral([]byte("bar"), true),
//	)
//	fmt.Println(seq.Len()) // Output: 2
type Seq struct {
	literals []Literal
}

// NewSeq creates a new sequence from the given literals.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{
		literals: lits,
	}
}

// Len returns the number of literals in the sequence.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns the literal at the specified index.
// Panics if index is out of bounds.
func (s *Seq) Get(i int) Literal {
	return s.literals[i]
}

// Literals returns the literals of the sequence. The slice is shared.
func (s *Seq) Literals() []Literal {
	if s == nil {
		return nil
	}
	return s.literals
}

// IsEmpty returns true if the sequence has no literals.
func (s *Seq) IsEmpty() bool {
	return s == nil || len(s.literals) == 0
}

// ContainsEmpty reports whether some literal has length zero. Such a
// sequence constrains nothing: every position begins with the empty string.
func (s *Seq) ContainsEmpty() bool {
	for _, lit := range s.Literals() {
		if len(lit.Bytes) == 0 {
			return true
		}
	}
	return false
}

// AllComplete reports whether the sequence is non-empty and every literal is
// complete. The literals are then exactly the matches of the pattern.
func (s *Seq) AllComplete() bool {
	if s.IsEmpty() {
		return false
	}
	for _, lit := range s.literals {
		if !lit.Complete {
			return false
		}
	}
	return true
}

// MinLen returns the length of the shortest literal, or 0 for an empty
// sequence.
func (s *Seq) MinLen() int {
	if s.IsEmpty() {
		return 0
	}
	n := len(s.literals[0].Bytes)
	for _, lit := range s.literals[1:] {
		n = min(n, len(lit.Bytes))
	}
	return n
}

// Clone returns a deep copy of the sequence.
func (s *Seq) Clone() *Seq {
	if s == nil {
		return nil
	}

	cloned := make([]Literal, len(s.literals))
	for i, lit := range s.literals {
		cloned[i] = Literal{
			Bytes:    bytes.Clone(lit.Bytes),
			Complete: lit.Complete,
		}
	}
	return &Seq{literals: cloned}
}

// add appends lit unless an equal literal is present. A complete and an
// incomplete literal with the same bytes collapse into the incomplete one,
// which covers both.
func (s *Seq) add(lit Literal) {
	for i := range s.literals {
		if bytes.Equal(s.literals[i].Bytes, lit.Bytes) {
			s.literals[i].Complete = s.literals[i].Complete && lit.Complete
			return
		}
	}
	s.literals = append(s.literals, lit)
}

// MakeInexact marks every literal incomplete.
func (s *Seq) MakeInexact() {
	for i := range s.Literals() {
		s.literals[i].Complete = false
	}
}

// Truncate shortens every literal to at most n bytes. Shortened literals
// become incomplete, and duplicates created by shortening are merged.
func (s *Seq) Truncate(n int) {
	if s.IsEmpty() || n < 0 {
		return
	}
	lits := s.literals
	s.literals = make([]Literal, 0, len(lits))
	for _, lit := range lits {
		if len(lit.Bytes) > n {
			lit = Literal{Bytes: lit.Bytes[:n], Complete: false}
		}
		s.add(lit)
	}
}

// Minimize removes literals that have a shorter literal of the sequence as
// a prefix. Any position where the longer literal occurs also begins with
// the shorter one, so the sequence still covers the same matches. A kept
// literal that absorbed a longer one becomes incomplete.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("foo"), true),
//	    literal.NewLiteral([]byte("foobar"), true),
//	)
//	seq.Minimize()
//	fmt.Println(seq.Len()) // Output: 1 (only "foo" remains)
func (s *Seq) Minimize() {
	if s.IsEmpty() {
		return
	}

	sort.SliceStable(s.literals, func(i, j int) bool {
		return len(s.literals[i].Bytes) < len(s.literals[j].Bytes)
	})

	kept := make([]Literal, 0, len(s.literals))
	for _, current := range s.literals {
		redundant := false
		for j := range kept {
			if bytes.HasPrefix(current.Bytes, kept[j].Bytes) {
				if len(current.Bytes) > len(kept[j].Bytes) || !current.Complete {
					kept[j].Complete = false
				}
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, current)
		}
	}
	s.literals = kept
}

// LongestCommonPrefix returns the longest common prefix of all literals in the sequence.
// If the sequence is empty or has no common prefix, returns an empty slice.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("hello"), true),
//	    literal.NewLiteral([]byte("help"), true),
//	    literal.NewLiteral([]byte("hero"), true),
//	)
//	fmt.Println(string(seq.LongestCommonPrefix())) // Output: he
func (s *Seq) LongestCommonPrefix() []byte {
	if s.IsEmpty() {
		return []byte{}
	}

	prefix := s.literals[0].Bytes
	for _, lit := range s.literals[1:] {
		prefix = commonPrefix(prefix, lit.Bytes)
		if len(prefix) == 0 {
			return []byte{}
		}
	}
	return bytes.Clone(prefix)
}

// commonPrefix returns the longest common prefix of a and b.
func commonPrefix(a, b []byte) []byte {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
