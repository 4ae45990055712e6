// Package regvm matches patterns by compiling them to a small instruction
// program and running it on a virtual machine.
//
// The pipeline has three stages:
//   - parse: the pattern becomes a syntax tree (package syntax)
//   - generate: the tree becomes a linear program of Char, Match, Jump and
//     Split instructions (package nfa)
//   - evaluate: the program runs depth-first with a backtracker or
//     breadth-first with a Pike VM
//
// The pattern language has literal characters, grouping with parentheses,
// alternation with '|', and the postfix operators '+', '*' and '?'. A
// backslash makes any of the metacharacters \ ( ) | + * ? literal.
//
// Basic usage:
//
//	ok, err := regvm.Match("a(b|c)*d", "abcbd", regvm.DepthFirst)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Compile once to search many inputs:
//
//	re := regvm.MustCompile("foo|bar")
//	loc, err := re.FindStringIndex("xxbar")
//	// loc == []int{2, 5}
//
// Both evaluation modes report the same results for every input. Depth-first
// is usually faster; breadth-first uses memory proportional to the program
// only. A depth-first search that outgrows its limits is retried
// breadth-first unless Config.FallbackOnExhaustion is turned off.
package regvm

import (
	"strconv"

	"github.com/coregx/regvm/meta"
	"github.com/coregx/regvm/nfa"
)

// Mode selects the evaluator.
type Mode = meta.Mode

const (
	// DepthFirst runs the backtracking evaluator.
	DepthFirst = meta.DepthFirst

	// BreadthFirst runs the simultaneous-state evaluator.
	BreadthFirst = meta.BreadthFirst
)

// Config controls compilation and evaluation. See meta.Config.
type Config = meta.Config

// Error reports a failure tagged with the pipeline stage that produced it.
type Error = meta.Error

// Regex is a compiled pattern.
//
// A Regex is safe to use concurrently from multiple goroutines.
//
// Example:
//
//	re := regvm.MustCompile(`hello`)
//	if ok, _ := re.MatchString("hello world"); ok {
//	    println("matched!")
//	}
type Regex struct {
	engine *meta.Engine
}

// Match reports whether pattern matches a prefix of input, evaluating the
// compiled program with mode. Errors are *Error values tagged with the stage
// that failed.
//
// Example:
//
//	ok, _ := regvm.Match("ab*", "abbbx", regvm.BreadthFirst) // true
//	ok, _ = regvm.Match("ab*", "xab", regvm.BreadthFirst)    // false
func Match(pattern, input string, mode Mode) (bool, error) {
	re, err := compileMode(pattern, mode)
	if err != nil {
		return false, err
	}
	return re.MatchAt([]byte(input), 0)
}

// Search reports whether pattern matches anywhere in input.
func Search(pattern, input string, mode Mode) (bool, error) {
	re, err := compileMode(pattern, mode)
	if err != nil {
		return false, err
	}
	return re.MatchString(input)
}

func compileMode(pattern string, mode Mode) (*Regex, error) {
	config := DefaultConfig()
	config.Mode = mode
	return CompileWithConfig(pattern, config)
}

// Compile parses pattern and compiles it with the default configuration.
//
// Example:
//
//	re, err := regvm.Compile(`a\+b`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// MustCompile is like Compile but panics if the pattern cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("regvm: Compile(" + quote(pattern) + "): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles pattern with a custom configuration.
//
// Example:
//
//	config := regvm.DefaultConfig()
//	config.Mode = regvm.BreadthFirst
//	re, err := regvm.CompileWithConfig("(a|b)*c", config)
func CompileWithConfig(pattern string, config Config) (*Regex, error) {
	engine, err := meta.CompileWithConfig(pattern, config)
	if err != nil {
		return nil, err
	}
	return &Regex{engine: engine}, nil
}

// DefaultConfig returns the default configuration: depth-first evaluation
// with prefiltering and breadth-first fallback enabled.
func DefaultConfig() Config {
	return meta.DefaultConfig()
}

// Match reports whether b contains a match of the pattern.
func (r *Regex) Match(b []byte) (bool, error) {
	return r.engine.IsMatch(b)
}

// MatchString reports whether s contains a match of the pattern.
func (r *Regex) MatchString(s string) (bool, error) {
	return r.Match([]byte(s))
}

// MatchAt reports whether a match starts exactly at byte offset at of b.
// Input after the match is ignored.
func (r *Regex) MatchAt(b []byte, at int) (bool, error) {
	return r.engine.IsMatchAt(b, at)
}

// FindIndex returns the location of the leftmost match in b as
// b[loc[0]:loc[1]], or nil if there is none.
func (r *Regex) FindIndex(b []byte) ([]int, error) {
	start, end, err := r.engine.Find(b)
	if err != nil || start < 0 {
		return nil, err
	}
	return []int{start, end}, nil
}

// FindStringIndex returns the location of the leftmost match in s, or nil.
func (r *Regex) FindStringIndex(s string) ([]int, error) {
	return r.FindIndex([]byte(s))
}

// FindString returns the text of the leftmost match in s. It returns ""
// both when there is no match and when the match is empty; use
// FindStringIndex to tell them apart.
func (r *Regex) FindString(s string) (string, error) {
	loc, err := r.FindStringIndex(s)
	if loc == nil {
		return "", err
	}
	return s[loc[0]:loc[1]], nil
}

// FindAllIndex returns the locations of successive non-overlapping matches
// in b. If n >= 0 it returns at most n matches. An empty match directly
// after a previous match is skipped.
//
// Example:
//
//	re := regvm.MustCompile("ab*")
//	locs, _ := re.FindAllIndex([]byte("abbxab"), -1)
//	// locs == [][]int{{0, 3}, {4, 6}}
func (r *Regex) FindAllIndex(b []byte, n int) ([][]int, error) {
	spans, err := r.engine.FindAll(b, n)
	if err != nil || spans == nil {
		return nil, err
	}
	locs := make([][]int, len(spans))
	for i, span := range spans {
		locs[i] = []int{span[0], span[1]}
	}
	return locs, nil
}

// FindAllString returns the text of successive non-overlapping matches in s.
// If n >= 0 it returns at most n matches.
func (r *Regex) FindAllString(s string, n int) ([]string, error) {
	locs, err := r.FindAllIndex([]byte(s), n)
	if err != nil || locs == nil {
		return nil, err
	}
	out := make([]string, len(locs))
	for i, loc := range locs {
		out[i] = s[loc[0]:loc[1]]
	}
	return out, nil
}

// String returns the source text used to compile the pattern.
func (r *Regex) String() string {
	return r.engine.Pattern()
}

// Mode returns the evaluator the pattern runs on.
func (r *Regex) Mode() Mode {
	return r.engine.Mode()
}

// Program returns the compiled instruction program. It must not be
// modified.
func (r *Regex) Program() nfa.Program {
	return r.engine.Program()
}

// QuoteMeta returns a pattern that matches the literal text s.
//
// Example:
//
//	regvm.QuoteMeta("a+b") // `a\+b`
func QuoteMeta(s string) string {
	const special = `\()|+*?`

	n := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, len(s)+n)
	j := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			buf[j] = '\\'
			j++
		}
		buf[j] = s[i]
		j++
	}
	return string(buf)
}

func isSpecial(c byte, special string) bool {
	for i := 0; i < len(special); i++ {
		if c == special[i] {
			return true
		}
	}
	return false
}

// quote returns a backquoted string if possible, otherwise a
// double-quoted one.
func quote(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '`' || s[i] < ' ' {
			return strconv.Quote(s)
		}
	}
	return "`" + s + "`"
}
