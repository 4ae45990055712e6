package nfa

import (
	"errors"
	"testing"
)

// evaluator is the surface shared by Backtracker and PikeVM.
type evaluator interface {
	MatchAt(h []byte, at int) (bool, error)
	FindAt(h []byte, at int) (int, error)
	Search(h []byte, at int, next NextFunc) (int, int, error)
}

var evaluators = []struct {
	name string
	new  func(Program) evaluator
}{
	{"backtrack", func(p Program) evaluator { return NewBacktracker(p) }},
	{"pikevm", func(p Program) evaluator { return NewPikeVM(p) }},
}

func TestEvaluators_FindAt(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		at      int
		want    int // end offset, -1 for no match
	}{
		// Literals
		{"a", "a", 0, 1},
		{"a", "ab", 0, 1},
		{"a", "ba", 0, -1},
		{"a", "", 0, -1},
		{"abc", "xabcx", 1, 4},
		{"abc", "xabcx", 0, -1},
		{"abc", "ab", 0, -1},

		// Quantifier boundaries
		{"a+", "", 0, -1},
		{"a+", "a", 0, 1},
		{"a+", "aaab", 0, 3},
		{"a*", "", 0, 0},
		{"a*", "aab", 0, 2},
		{"a*", "b", 0, 0},
		{"a?", "", 0, 0},
		{"a?", "aa", 0, 1},
		{"a?", "b", 0, 0},
		{"a**", "aaa", 0, 3},

		// Star loops back to its split, so the body may repeat
		{"(ab)*c", "ababc", 0, 5},
		{"(ab)*c", "c", 0, 1},
		{"(ab)*c", "abab", 0, -1},
		{"(ab)+", "ababa", 0, 4},

		// Leftmost-first alternation
		{"a|ab", "ab", 0, 1},
		{"ab|a", "ab", 0, 2},
		{"(a|ab)(c|bcd)", "abcd", 0, 4},
		{"a|b|c", "c", 0, 1},
		{"x(b|c)y", "xcy", 0, 3},

		// Loops whose body matches the empty string terminate
		{"()*", "x", 0, 0},
		{"()+", "", 0, 0},
		{"(a*)*b", "aaab", 0, 4},
		{"(a*)*b", "aaa", 0, -1},
		{"(a*)*", "aa", 0, 2},
		{"(a?)+", "aa", 0, 2},

		// Code points and raw bytes
		{"é+", "ééx", 0, 4},
		{"é", "e", 0, -1},
		{"a*", "\xffa", 0, 0},
		{"a", "\xffa", 0, -1},
		{"a", "\xffa", 1, 2},
		{`\(\)`, "()", 0, 2},

		// Positions
		{"a*", "aa", 2, 2},
		{"a", "aa", 3, -1},
		{"a", "aa", -1, -1},
	}

	for _, ev := range evaluators {
		for _, tt := range tests {
			prog := compileForTest(t, tt.pattern)
			e := ev.new(prog)

			got, err := e.FindAt([]byte(tt.input), tt.at)
			if err != nil {
				t.Fatalf("%s: FindAt(%q, %q, %d): %v", ev.name, tt.pattern, tt.input, tt.at, err)
			}
			if got != tt.want {
				t.Errorf("%s: FindAt(%q, %q, %d) = %d, want %d", ev.name, tt.pattern, tt.input, tt.at, got, tt.want)
			}

			matched, err := e.MatchAt([]byte(tt.input), tt.at)
			if err != nil {
				t.Fatalf("%s: MatchAt(%q, %q): %v", ev.name, tt.pattern, tt.input, err)
			}
			if matched != (tt.want >= 0) {
				t.Errorf("%s: MatchAt(%q, %q, %d) = %v, want %v", ev.name, tt.pattern, tt.input, tt.at, matched, tt.want >= 0)
			}
		}
	}
}

func TestEvaluators_Search(t *testing.T) {
	only := func(p int) NextFunc {
		return func(pos int) int {
			if pos <= p {
				return p
			}
			return -1
		}
	}

	tests := []struct {
		pattern    string
		input      string
		at         int
		next       NextFunc
		start, end int
	}{
		{"b+", "aabbbc", 0, nil, 2, 5},
		{"b+", "aabbbc", 3, nil, 3, 5},
		{"b+", "aabbbc", 0, only(4), 4, 5},
		{"b+", "aabbbc", 0, only(5), -1, -1},
		{"a*", "bbb", 0, nil, 0, 0},
		{"c", "ééc", 0, nil, 4, 5},
		{"x", "abc", 0, nil, -1, -1},
		{"a?", "", 0, nil, 0, 0},
		{"ab|b", "aab", 0, nil, 1, 3},
		{"b", "ab", 5, nil, -1, -1},
	}

	for _, ev := range evaluators {
		for _, tt := range tests {
			e := ev.new(compileForTest(t, tt.pattern))
			start, end, err := e.Search([]byte(tt.input), tt.at, tt.next)
			if err != nil {
				t.Fatalf("%s: Search(%q, %q): %v", ev.name, tt.pattern, tt.input, err)
			}
			if start != tt.start || end != tt.end {
				t.Errorf("%s: Search(%q, %q, %d) = (%d, %d), want (%d, %d)",
					ev.name, tt.pattern, tt.input, tt.at, start, end, tt.start, tt.end)
			}
		}
	}
}

func TestEvaluators_InvalidPC(t *testing.T) {
	progs := []Program{
		{{Op: OpJump, X: 5}, {Op: OpMatch}},
		{{Op: OpSplit, X: 1, Y: 7}, {Op: OpChar, Rune: 'z'}, {Op: OpMatch}},
		{},
	}
	for _, ev := range evaluators {
		for _, prog := range progs {
			_, err := ev.new(prog).FindAt([]byte("a"), 0)
			if !errors.Is(err, ErrInvalidPC) {
				t.Errorf("%s: FindAt on %v: err = %v, want ErrInvalidPC", ev.name, prog, err)
				continue
			}
			var pcErr *PCError
			if !errors.As(err, &pcErr) {
				t.Errorf("%s: error %T is not *PCError", ev.name, err)
			}
		}
	}
}

func TestEvaluators_InvalidPCAddress(t *testing.T) {
	prog := Program{{Op: OpJump, X: 5}, {Op: OpMatch}}
	for _, ev := range evaluators {
		_, err := ev.new(prog).FindAt(nil, 0)
		var pcErr *PCError
		if !errors.As(err, &pcErr) || pcErr.PC != 5 {
			t.Errorf("%s: err = %v, want PCError at 0005", ev.name, err)
		}
	}
}

func TestBacktracker_Limits(t *testing.T) {
	prog := compileForTest(t, "a*")

	bt := NewBacktrackerWithConfig(prog, BacktrackerConfig{MaxVisitedBits: 10})
	if bt.CanHandle(10) {
		t.Error("CanHandle(10) = true with a 10-bit visited set")
	}
	if prog.Len() != 4 {
		t.Fatalf("a* compiled to %d instructions, want 4", prog.Len())
	}
	// 4 instructions * (1+1) positions fit; 4 * (2+1) do not.
	if !bt.CanHandle(1) {
		t.Error("CanHandle(1) = false for a 4-instruction program")
	}
	if bt.CanHandle(2) {
		t.Error("CanHandle(2) = true, needs 12 bits")
	}
	if _, err := bt.FindAt(make([]byte, 10), 0); !errors.Is(err, ErrVisitedLimit) {
		t.Errorf("FindAt: err = %v, want ErrVisitedLimit", err)
	}
	if _, _, err := bt.Search(make([]byte, 10), 0, nil); !errors.Is(err, ErrVisitedLimit) {
		t.Errorf("Search: err = %v, want ErrVisitedLimit", err)
	}

	bt = NewBacktrackerWithConfig(prog, BacktrackerConfig{MaxStackFrames: 1})
	if _, err := bt.FindAt([]byte("aaaa"), 0); !errors.Is(err, ErrStackExhausted) {
		t.Errorf("FindAt: err = %v, want ErrStackExhausted", err)
	}
}

func TestBacktracker_Reuse(t *testing.T) {
	bt := NewBacktracker(compileForTest(t, "ab"))
	for i := 0; i < 3; i++ {
		if end, err := bt.FindAt([]byte("abab"), 2); err != nil || end != 4 {
			t.Fatalf("round %d: FindAt = %d, %v", i, end, err)
		}
		if end, err := bt.FindAt([]byte("ab"), 0); err != nil || end != 2 {
			t.Fatalf("round %d: FindAt = %d, %v", i, end, err)
		}
	}
}

func TestPikeVM_IsMatchFrom(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		at      int
		want    bool
	}{
		{"bc", "aabbbc", 0, true},
		{"bd", "aabbbc", 0, false},
		{"bc", "aabbbc", 5, false},
		{"a*", "", 0, true},
		{"a+", "", 0, false},
		{"(ab)*c", "xxababcxx", 0, true},
		{"é", "aaé", 0, true},
		{"aab", "aaab", 0, true},
		{"x", "abc", 4, false},
	}

	for _, tt := range tests {
		vm := NewPikeVM(compileForTest(t, tt.pattern))
		got, err := vm.IsMatchFrom([]byte(tt.input), tt.at, nil)
		if err != nil {
			t.Fatalf("IsMatchFrom(%q, %q): %v", tt.pattern, tt.input, err)
		}
		if got != tt.want {
			t.Errorf("IsMatchFrom(%q, %q, %d) = %v, want %v", tt.pattern, tt.input, tt.at, got, tt.want)
		}
	}
}

func TestPikeVM_IsMatchFromCandidates(t *testing.T) {
	vm := NewPikeVM(compileForTest(t, "ab"))
	h := []byte("abxxab")

	// Skipping the first occurrence still finds the second.
	next := func(pos int) int {
		if pos <= 4 {
			return 4
		}
		return -1
	}
	if ok, err := vm.IsMatchFrom(h, 0, next); err != nil || !ok {
		t.Errorf("IsMatchFrom with candidate 4 = %v, %v", ok, err)
	}

	none := func(int) int { return -1 }
	if ok, err := vm.IsMatchFrom(h, 0, none); err != nil || ok {
		t.Errorf("IsMatchFrom without candidates = %v, %v", ok, err)
	}
}

func TestPikeVM_WithState(t *testing.T) {
	vm := NewPikeVM(compileForTest(t, "a+"))
	s := vm.NewState()
	if end, err := vm.FindAtWithState([]byte("aaa"), 0, s); err != nil || end != 3 {
		t.Errorf("FindAtWithState = %d, %v", end, err)
	}

	// A state initialised for a smaller program is resized.
	small := NewPikeVM(compileForTest(t, "a")).NewState()
	vm.InitState(small)
	if ok, err := vm.MatchAtWithState([]byte("a"), 0, small); err != nil || !ok {
		t.Errorf("MatchAtWithState = %v, %v", ok, err)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		input string
		pos   int
		r     rune
		w     int
	}{
		{"a", 0, 'a', 1},
		{"é", 0, 'é', 2},
		{"aé", 1, 'é', 2},
		{"a", 1, 0, 0},
		{"", 0, 0, 0},
		{"\xff", 0, invalidRune, 1},
		{"\xc3", 0, invalidRune, 1},
		{"a", -1, 0, 0},
	}
	for _, tt := range tests {
		r, w := Decode([]byte(tt.input), tt.pos)
		if r != tt.r || w != tt.w {
			t.Errorf("Decode(%q, %d) = (%q, %d), want (%q, %d)", tt.input, tt.pos, r, w, tt.r, tt.w)
		}
	}
}
