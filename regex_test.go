package regvm

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/coregx/regvm/meta"
	"github.com/coregx/regvm/nfa"
	"github.com/coregx/regvm/syntax"
)

type corpusCase struct {
	Pattern string `yaml:"pattern"`
	Input   string `yaml:"input"`
	Match   bool   `yaml:"match"`
	Find    []int  `yaml:"find"`
	Error   string `yaml:"error"`
}

func loadCorpus(t *testing.T) []corpusCase {
	t.Helper()
	f, err := os.Open("testdata/corpus.yaml")
	if err != nil {
		t.Fatalf("open corpus: %v", err)
	}
	defer f.Close()

	var doc struct {
		Cases []corpusCase `yaml:"cases"`
	}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		t.Fatalf("decode corpus: %v", err)
	}
	if len(doc.Cases) == 0 {
		t.Fatal("corpus is empty")
	}
	return doc.Cases
}

func TestCorpus(t *testing.T) {
	for _, mode := range []Mode{DepthFirst, BreadthFirst} {
		for _, tc := range loadCorpus(t) {
			t.Run(mode.String()+"/"+tc.Pattern+"/"+tc.Input, func(t *testing.T) {
				ok, err := Match(tc.Pattern, tc.Input, mode)
				if tc.Error != "" {
					var e *Error
					if !errors.As(err, &e) || string(e.Stage) != tc.Error {
						t.Fatalf("Match() error = %v, want stage %s", err, tc.Error)
					}
					return
				}
				if err != nil {
					t.Fatalf("Match() error = %v", err)
				}
				if ok != tc.Match {
					t.Errorf("Match() = %v, want %v", ok, tc.Match)
				}

				config := DefaultConfig()
				config.Mode = mode
				re, err := CompileWithConfig(tc.Pattern, config)
				if err != nil {
					t.Fatal(err)
				}
				loc, err := re.FindStringIndex(tc.Input)
				if err != nil {
					t.Fatal(err)
				}
				if !reflect.DeepEqual(loc, tc.Find) {
					t.Errorf("FindStringIndex() = %v, want %v", loc, tc.Find)
				}
				found, err := Search(tc.Pattern, tc.Input, mode)
				if err != nil || found != (tc.Find != nil) {
					t.Errorf("Search() = %v, %v", found, err)
				}
			})
		}
	}
}

func TestMatch_ErrorStages(t *testing.T) {
	_, err := Match("(a", "a", DepthFirst)
	if !errors.Is(err, syntax.ErrNoRightParen) {
		t.Errorf("Match((a) = %v, want ErrNoRightParen", err)
	}
	var perr *syntax.Error
	if !errors.As(err, &perr) || perr.Pos != -1 {
		t.Errorf("syntax error = %+v", perr)
	}

	_, err = Match(`\x`, "x", BreadthFirst)
	if !errors.As(err, &perr) || perr.Code != syntax.ErrInvalidEscape || perr.Pos != 1 || perr.Char != 'x' {
		t.Errorf("Match(\\x) = %+v", err)
	}

	_, err = Match("a\xff", "a\uFFFD", DepthFirst)
	var e *Error
	if !errors.As(err, &e) || e.Stage != meta.StageParse || !errors.Is(err, syntax.ErrInvalidUTF8) {
		t.Errorf("Match(invalid UTF-8) = %v, want parse-stage ErrInvalidUTF8", err)
	}

	config := DefaultConfig()
	config.MaxInsts = 2
	_, err = CompileWithConfig("abc", config)
	if !errors.As(err, &e) || e.Stage != meta.StageGenerate || !errors.Is(err, nfa.ErrPCOverflow) {
		t.Errorf("CompileWithConfig(MaxInsts=2) = %v", err)
	}

	config = DefaultConfig()
	config.MaxStackFrames = 1
	config.FallbackOnExhaustion = false
	re, err := CompileWithConfig("(a|b)*", config)
	if err != nil {
		t.Fatal(err)
	}
	_, err = re.MatchAt([]byte("abab"), 0)
	if !errors.As(err, &e) || e.Stage != meta.StageEvaluate || !errors.Is(err, nfa.ErrStackExhausted) {
		t.Errorf("MatchAt = %v, want evaluate-stage ErrStackExhausted", err)
	}
	if _, err := re.FindAllIndex([]byte("abab"), -1); !errors.Is(err, nfa.ErrStackExhausted) {
		t.Errorf("FindAllIndex = %v, want ErrStackExhausted", err)
	}
}

func TestMustCompile_Panics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("MustCompile did not panic")
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, "`a|`") {
			t.Errorf("panic = %v", r)
		}
	}()
	MustCompile("a|")
}

func TestRegex_FindAllIndex(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		n       int
		want    [][]int
	}{
		{"ab*", "abbxab", -1, [][]int{{0, 3}, {4, 6}}},
		{"ab*", "abbxab", 1, [][]int{{0, 3}}},
		{"ab*", "abbxab", 0, nil},
		{"a*", "baaa", -1, [][]int{{0, 0}, {1, 4}}},
		{"a*", "", -1, [][]int{{0, 0}}},
		{"x?", "éa", -1, [][]int{{0, 0}, {2, 2}, {3, 3}}},
		{"z", "abc", -1, nil},
		{"a|b", "abba", -1, [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}}},
	}

	for _, mode := range []Mode{DepthFirst, BreadthFirst} {
		for _, tt := range tests {
			config := DefaultConfig()
			config.Mode = mode
			re, err := CompileWithConfig(tt.pattern, config)
			if err != nil {
				t.Fatal(err)
			}
			got, err := re.FindAllIndex([]byte(tt.input), tt.n)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s: FindAllIndex(%q, %q, %d) = %v, want %v", mode, tt.pattern, tt.input, tt.n, got, tt.want)
			}
		}
	}
}

func TestRegex_FindString(t *testing.T) {
	re := MustCompile("b+")
	if s, err := re.FindString("abbbc"); err != nil || s != "bbb" {
		t.Errorf("FindString = %q, %v", s, err)
	}
	if s, err := re.FindString("xyz"); err != nil || s != "" {
		t.Errorf("FindString(no match) = %q, %v", s, err)
	}
	if loc, err := re.FindIndex([]byte("xyz")); err != nil || loc != nil {
		t.Errorf("FindIndex(no match) = %v, %v", loc, err)
	}
	if all, err := re.FindAllString("abxbb", -1); err != nil || !reflect.DeepEqual(all, []string{"b", "bb"}) {
		t.Errorf("FindAllString = %q, %v", all, err)
	}
	if all, err := re.FindAllString("xyz", -1); err != nil || all != nil {
		t.Errorf("FindAllString(no match) = %q, %v", all, err)
	}
}

func TestRegex_Accessors(t *testing.T) {
	config := DefaultConfig()
	config.Mode = BreadthFirst
	re, err := CompileWithConfig("a?b", config)
	if err != nil {
		t.Fatal(err)
	}
	if re.String() != "a?b" {
		t.Errorf("String() = %q", re.String())
	}
	if re.Mode() != BreadthFirst {
		t.Errorf("Mode() = %v", re.Mode())
	}
	if err := re.Program().Validate(); err != nil {
		t.Errorf("Program().Validate() = %v", err)
	}
	if re.Program().Len() != 4 {
		t.Errorf("Program().Len() = %d, want 4", re.Program().Len())
	}
}

func TestQuoteMeta(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc", "abc"},
		{"a+b", `a\+b`},
		{`(x|y)*?\`, `\(x\|y\)\*\?\\`},
		{"", ""},
	}
	for _, tt := range tests {
		got := QuoteMeta(tt.in)
		if got != tt.want {
			t.Errorf("QuoteMeta(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if tt.in == "" {
			continue
		}
		ok, err := Match(got, tt.in, DepthFirst)
		if err != nil || !ok {
			t.Errorf("Match(QuoteMeta(%q)) = %v, %v", tt.in, ok, err)
		}
	}
}

func TestRegex_Concurrent(t *testing.T) {
	re := MustCompile("(foo|bar)+baz")
	input := []byte(strings.Repeat("foobar", 50) + "baz")

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				loc, err := re.FindIndex(input)
				if err != nil || loc == nil || loc[0] != 0 || loc[1] != len(input) {
					errs <- "unexpected result"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}
