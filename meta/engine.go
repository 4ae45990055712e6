package meta

import (
	"errors"

	"github.com/coregx/regvm/literal"
	"github.com/coregx/regvm/nfa"
	"github.com/coregx/regvm/prefilter"
	"github.com/coregx/regvm/syntax"
)

// Engine is a compiled pattern together with the evaluator selected by its
// Config.
//
// Thread safety: Engine is immutable after compilation. Searches draw their
// scratch space from an internal pool, so one Engine may be used from many
// goroutines at once.
//
// Example:
//
//	engine, err := meta.Compile("ab|c")
//	if err != nil {
//	    return err
//	}
//	start, end, err := engine.Find([]byte("xxabx"))
//	// start == 2, end == 4
type Engine struct {
	pattern string
	config  Config
	ast     *syntax.Node
	prog    nfa.Program

	// prefilter is nil when prefix literals cannot narrow a search or
	// prefiltering is disabled.
	prefilter prefilter.Prefilter

	// pikevm is shared; its per-search state lives in searchState.
	pikevm *nfa.PikeVM
	states *searchStatePool
}

// Compile compiles pattern with DefaultConfig.
func Compile(pattern string) (*Engine, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// CompileWithConfig parses and compiles pattern. Configuration problems are
// reported as *ConfigError; pipeline failures as *Error tagged with the
// parse or generate stage.
func CompileWithConfig(pattern string, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var flags syntax.Flags
	if config.StrictParens {
		flags |= syntax.Strict
	}
	ast, err := syntax.ParseWithFlags(pattern, flags)
	if err != nil {
		return nil, &Error{Stage: StageParse, Pattern: pattern, Err: err}
	}
	return build(pattern, ast, config)
}

// CompileNode compiles an already parsed syntax tree. The engine reports
// ast.String() as its pattern.
func CompileNode(ast *syntax.Node, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if ast == nil {
		return nil, &Error{Stage: StageParse, Err: syntax.ErrEmpty}
	}
	return build(ast.String(), ast, config)
}

func build(pattern string, ast *syntax.Node, config Config) (*Engine, error) {
	compiler := nfa.NewCompiler(nfa.CompilerConfig{
		MaxInsts:          config.MaxInsts,
		MaxRecursionDepth: config.MaxRecursionDepth,
	})
	prog, err := compiler.Compile(ast)
	if err != nil {
		return nil, &Error{Stage: StageGenerate, Pattern: pattern, Err: err}
	}

	var pf prefilter.Prefilter
	if config.EnablePrefilter {
		extractor := literal.New(literal.ExtractorConfig{
			MaxLiterals:   config.MaxLiterals,
			MaxLiteralLen: config.MaxLiteralLen,
		})
		pf = prefilter.Build(extractor.ExtractPrefixes(ast))
	}

	vm := nfa.NewPikeVM(prog)
	return &Engine{
		pattern:   pattern,
		config:    config,
		ast:       ast,
		prog:      prog,
		prefilter: pf,
		pikevm:    vm,
		states:    newSearchStatePool(prog, vm, pf, config),
	}, nil
}

// Pattern returns the source pattern.
func (e *Engine) Pattern() string {
	return e.pattern
}

// Config returns the configuration the engine was compiled with.
func (e *Engine) Config() Config {
	return e.config
}

// Mode returns the evaluator in use.
func (e *Engine) Mode() Mode {
	return e.config.Mode
}

// AST returns the parsed syntax tree. It must not be modified.
func (e *Engine) AST() *syntax.Node {
	return e.ast
}

// Program returns the compiled program. It must not be modified.
func (e *Engine) Program() nfa.Program {
	return e.prog
}

// Prefilter returns the prefilter used for unanchored search, or nil.
func (e *Engine) Prefilter() prefilter.Prefilter {
	return e.prefilter
}

// IsMatchAt reports whether a match starts exactly at offset at of h.
// Matching is a prefix test: input after the match is ignored.
func (e *Engine) IsMatchAt(h []byte, at int) (bool, error) {
	if at < 0 || at > len(h) {
		return false, nil
	}

	s := e.states.get()
	defer e.states.put(s)

	return evaluate(e,
		func() (bool, error) { return s.backtracker.MatchAt(h, at) },
		func() (bool, error) { return e.pikevm.MatchAtWithState(h, at, s.pikevm) },
	)
}

// IsMatch reports whether a match starts anywhere in h.
func (e *Engine) IsMatch(h []byte) (bool, error) {
	if e.prefilter != nil && e.prefilter.IsComplete() {
		return e.prefilter.Find(h, 0) >= 0, nil
	}

	s := e.states.get()
	defer e.states.put(s)

	next := e.candidates(h, nil)
	return evaluate(e,
		func() (bool, error) {
			start, _, err := s.backtracker.Search(h, 0, next)
			return start >= 0, err
		},
		func() (bool, error) { return e.pikevm.IsMatchFromWithState(h, 0, next, s.pikevm) },
	)
}

// Find returns the leftmost-first match in h as byte offsets, or (-1, -1)
// if there is none.
func (e *Engine) Find(h []byte) (int, int, error) {
	return e.FindAt(h, 0)
}

// FindAt returns the leftmost-first match starting at or after offset at.
// The match starts at the smallest offset where one exists; its end is the
// one the preferred path through the pattern reaches.
func (e *Engine) FindAt(h []byte, at int) (int, int, error) {
	s := e.states.get()
	defer e.states.put(s)
	return e.findAt(h, at, s)
}

// FindAll returns the spans of successive non-overlapping matches in h. If
// n >= 0 it returns at most n matches. An empty match directly after the
// previous match is skipped.
//
// All searches share one prefilter tracker, so a prefilter whose candidates
// keep turning into matches stays in use for the whole scan.
func (e *Engine) FindAll(h []byte, n int) ([][2]int, error) {
	if n == 0 {
		return nil, nil
	}

	s := e.states.get()
	defer e.states.put(s)

	var spans [][2]int
	pos, prevEnd := 0, -1
	for pos <= len(h) {
		start, end, err := e.findAt(h, pos, s)
		if err != nil {
			return nil, err
		}
		if start < 0 {
			break
		}

		if end == start && start == prevEnd {
			_, w := nfa.Decode(h, start)
			if w == 0 {
				break
			}
			pos = start + w
			continue
		}

		spans = append(spans, [2]int{start, end})
		if n > 0 && len(spans) >= n {
			break
		}
		prevEnd = end

		if end > start {
			pos = end
			continue
		}
		_, w := nfa.Decode(h, end)
		if w == 0 {
			break
		}
		pos = end + w
	}
	return spans, nil
}

func (e *Engine) findAt(h []byte, at int, s *searchState) (int, int, error) {
	if at < 0 || at > len(h) {
		return -1, -1, nil
	}
	if e.prefilter != nil && e.prefilter.IsComplete() {
		pos := e.prefilter.Find(h, at)
		if pos < 0 {
			return -1, -1, nil
		}
		return pos, pos + e.prefilter.LiteralLen(), nil
	}

	next := e.candidates(h, s.tracker)
	span, err := evaluate(e,
		func() ([2]int, error) {
			start, end, err := s.backtracker.Search(h, at, next)
			return [2]int{start, end}, err
		},
		func() ([2]int, error) {
			start, end, err := e.pikevm.SearchWithState(h, at, next, s.pikevm)
			return [2]int{start, end}, err
		},
	)
	if err != nil {
		return -1, -1, err
	}
	if span[0] >= 0 && s.tracker != nil && s.tracker.IsActive() {
		s.tracker.ConfirmMatch()
	}
	return span[0], span[1], nil
}

// candidates returns the start offsets a search should try. Without a
// prefilter that is every offset; with one, only offsets where a prefix
// literal begins, until the tracker retires it.
func (e *Engine) candidates(h []byte, tracker *prefilter.Tracker) nfa.NextFunc {
	if e.prefilter == nil {
		return nfa.EveryPosition(len(h))
	}
	if tracker == nil {
		return func(pos int) int {
			return e.prefilter.Find(h, pos)
		}
	}
	return func(pos int) int {
		if !tracker.IsActive() {
			if pos > len(h) {
				return -1
			}
			return pos
		}
		return tracker.Find(h, pos)
	}
}

// evaluate runs depthFirst or breadthFirst according to the engine mode.
// A depth-first run that exhausts its resources is retried breadth-first
// when FallbackOnExhaustion is set. Errors are tagged with StageEvaluate.
func evaluate[T any](e *Engine, depthFirst, breadthFirst func() (T, error)) (T, error) {
	var (
		v   T
		err error
	)
	if e.config.Mode == BreadthFirst {
		v, err = breadthFirst()
	} else {
		v, err = depthFirst()
		if err != nil && e.config.FallbackOnExhaustion && isExhaustion(err) {
			v, err = breadthFirst()
		}
	}
	if err != nil {
		var zero T
		return zero, &Error{Stage: StageEvaluate, Pattern: e.pattern, Err: err}
	}
	return v, nil
}

func isExhaustion(err error) bool {
	return errors.Is(err, nfa.ErrVisitedLimit) || errors.Is(err, nfa.ErrStackExhausted)
}
