package meta

import (
	"sync"

	"github.com/coregx/regvm/nfa"
	"github.com/coregx/regvm/prefilter"
)

// searchState holds per-search mutable state so that one Engine can serve
// many goroutines. Each goroutine must use its own searchState.
type searchState struct {
	// backtracker owns its visited set and work-stack.
	backtracker *nfa.Backtracker

	// pikevm holds the thread lists for the shared PikeVM.
	pikevm *nfa.PikeVMState

	// tracker retires the prefilter when its candidates keep failing.
	// Nil without a prefilter.
	tracker *prefilter.Tracker
}

// searchStatePool manages searchState instances for one Engine.
type searchStatePool struct {
	pool sync.Pool
}

func newSearchStatePool(prog nfa.Program, vm *nfa.PikeVM, pf prefilter.Prefilter, config Config) *searchStatePool {
	btConfig := nfa.BacktrackerConfig{
		MaxVisitedBits: config.MaxVisitedBits,
		MaxStackFrames: config.MaxStackFrames,
	}
	p := &searchStatePool{}
	p.pool = sync.Pool{
		New: func() any {
			return &searchState{
				backtracker: nfa.NewBacktrackerWithConfig(prog, btConfig),
				pikevm:      vm.NewState(),
				tracker:     prefilter.NewTracker(pf),
			}
		},
	}
	return p
}

// get retrieves a searchState from the pool, creating one if necessary.
func (p *searchStatePool) get() *searchState {
	state := p.pool.Get().(*searchState)
	if state.tracker != nil {
		state.tracker.Reset()
	}
	return state
}

// put returns a searchState to the pool for reuse.
func (p *searchStatePool) put(state *searchState) {
	if state == nil {
		return
	}
	p.pool.Put(state)
}
