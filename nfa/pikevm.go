package nfa

import (
	"github.com/coregx/regvm/internal/conv"
	"github.com/coregx/regvm/internal/sparse"
)

// PikeVM executes a Program breadth-first. It keeps the set of live
// addresses for the current position and advances all of them over one code
// point at a time. Each address enters a generation at most once, so a
// search costs O(len(prog) * len(input)) regardless of the pattern.
//
// Thread lists keep insertion order, and the epsilon closure visits the X
// branch of a Split before its Y branch. The order of a list is therefore
// the order in which Backtracker would try the same states, which makes the
// two evaluators agree on the leftmost-first match end.
//
// Thread safety: the program is immutable after creation. For concurrent
// usage, use the *WithState methods with one PikeVMState per goroutine.
// The methods without state use internal state and are NOT thread-safe.
type PikeVM struct {
	prog Program

	internalState PikeVMState
}

// PikeVMState holds mutable per-search state for PikeVM.
// This struct should be pooled (via sync.Pool) for concurrent usage.
type PikeVMState struct {
	// Thread lists for the current and next position.
	clist *sparse.Set
	nlist *sparse.Set

	// stack drives the epsilon closure without recursion.
	stack []Addr
}

// NewPikeVM creates a PikeVM for prog.
func NewPikeVM(prog Program) *PikeVM {
	p := &PikeVM{prog: prog}
	p.InitState(&p.internalState)
	return p
}

// Program returns the program being executed.
func (p *PikeVM) Program() Program {
	return p.prog
}

// NewState allocates a state sized for this VM's program.
func (p *PikeVM) NewState() *PikeVMState {
	s := &PikeVMState{}
	p.InitState(s)
	return s
}

// InitState sizes s for this VM's program, reusing its storage when
// possible.
func (p *PikeVM) InitState(s *PikeVMState) {
	n := len(p.prog)
	if s.clist == nil {
		s.clist = sparse.New(n)
		s.nlist = sparse.New(n)
	} else {
		s.clist.Resize(n)
		s.nlist.Resize(n)
	}
	s.stack = s.stack[:0]
}

// MatchAt reports whether the program matches h starting exactly at at.
func (p *PikeVM) MatchAt(h []byte, at int) (bool, error) {
	return p.MatchAtWithState(h, at, &p.internalState)
}

// MatchAtWithState is MatchAt using external state.
func (p *PikeVM) MatchAtWithState(h []byte, at int, s *PikeVMState) (bool, error) {
	end, err := p.run(h, at, s, true)
	return end >= 0, err
}

// FindAt returns the end offset of the leftmost-first match that starts at
// at, or -1 if there is none.
func (p *PikeVM) FindAt(h []byte, at int) (int, error) {
	return p.FindAtWithState(h, at, &p.internalState)
}

// FindAtWithState is FindAt using external state.
func (p *PikeVM) FindAtWithState(h []byte, at int, s *PikeVMState) (int, error) {
	return p.run(h, at, s, false)
}

// Search tries an anchored match at each candidate offset proposed by next,
// beginning at at, and returns the span of the first one that succeeds.
// A nil next proposes every offset.
func (p *PikeVM) Search(h []byte, at int, next NextFunc) (int, int, error) {
	return p.SearchWithState(h, at, next, &p.internalState)
}

// SearchWithState is Search using external state.
func (p *PikeVM) SearchWithState(h []byte, at int, next NextFunc, s *PikeVMState) (int, int, error) {
	if at < 0 || at > len(h) {
		return -1, -1, nil
	}
	return search(h, at, next, func(h []byte, pos int) (int, error) {
		return p.run(h, pos, s, false)
	})
}

// IsMatchFrom reports whether a match starts at any candidate offset
// proposed by next at or after at. Unlike Search it makes a single pass
// over the input, adding a start thread at each candidate with the lowest
// priority, since only the existence of a match matters.
func (p *PikeVM) IsMatchFrom(h []byte, at int, next NextFunc) (bool, error) {
	return p.IsMatchFromWithState(h, at, next, &p.internalState)
}

// IsMatchFromWithState is IsMatchFrom using external state.
func (p *PikeVM) IsMatchFromWithState(h []byte, at int, next NextFunc, s *PikeVMState) (bool, error) {
	if at < 0 || at > len(h) {
		return false, nil
	}
	if next == nil {
		next = EveryPosition(len(h))
	}
	pos := next(at)
	if pos < 0 || pos > len(h) {
		return false, nil
	}

	s.clist.Clear()
	s.nlist.Clear()
	cand := pos
	for {
		if pos == cand {
			if err := p.addThread(s, s.clist, 0); err != nil {
				return false, err
			}
		}

		matched, w, err := p.step(h, pos, s, true)
		if err != nil || matched >= 0 {
			return matched >= 0, err
		}
		if w == 0 {
			return false, nil
		}

		if cand >= 0 && cand <= pos {
			cand = next(pos + w)
		}
		s.clist, s.nlist = s.nlist, s.clist
		s.nlist.Clear()

		if s.clist.Len() == 0 {
			if cand < 0 || cand > len(h) {
				return false, nil
			}
			pos = cand
			continue
		}
		pos += w
	}
}

// run executes the program anchored at at. With earliest set it returns as
// soon as any thread reaches Match; otherwise it returns the end of the
// leftmost-first match.
func (p *PikeVM) run(h []byte, at int, s *PikeVMState, earliest bool) (int, error) {
	if at < 0 || at > len(h) {
		return -1, nil
	}

	s.clist.Clear()
	s.nlist.Clear()
	if err := p.addThread(s, s.clist, 0); err != nil {
		return -1, err
	}

	last := -1
	pos := at
	for s.clist.Len() > 0 {
		matched, w, err := p.step(h, pos, s, earliest)
		if err != nil {
			return -1, err
		}
		if matched >= 0 {
			last = matched
			if earliest {
				return last, nil
			}
		}
		if w == 0 {
			break
		}
		s.clist, s.nlist = s.nlist, s.clist
		s.nlist.Clear()
		pos += w
	}
	return last, nil
}

// step advances every thread in clist over the code point at pos, filling
// nlist. It returns pos if a thread reached Match, or -1, together with the
// width of the code point consumed. Threads after a Match have lower
// priority than it and are dropped, so nlist only holds threads that can
// still produce a preferred match.
func (p *PikeVM) step(h []byte, pos int, s *PikeVMState, earliest bool) (int, int, error) {
	r, w := Decode(h, pos)
	matched := -1
	for _, v := range s.clist.Values() {
		inst := p.prog[v]
		switch inst.Op {
		case OpMatch:
			matched = pos
		case OpChar:
			if w == 0 || inst.Rune != r {
				continue
			}
			next, ok := conv.AddUint32(v, 1)
			if !ok {
				return -1, w, &PCError{PC: Addr(v), Err: ErrPCOverflow}
			}
			if err := p.addThread(s, s.nlist, Addr(next)); err != nil {
				return -1, w, err
			}
		}
		if matched >= 0 {
			break
		}
	}
	return matched, w, nil
}

// addThread adds pc and every address reachable from it through Jump and
// Split to list, in priority order.
func (p *PikeVM) addThread(s *PikeVMState, list *sparse.Set, pc Addr) error {
	s.stack = append(s.stack[:0], pc)
	for len(s.stack) > 0 {
		pc := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		inst, ok := p.prog.At(pc)
		if !ok {
			return &PCError{PC: pc, Err: ErrInvalidPC}
		}
		if !list.Insert(uint32(pc)) {
			continue
		}

		switch inst.Op {
		case OpJump:
			s.stack = append(s.stack, inst.X)
		case OpSplit:
			// Y is pushed first so X is explored first.
			s.stack = append(s.stack, inst.Y, inst.X)
		case OpChar, OpMatch:
		default:
			return &PCError{PC: pc, Err: ErrInvalidProgram}
		}
	}
	return nil
}
