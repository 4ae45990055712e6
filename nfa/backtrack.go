package nfa

import (
	"github.com/coregx/regvm/internal/conv"
)

// BacktrackerConfig bounds the memory a Backtracker may use.
type BacktrackerConfig struct {
	// MaxVisitedBits limits the visited set, which needs one bit per
	// (address, position) pair: len(prog) * (len(input)+1).
	// Default: 256 * 1024 * 8 = 2M bits = 256KB
	MaxVisitedBits int

	// MaxStackFrames limits the number of pending Split alternatives.
	// Default: 1 << 20
	MaxStackFrames int
}

// DefaultBacktrackerConfig returns the default backtracker limits.
func DefaultBacktrackerConfig() BacktrackerConfig {
	return BacktrackerConfig{
		MaxVisitedBits: 256 * 1024 * 8,
		MaxStackFrames: 1 << 20,
	}
}

// frame is a pending alternative: resume at pc with the input at pos.
type frame struct {
	pc  Addr
	pos int
}

// Backtracker executes a Program depth-first. At a Split it tries X with
// the current position and records Y as a pending alternative; a failed
// path resumes the most recently recorded alternative.
//
// Recursion is replaced by an explicit work-stack, so pattern nesting never
// grows the goroutine stack. A bit vector of visited (address, position)
// pairs prunes states already explored, which bounds the work of one search
// by len(prog) * (len(input)+1) and terminates loops whose body matches the
// empty string.
//
// A Backtracker is not safe for concurrent use.
type Backtracker struct {
	prog   Program
	config BacktrackerConfig

	// visited is a bit vector tracking (pc, pos) pairs.
	// Layout: bit at index (pc * (inputLen+1) + pos).
	visited  []uint64
	inputLen int

	stack []frame
}

// NewBacktracker creates a backtracker for prog with the default limits.
func NewBacktracker(prog Program) *Backtracker {
	return NewBacktrackerWithConfig(prog, DefaultBacktrackerConfig())
}

// NewBacktrackerWithConfig creates a backtracker for prog with the given
// limits. Non-positive limits fall back to their defaults.
func NewBacktrackerWithConfig(prog Program, config BacktrackerConfig) *Backtracker {
	def := DefaultBacktrackerConfig()
	if config.MaxVisitedBits <= 0 {
		config.MaxVisitedBits = def.MaxVisitedBits
	}
	if config.MaxStackFrames <= 0 {
		config.MaxStackFrames = def.MaxStackFrames
	}
	return &Backtracker{prog: prog, config: config}
}

// Program returns the program being executed.
func (b *Backtracker) Program() Program {
	return b.prog
}

// CanHandle reports whether an input of haystackLen bytes fits the visited
// set. Callers that cannot fall back to another evaluator get
// ErrVisitedLimit from the search methods instead.
func (b *Backtracker) CanHandle(haystackLen int) bool {
	if haystackLen < 0 {
		return false
	}
	bitsNeeded := uint64(len(b.prog)) * (uint64(haystackLen) + 1)
	return bitsNeeded <= uint64(b.config.MaxVisitedBits)
}

// reset prepares the backtracker for a new search.
func (b *Backtracker) reset(haystackLen int) {
	b.inputLen = haystackLen

	bitsNeeded := len(b.prog) * (haystackLen + 1)
	wordsNeeded := (bitsNeeded + 63) / 64

	if cap(b.visited) >= wordsNeeded {
		b.visited = b.visited[:wordsNeeded]
		clear(b.visited)
	} else {
		b.visited = make([]uint64, wordsNeeded)
	}
	b.stack = b.stack[:0]
}

// shouldVisit marks (pc, pos) as visited and reports whether it was new.
func (b *Backtracker) shouldVisit(pc Addr, pos int) bool {
	idx := int(pc)*(b.inputLen+1) + pos
	word := idx / 64
	bit := uint64(1) << (idx % 64)
	if b.visited[word]&bit != 0 {
		return false
	}
	b.visited[word] |= bit
	return true
}

// MatchAt reports whether the program matches h starting exactly at at.
// Matching is a prefix test: input after the match is ignored.
func (b *Backtracker) MatchAt(h []byte, at int) (bool, error) {
	end, err := b.FindAt(h, at)
	return end >= 0, err
}

// FindAt returns the end offset of the leftmost-first match that starts at
// at, or -1 if there is none.
func (b *Backtracker) FindAt(h []byte, at int) (int, error) {
	if at < 0 || at > len(h) {
		return -1, nil
	}
	if !b.CanHandle(len(h)) {
		return -1, ErrVisitedLimit
	}
	b.reset(len(h))
	return b.run(h, at)
}

// Search tries an anchored match at each candidate offset proposed by next,
// beginning at at, and returns the span of the first one that succeeds.
// A nil next proposes every offset. When nothing matches it returns
// (-1, -1, nil).
//
// The visited set is shared across candidates: a (pc, pos) pair that failed
// for an earlier start fails for every later one.
func (b *Backtracker) Search(h []byte, at int, next NextFunc) (int, int, error) {
	if at < 0 || at > len(h) {
		return -1, -1, nil
	}
	if !b.CanHandle(len(h)) {
		return -1, -1, ErrVisitedLimit
	}
	b.reset(len(h))
	return search(h, at, next, b.run)
}

// run executes the program from address 0 at position at and returns the
// end of the first path to reach Match.
func (b *Backtracker) run(h []byte, at int) (int, error) {
	b.stack = append(b.stack[:0], frame{pc: 0, pos: at})

	for len(b.stack) > 0 {
		f := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]
		pc, pos := f.pc, f.pos

	path:
		for {
			inst, ok := b.prog.At(pc)
			if !ok {
				return -1, &PCError{PC: pc, Err: ErrInvalidPC}
			}
			if !b.shouldVisit(pc, pos) {
				break
			}

			switch inst.Op {
			case OpMatch:
				return pos, nil

			case OpChar:
				r, w := Decode(h, pos)
				if w == 0 || r != inst.Rune {
					break path
				}
				next, ok := conv.AddUint32(uint32(pc), 1)
				if !ok {
					return -1, &PCError{PC: pc, Err: ErrPCOverflow}
				}
				pc = Addr(next)
				pos += w

			case OpJump:
				pc = inst.X

			case OpSplit:
				if len(b.stack) >= b.config.MaxStackFrames {
					return -1, ErrStackExhausted
				}
				b.stack = append(b.stack, frame{pc: inst.Y, pos: pos})
				pc = inst.X

			default:
				return -1, &PCError{PC: pc, Err: ErrInvalidProgram}
			}
		}
	}
	return -1, nil
}
