package nfa

import "unicode/utf8"

// invalidRune is returned by Decode for a byte that does not begin a valid
// UTF-8 sequence. It is negative, so no Char instruction ever equals it.
const invalidRune rune = -1

// Decode returns the code point at byte offset pos of h and its width in
// bytes. At or past the end of h it returns (0, 0). An invalid byte decodes
// as a width-1 value that matches no pattern character.
func Decode(h []byte, pos int) (rune, int) {
	if pos < 0 || pos >= len(h) {
		return 0, 0
	}
	// Fast path for ASCII
	if c := h[pos]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	r, w := utf8.DecodeRune(h[pos:])
	if r == utf8.RuneError && w == 1 {
		return invalidRune, 1
	}
	return r, w
}

// NextFunc returns the smallest offset at or after pos where a match may
// start, or -1 when there is none. pos may equal the input length.
//
// Evaluators only call it with offsets on code point boundaries and expect
// such offsets back.
type NextFunc func(pos int) int

// EveryPosition returns a NextFunc that proposes every offset of an input
// of length n, including n itself.
func EveryPosition(n int) NextFunc {
	return func(pos int) int {
		if pos > n {
			return -1
		}
		return pos
	}
}

// search runs an anchored find at each candidate offset proposed by next,
// starting at at, and returns the first span found.
func search(h []byte, at int, next NextFunc, find func(h []byte, pos int) (int, error)) (int, int, error) {
	if next == nil {
		next = EveryPosition(len(h))
	}
	pos := next(at)
	for pos >= 0 && pos <= len(h) {
		end, err := find(h, pos)
		if err != nil {
			return -1, -1, err
		}
		if end >= 0 {
			return pos, end, nil
		}
		_, w := Decode(h, pos)
		if w == 0 {
			break
		}
		pos = next(pos + w)
	}
	return -1, -1, nil
}
