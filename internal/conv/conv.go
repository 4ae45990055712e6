// Package conv provides checked integer conversions for the regex engine.
//
// Unlike a plain conversion, these report overflow instead of wrapping, so
// callers can turn it into an error (a program too large for its address
// width is a compile failure, not a panic).
package conv

import "math"

// IntToUint32 converts n to uint32, reporting whether it fits.
func IntToUint32(n int) (uint32, bool) {
	// Compare as uint so 32-bit platforms do not overflow int.
	if n < 0 || uint64(n) > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// AddUint32 returns a+b, reporting whether the sum fits in a uint32.
func AddUint32(a, b uint32) (uint32, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}
