package safemath

import (
	"errors"
	"math/bits"
)

var ErrOverflow = errors.New("number overflow")

func Mul64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// Shl64 computes a << n and reports false if any set bit would be shifted out.
func Shl64(a uint64, n uint64) (uint64, bool) {
	if a == 0 {
		return 0, true
	}
	if n >= 64 || uint64(bits.LeadingZeros64(a)) < n {
		return 0, false
	}
	return a << n, true
}

// Div64 performs floor division and reports false for a zero divisor.
func Div64(a, b uint64) (uint64, bool) {
	if b == 0 {
		return 0, false
	}
	return a / b, true
}
