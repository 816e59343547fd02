// Package typenum resolves the type-level integer tokens (U64, U8192, ...)
// used by the Rust presets.
package typenum

import (
	"regexp"
	"strconv"
)

var tokenPattern = regexp.MustCompile(`^U\d+$`)

var known = map[string]uint64{}

func init() {
	for _, v := range []uint64{
		1, 2, 4, 8, 16, 17, 32, 64, 128, 256, 512, 1024, 2048, 4096, 8192,
		65_536,
		262_144,
		1_048_576,
		134_217_728,
		16_777_216,
		1_073_741_824,
		1_099_511_627_776,
	} {
		known[Token(v)] = v
	}
}

// IsToken reports whether s has the shape of a typenum token, known or not.
func IsToken(s string) bool {
	return tokenPattern.MatchString(s)
}

// Resolve returns the integer bound to a known token.
func Resolve(token string) (uint64, bool) {
	v, ok := known[token]
	return v, ok
}

// Token derives the token name for a value.
func Token(v uint64) string {
	return "U" + strconv.FormatUint(v, 10)
}
