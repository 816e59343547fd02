package naming

import (
	"strings"
	"unicode"
)

// UpperSnake converts a CamelCase type-level name into the UPPER_SNAKE_CASE
// form used for preset keys and value-level constants.
//
// A separator is inserted before an upper-case letter when the previous rune
// is lower-case, when it closes an acronym run (upper-case followed by
// lower-case), or when it follows a digit and starts a new word. Digits never
// force a boundary themselves, so "Eth1" stays "ETH1".
func UpperSnake(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + len(name)/3)

	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			switch {
			case unicode.IsLower(prev):
				b.WriteByte('_')
			case unicode.IsUpper(prev) && nextLower:
				b.WriteByte('_')
			case unicode.IsDigit(prev) && nextLower:
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
