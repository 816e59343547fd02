// Package literal normalizes the numeric encodings found in preset YAML files
// into a single uint64 representation.
//
// Recognized shapes, tried in order:
//
//	64                     plain integer
//	1,000,000,000          comma-grouped integer
//	2**6 (= 64)            parenthesized computed-value annotation
//	2**12                  first digit run (with separators) anywhere in the text
//
// Anything after a '#' is an inline comment and is dropped first.
package literal

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrUnparseable = errors.New("unparseable numeric literal")
	ErrNegative    = errors.New("negative values are not supported")
)

var (
	annotationPattern = regexp.MustCompile(`\(=\s*([0-9,]+)\s*\)`)
	digitRunPattern   = regexp.MustCompile(`\d[\d,]*`)
)

// Normalize converts a raw preset value into an integer. The boolean result is
// false when raw carries no value at all (nil or an empty string), which is not
// an error. Every other shape that cannot be read fails with ErrUnparseable
// naming the key and the raw text.
func Normalize(raw any, key string) (uint64, bool, error) {
	switch v := raw.(type) {
	case nil:
		return 0, false, nil
	case uint64:
		return v, true, nil
	case uint:
		return uint64(v), true, nil
	case uint32:
		return uint64(v), true, nil
	case int:
		return fromSigned(int64(v), key)
	case int64:
		return fromSigned(v, key)
	case int32:
		return fromSigned(int64(v), key)
	case string:
		return normalizeString(v, key)
	default:
		return 0, false, fmt.Errorf("parse YAML value for %q: %#v: %w", key, raw, ErrUnparseable)
	}
}

func fromSigned(v int64, key string) (uint64, bool, error) {
	if v < 0 {
		return 0, false, fmt.Errorf("parse YAML value for %q: %d: %w", key, v, ErrNegative)
	}
	return uint64(v), true, nil
}

func normalizeString(raw, key string) (uint64, bool, error) {
	s, _, _ := strings.Cut(raw, "#")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}

	plain := strings.ReplaceAll(s, ",", "")
	if n, err := strconv.ParseUint(plain, 10, 64); err == nil {
		return n, true, nil
	}
	if n, err := strconv.ParseInt(plain, 10, 64); err == nil {
		// leading '+'
		if n >= 0 {
			return uint64(n), true, nil
		}
		return 0, false, fmt.Errorf("parse YAML value for %q: %q: %w", key, raw, ErrNegative)
	}

	if m := annotationPattern.FindStringSubmatch(s); m != nil {
		return parseGrouped(m[1], raw, key)
	}
	if m := digitRunPattern.FindString(s); m != "" {
		return parseGrouped(m, raw, key)
	}

	return 0, false, fmt.Errorf("parse YAML value for %q: %q: %w", key, raw, ErrUnparseable)
}

func parseGrouped(digits, raw, key string) (uint64, bool, error) {
	n, err := strconv.ParseUint(strings.ReplaceAll(digits, ",", ""), 10, 64)
	if err != nil {
		// uint64 overflow
		return 0, false, fmt.Errorf("parse YAML value for %q: %q: %w", key, raw, ErrUnparseable)
	}
	return n, true, nil
}
