package rustsrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/presetcheck/internal/safemath"
)

func evalText(t *testing.T, expr string) (uint64, error) {
	t.Helper()
	toks, err := Lex(expr)
	require.NoError(t, err)
	return evalConst(toks)
}

func TestEvalConst(t *testing.T) {
	tests := []struct {
		expr string
		want uint64
	}{
		{"64", 64},
		{"1_000_000_000", 1_000_000_000},
		{"64_u64", 64},
		{"32u8", 32},
		{"0x10", 16},
		{"0b101", 5},
		{"nonzero!(64_u64)", 64},
		{"nonzero!(1_000_000_000_u64)", 1_000_000_000},
		{"nonzero!(1_u64 << 25)", 1 << 25},
		{"NonZeroU64::MIN", 1},
		{"NonZeroU64::new(128).unwrap()", 128},
		{"NonZeroU64::new(1_u64 << 26).unwrap()", 1 << 26},
		{`NonZeroU64::new(4).expect("nonzero")`, 4},
		{"NonZeroU64::new(4)", 4},
		{"1 << 13", 8192},
		{"3_u64 << 24", 3 << 24},
		{"(1 << 2) << 3", 32},
		{"(7)", 7},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := evalText(t, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalConstUnsupported(t *testing.T) {
	for _, expr := range []string{
		"",
		"OTHER",
		"2 * 3",
		"1 +",
		"nonzero!(x)",
		"nonzero!(1",
		"NonZeroU64::MAX",
		"NonZeroU64::new(1).map(f)",
		"u64::MAX",
		"1 << 2 3",
	} {
		_, err := evalText(t, expr)
		assert.ErrorIs(t, err, errUnsupported, expr)
	}
}

func TestEvalConstShiftOverflow(t *testing.T) {
	_, err := evalText(t, "1_u64 << 64")
	assert.ErrorIs(t, err, safemath.ErrOverflow)

	_, err = evalText(t, "3 << 63")
	assert.ErrorIs(t, err, safemath.ErrOverflow)
}
