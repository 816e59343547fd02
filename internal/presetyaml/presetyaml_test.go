package presetyaml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "phase0.yaml", `# Mainnet preset - Phase0

# Misc
MAX_COMMITTEES_PER_SLOT: 64
TARGET_COMMITTEE_SIZE: 128
SHUFFLE_ROUND_COUNT: 90
# 2**6 (= 64)
BASE_REWARD_FACTOR: 64
EFFECTIVE_BALANCE_INCREMENT: 1000000000
SLOTS_PER_HISTORICAL_ROOT: 8192
`)
	writeFile(t, dir, "altair.yaml", `
INACTIVITY_PENALTY_QUOTIENT_ALTAIR: 50331648
SYNC_COMMITTEE_SIZE: "2**9 (= 512)"
MAX_EFFECTIVE_BALANCE: "32,000,000,000"
UPDATE_TIMEOUT: 8192 # SLOTS_PER_EPOCH * EPOCHS_PER_SYNC_COMMITTEE_PERIOD
EMPTY:
NULLED: ~
LIST: [1, 2]
NESTED:
  A: 1
NAME: mainnet
"#QUOTED": 5
1: 7
`)
	writeFile(t, dir, "README.md", "SLOTS_PER_EPOCH: 32\n")

	values, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, Values{
		"MAX_COMMITTEES_PER_SLOT":            64,
		"TARGET_COMMITTEE_SIZE":              128,
		"SHUFFLE_ROUND_COUNT":                90,
		"BASE_REWARD_FACTOR":                 64,
		"EFFECTIVE_BALANCE_INCREMENT":        1_000_000_000,
		"SLOTS_PER_HISTORICAL_ROOT":          8192,
		"INACTIVITY_PENALTY_QUOTIENT_ALTAIR": 50_331_648,
		"SYNC_COMMITTEE_SIZE":                512,
		"MAX_EFFECTIVE_BALANCE":              32_000_000_000,
		"UPDATE_TIMEOUT":                     8192,
	}, values)
}

func TestLoadDirLastFileWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "SLOTS_PER_EPOCH: 32\n")
	writeFile(t, dir, "b.yaml", "SLOTS_PER_EPOCH: 8\n")

	values, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), values["SLOTS_PER_EPOCH"])
}

func TestLoadDirErrors(t *testing.T) {
	t.Run("missing dir", func(t *testing.T) {
		_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("top level list", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.yaml", "- 1\n- 2\n")
		_, err := LoadDir(dir)
		assert.ErrorIs(t, err, ErrNotMapping)
		assert.ErrorContains(t, err, "bad.yaml")
	})

	t.Run("empty document", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "empty.yaml", "# nothing here\n")
		_, err := LoadDir(dir)
		assert.ErrorIs(t, err, ErrNotMapping)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "broken.yaml", "A: [1, 2\n")
		_, err := LoadDir(dir)
		assert.ErrorContains(t, err, "broken.yaml")
	})
}

func TestValuesKeysSorted(t *testing.T) {
	v := Values{"B": 1, "A": 2, "C": 3}
	assert.Equal(t, []string{"A", "B", "C"}, v.Keys())
}
