package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	rules, err := Default()
	require.NoError(t, err)

	require.Len(t, rules.Presets, 3)
	assert.Equal(t, Preset{
		Name:        "gnosis",
		YAMLDir:     "spec/presets/gnosis",
		RustFile:    "src/preset_gnosis.rs",
		Local:       true,
		Implementor: "Gnosis",
	}, rules.Presets[0])
	assert.Equal(t, "Mainnet", rules.Presets[1].Implementor)
	assert.Equal(t, "Minimal", rules.Presets[2].Implementor)
	assert.False(t, rules.Presets[2].Local)
	assert.True(t, rules.NeedsReference())

	assert.Equal(t,
		"https://raw.githubusercontent.com/grandinetech/grandine/refs/tags/2.0.1/types/src/preset.rs",
		rules.Reference.ResolvedURL())

	c, ok := rules.ComputedFor("EpochsPerHistoricalRoot")
	require.True(t, ok)
	assert.Equal(t, "computed: SLOTS_PER_HISTORICAL_ROOT / SLOTS_PER_EPOCH", c.Source())
	_, ok = rules.ComputedFor("SlotsPerEpoch")
	assert.False(t, ok)

	assert.True(t, rules.Exclusions.Excluded("SLOTS_PER_HISTORICAL_ROOT"))
	assert.True(t, rules.Exclusions.Excluded("UPDATE_TIMEOUT"))
	assert.True(t, rules.Exclusions.Excluded("CELLS_PER_EXT_BLOB"))
	assert.False(t, rules.Exclusions.Excluded("SLOTS_PER_EPOCH"))
}

func TestSelect(t *testing.T) {
	rules, err := Default()
	require.NoError(t, err)

	require.NoError(t, rules.Select([]string{"minimal", "gnosis"}))
	require.Len(t, rules.Presets, 2)
	assert.Equal(t, "gnosis", rules.Presets[0].Name)
	assert.Equal(t, "minimal", rules.Presets[1].Name)

	assert.ErrorIs(t, rules.Select([]string{"holesky"}), ErrInvalidRules)
	require.NoError(t, rules.Select(nil))
	assert.Len(t, rules.Presets, 2)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"no presets", "reference: {url: x}\n", "no presets"},
		{"missing name", "presets: [{yaml_dir: a, local: true, rust_file: b}]\n", "missing name"},
		{"duplicate", "reference: {url: x}\npresets: [{name: a, yaml_dir: a}, {name: a, yaml_dir: b}]\n", "duplicate"},
		{"missing dir", "reference: {url: x}\npresets: [{name: a}]\n", "missing yaml_dir"},
		{"local without file", "presets: [{name: a, yaml_dir: a, local: true}]\n", "missing rust_file"},
		{"upstream without url", "presets: [{name: a, yaml_dir: a}]\n", "reference.url"},
		{"bad op", "presets: [{name: a, yaml_dir: a, local: true, rust_file: f}]\ncomputed: [{name: X, op: pow, left: A, right: B}]\n", "unknown op"},
		{"missing operand", "presets: [{name: a, yaml_dir: a, local: true, rust_file: f}]\ncomputed: [{name: X, op: mul, left: A}]\n", "left and right"},
		{"not yaml", "presets: [", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalidRules)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
presets:
  - name: devnet
    yaml_dir: presets/devnet
    rust_file: src/devnet.rs
    local: true
    implementor: DevNet
`), 0o644))

	rules, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rules.Presets, 1)
	assert.Equal(t, "DevNet", rules.Presets[0].Implementor)
	assert.Equal(t, "Devnet", rules.Presets[0].Title())
	assert.False(t, rules.NeedsReference())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
