// Package preset describes the presets to verify and the comparison rules
// shared by all of them.
package preset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultRules []byte

var ErrInvalidRules = errors.New("invalid preset rules")

type Op string

const (
	OpDiv Op = "div"
	OpMul Op = "mul"
)

func (o Op) Symbol() string {
	switch o {
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return string(o)
	}
}

// Preset is one named configuration variant.
type Preset struct {
	Name    string `yaml:"name"`
	YAMLDir string `yaml:"yaml_dir"`
	// RustFile is the local reference file; upstream presets leave it empty
	// and read the fetched reference text.
	RustFile string `yaml:"rust_file"`
	Local    bool   `yaml:"local"`
	// Implementor is the Rust type implementing the preset trait. Defaults to
	// the capitalized name.
	Implementor string `yaml:"implementor"`
}

// Title is the capitalized preset name.
func (p Preset) Title() string {
	if p.Name == "" {
		return ""
	}
	return strings.ToUpper(p.Name[:1]) + p.Name[1:]
}

// Computed is a type-level parameter whose expected value is derived from two
// YAML values.
type Computed struct {
	Name  string `yaml:"name"`
	Op    Op     `yaml:"op"`
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

// Source describes the operands for reports, e.g. "computed: A / B".
func (c Computed) Source() string {
	return fmt.Sprintf("computed: %s %s %s", c.Left, c.Op.Symbol(), c.Right)
}

type Exclusions struct {
	InputsUnusedInReference []string `yaml:"inputs_unused_in_reference"`
	ComputedInReference     []string `yaml:"computed_in_reference"`
}

// Excluded reports whether a YAML key is exempt from the reverse check.
func (e Exclusions) Excluded(key string) bool {
	for _, list := range [][]string{e.InputsUnusedInReference, e.ComputedInReference} {
		for _, k := range list {
			if k == key {
				return true
			}
		}
	}
	return false
}

type Reference struct {
	Tag string `yaml:"tag"`
	URL string `yaml:"url"`
}

// ResolvedURL substitutes the tag into the URL template.
func (r Reference) ResolvedURL() string {
	return strings.ReplaceAll(r.URL, "{tag}", r.Tag)
}

// Rules is the full verification setup.
type Rules struct {
	Reference  Reference  `yaml:"reference"`
	Presets    []Preset   `yaml:"presets"`
	Computed   []Computed `yaml:"computed"`
	Exclusions Exclusions `yaml:"exclusions"`
}

// ComputedFor returns the computed rule for a type-level name.
func (r *Rules) ComputedFor(name string) (Computed, bool) {
	for _, c := range r.Computed {
		if c.Name == name {
			return c, true
		}
	}
	return Computed{}, false
}

// NeedsReference reports whether any preset reads the upstream reference text.
func (r *Rules) NeedsReference() bool {
	for _, p := range r.Presets {
		if !p.Local {
			return true
		}
	}
	return false
}

// Select keeps only the named presets, in rules order.
func (r *Rules) Select(names []string) error {
	if len(names) == 0 {
		return nil
	}
	known := map[string]bool{}
	for _, p := range r.Presets {
		known[p.Name] = true
	}
	wanted := map[string]bool{}
	for _, n := range names {
		if !known[n] {
			return fmt.Errorf("%w: unknown preset %q", ErrInvalidRules, n)
		}
		wanted[n] = true
	}
	var kept []Preset
	for _, p := range r.Presets {
		if wanted[p.Name] {
			kept = append(kept, p)
		}
	}
	r.Presets = kept
	return nil
}

// Default returns the rules embedded in the binary.
func Default() (*Rules, error) {
	return Parse(defaultRules)
}

// Load reads rules from a file.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules load failed (%s): %w", path, err)
	}
	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return rules, nil
}

// Parse decodes and validates rules.
func Parse(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	for i := range rules.Presets {
		if rules.Presets[i].Implementor == "" {
			rules.Presets[i].Implementor = rules.Presets[i].Title()
		}
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

func (r *Rules) Validate() error {
	if len(r.Presets) == 0 {
		return fmt.Errorf("%w: no presets", ErrInvalidRules)
	}
	seen := map[string]bool{}
	for i, p := range r.Presets {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: preset[%d] missing name", ErrInvalidRules, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate preset %q", ErrInvalidRules, p.Name)
		}
		seen[p.Name] = true
		if strings.TrimSpace(p.YAMLDir) == "" {
			return fmt.Errorf("%w: preset %q missing yaml_dir", ErrInvalidRules, p.Name)
		}
		if p.Local && strings.TrimSpace(p.RustFile) == "" {
			return fmt.Errorf("%w: local preset %q missing rust_file", ErrInvalidRules, p.Name)
		}
	}
	if r.NeedsReference() && strings.TrimSpace(r.Reference.URL) == "" {
		return fmt.Errorf("%w: upstream presets need reference.url", ErrInvalidRules)
	}
	for _, c := range r.Computed {
		if c.Op != OpDiv && c.Op != OpMul {
			return fmt.Errorf("%w: computed %q has unknown op %q", ErrInvalidRules, c.Name, c.Op)
		}
		if c.Left == "" || c.Right == "" {
			return fmt.Errorf("%w: computed %q needs left and right", ErrInvalidRules, c.Name)
		}
	}
	return nil
}
