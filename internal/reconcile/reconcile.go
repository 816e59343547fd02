// Package reconcile cross-checks the parameters extracted from the Rust
// reference against the values of the preset YAML files.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/eigerco/presetcheck/internal/naming"
	"github.com/eigerco/presetcheck/internal/preset"
	"github.com/eigerco/presetcheck/internal/presetyaml"
	"github.com/eigerco/presetcheck/internal/rustsrc"
	"github.com/eigerco/presetcheck/internal/safemath"
	"github.com/eigerco/presetcheck/internal/typenum"
	"github.com/eigerco/presetcheck/pkg/log"
)

// Result is the outcome for one preset.
type Result struct {
	Preset        string
	TypesChecked  int
	ConstsChecked int
	// ReverseOK is true when every YAML key has a Rust counterpart.
	ReverseOK  bool
	Mismatches []Mismatch
}

func (r Result) Checked() int { return r.TypesChecked + r.ConstsChecked }

func (r Result) Passed() bool { return len(r.Mismatches) == 0 }

type Reconciler struct {
	rules *preset.Rules
}

func New(rules *preset.Rules) *Reconciler {
	return &Reconciler{rules: rules}
}

// Reconcile compares one preset in both directions.
func (r *Reconciler) Reconcile(name string, ref rustsrc.Preset, values presetyaml.Values) Result {
	res := Result{Preset: name, ReverseOK: true}

	for _, rustName := range sortedKeys(ref.Types) {
		token := ref.Types[rustName]
		if m, ok := r.checkType(rustName, token, values); !ok {
			res.Mismatches = append(res.Mismatches, m)
		}
		res.TypesChecked++
	}

	for _, rustName := range sortedKeys(ref.Consts) {
		rustVal := ref.Consts[rustName]
		yamlVal, ok := values[rustName]
		res.ConstsChecked++
		switch {
		case !ok:
			res.Mismatches = append(res.Mismatches, Mismatch{
				Kind:        MissingInConfig,
				Name:        rustName,
				Rust:        Some(rustVal),
				Description: "missing in YAML",
			})
		case yamlVal != rustVal:
			res.Mismatches = append(res.Mismatches, Mismatch{
				Kind: ValueMismatch,
				Name: rustName,
				YAML: Some(yamlVal),
				Rust: Some(rustVal),
			})
		}
	}

	rustKeys := make(map[string]bool, len(ref.Types)+len(ref.Consts))
	for rustName := range ref.Types {
		rustKeys[naming.UpperSnake(rustName)] = true
	}
	for rustName := range ref.Consts {
		rustKeys[rustName] = true
	}
	for _, key := range values.Keys() {
		if r.rules.Exclusions.Excluded(key) || rustKeys[key] {
			continue
		}
		res.Mismatches = append(res.Mismatches, Mismatch{
			Kind:        MissingInReference,
			Name:        key,
			YAML:        Some(values[key]),
			Description: "missing in Rust",
		})
		res.ReverseOK = false
	}

	log.Reconcile.Debug().
		Str("preset", name).
		Int("types", res.TypesChecked).
		Int("consts", res.ConstsChecked).
		Int("mismatches", len(res.Mismatches)).
		Msg("reconciled preset")
	return res
}

// checkType compares one type-level parameter. Missing YAML values are
// reported before unknown tokens, unknown tokens before value differences.
func (r *Reconciler) checkType(rustName, token string, values presetyaml.Values) (Mismatch, bool) {
	expected, ok, source := r.expected(rustName, values)
	if !ok {
		return Mismatch{
			Kind:        MissingInConfig,
			Name:        rustName,
			Token:       token,
			Description: fmt.Sprintf("Missing in YAML (%s)", source),
		}, false
	}

	resolved, known := typenum.Resolve(token)
	if !known {
		return Mismatch{
			Kind:        UnknownTypeToken,
			Name:        rustName,
			YAML:        Some(expected),
			Token:       token,
			Description: fmt.Sprintf("Unknown typenum %s", token),
		}, false
	}
	if resolved != expected {
		return Mismatch{
			Kind:        ValueMismatch,
			Name:        rustName,
			YAML:        Some(expected),
			Rust:        Some(resolved),
			Token:       token,
			Description: fmt.Sprintf("Mismatch: YAML=%d, Rust=%d", expected, resolved),
		}, false
	}
	return Mismatch{}, true
}

// expected returns the YAML-side value of a type-level parameter and a
// description of where it came from.
func (r *Reconciler) expected(rustName string, values presetyaml.Values) (uint64, bool, string) {
	if c, ok := r.rules.ComputedFor(rustName); ok {
		left, okLeft := values[c.Left]
		right, okRight := values[c.Right]
		if !okLeft || !okRight {
			return 0, false, c.Source()
		}
		switch c.Op {
		case preset.OpMul:
			v, ok := safemath.Mul64(left, right)
			if !ok {
				return 0, false, c.Source() + " (overflow)"
			}
			return v, true, c.Source()
		case preset.OpDiv:
			v, ok := safemath.Div64(left, right)
			if !ok {
				return 0, false, c.Source() + " (divisor is zero)"
			}
			return v, true, c.Source()
		default:
			return 0, false, fmt.Sprintf("%s (unsupported op %q)", c.Source(), c.Op)
		}
	}

	key := naming.UpperSnake(rustName)
	v, ok := values[key]
	return v, ok, key
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
