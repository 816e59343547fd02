package report

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/eigerco/presetcheck/internal/reconcile"
)

// Diff renders the mismatched parameters of a preset as a unified diff from
// the YAML side to the Rust side. It is empty when the preset passed.
func Diff(r reconcile.Result) string {
	if r.Passed() {
		return ""
	}
	var yamlLines, rustLines []string
	for _, m := range r.Mismatches {
		yamlLines = append(yamlLines, line(m.Name, m.YAML))
		rustLines = append(rustLines, line(m.Name, rustValue(m)))
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        yamlLines,
		B:        rustLines,
		FromFile: "yaml/" + r.Preset,
		ToFile:   "rust/" + r.Preset,
		Context:  0,
	})
	if err != nil {
		return ""
	}
	return diff
}

// rustValue shows the token of an unknown typenum, which has no numeric value.
func rustValue(m reconcile.Mismatch) fmt.Stringer {
	if m.Kind == reconcile.UnknownTypeToken {
		return token(m.Token)
	}
	return m.Rust
}

type token string

func (t token) String() string { return string(t) }

func line(name string, v fmt.Stringer) string {
	return fmt.Sprintf("%s = %s\n", name, v)
}
