// Package report runs the verification over every preset and prints the
// human readable summary.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/eigerco/presetcheck/internal/fetch"
	"github.com/eigerco/presetcheck/internal/preset"
	"github.com/eigerco/presetcheck/internal/presetyaml"
	"github.com/eigerco/presetcheck/internal/reconcile"
	"github.com/eigerco/presetcheck/internal/rustsrc"
	"github.com/eigerco/presetcheck/pkg/log"
)

const (
	Title = "Gnosis, Mainnet, and Minimal Preset Verification"
	width = 70
)

var (
	ErrVerificationFailed = errors.New("verification failed")
	ErrMissingReference   = errors.New("upstream reference text not provided")
)

// Sources are the inputs shared by every preset of a run.
type Sources struct {
	// Root is the repository root that preset paths are relative to.
	Root string
	// Upstream is the fetched reference text read by every non-local preset.
	// It may be nil when all selected presets are local.
	Upstream *fetch.Reference
}

type Options struct {
	// Diff appends a unified diff of the mismatched parameters per preset.
	Diff bool
}

// Summary aggregates the results of a run.
type Summary struct {
	Results []reconcile.Result
}

// Total is the number of parameters checked across all presets.
func (s Summary) Total() int {
	n := 0
	for _, r := range s.Results {
		n += r.Checked()
	}
	return n
}

// Mismatches is the number of mismatches across all presets.
func (s Summary) Mismatches() int {
	n := 0
	for _, r := range s.Results {
		n += len(r.Mismatches)
	}
	return n
}

type Driver struct {
	rules      *preset.Rules
	reconciler *reconcile.Reconciler
	out        io.Writer
	opts       Options
}

func New(rules *preset.Rules, out io.Writer, opts Options) *Driver {
	return &Driver{
		rules:      rules,
		reconciler: reconcile.New(rules),
		out:        out,
		opts:       opts,
	}
}

// Run verifies the presets in order. A fatal error stops the run at once;
// mismatches are collected and reported together, after which
// ErrVerificationFailed is returned.
func (d *Driver) Run(src Sources) (Summary, error) {
	d.rule()
	d.println(Title)
	d.rule()

	var upstream *rustsrc.File
	if d.rules.NeedsReference() {
		if src.Upstream == nil {
			return Summary{}, ErrMissingReference
		}
		f, err := rustsrc.Parse(src.Upstream.Text)
		if err != nil {
			return Summary{}, fmt.Errorf("parse %s: %w", src.Upstream.Origin, err)
		}
		upstream = f
	}

	var summary Summary
	for _, p := range d.rules.Presets {
		res, err := d.verify(p, src.Root, upstream)
		if err != nil {
			return summary, fmt.Errorf("preset %s: %w", p.Name, err)
		}
		summary.Results = append(summary.Results, res)
	}

	d.println("")
	d.rule()
	d.println("FINAL SUMMARY")
	d.rule()

	if n := summary.Mismatches(); n > 0 {
		d.printf("VERIFICATION FAILED: %d mismatch(es) found\n", n)
		d.printf("   Total checked: %d\n", summary.Total())
		d.printf("   Mismatched: %d\n", n)
		d.println("")
		d.println("Mismatches by preset:")
		for _, r := range summary.Results {
			for _, m := range r.Mismatches {
				d.printf("  - %s.%s: %s\n", r.Preset, m.Name, m)
			}
		}
		d.rule()
		if d.opts.Diff {
			for _, r := range summary.Results {
				if diff := Diff(r); diff != "" {
					d.println("")
					d.printf("%s", diff)
				}
			}
		}
		return summary, fmt.Errorf("%w: %d mismatch(es)", ErrVerificationFailed, n)
	}

	d.printf("VERIFICATION PASSED: All %d parameters match\n", summary.Total())
	return summary, nil
}

func (d *Driver) verify(p preset.Preset, root string, upstream *rustsrc.File) (reconcile.Result, error) {
	d.println("")
	d.rule()
	d.printf("Verifying %s Preset\n", p.Title())
	d.rule()

	ref, err := d.extract(p, root, upstream)
	if err != nil {
		return reconcile.Result{}, err
	}
	d.printf("   Found %d type definitions\n", len(ref.Types))
	d.printf("   Found %d const definitions\n", len(ref.Consts))

	dir := resolve(root, p.YAMLDir)
	log.Root.Info().Str("preset", p.Name).Str("dir", dir).Msg("Reading YAML presets")
	values, err := presetyaml.LoadDir(dir)
	if err != nil {
		return reconcile.Result{}, err
	}
	d.printf("   Found %d preset values\n", len(values))

	res := d.reconciler.Reconcile(p.Name, ref, values)
	if res.ReverseOK {
		d.println("All YAML values are defined in Rust")
	}
	return res, nil
}

func (d *Driver) extract(p preset.Preset, root string, upstream *rustsrc.File) (rustsrc.Preset, error) {
	if !p.Local {
		return upstream.Upstream(p.Implementor)
	}
	ref, err := fetch.ReadFile(resolve(root, p.RustFile))
	if err != nil {
		return rustsrc.Preset{}, err
	}
	f, err := rustsrc.Parse(ref.Text)
	if err != nil {
		return rustsrc.Preset{}, fmt.Errorf("parse %s: %w", ref.Origin, err)
	}
	return f.Local(p.Name)
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func (d *Driver) rule() {
	d.println(strings.Repeat("=", width))
}

func (d *Driver) println(s string) {
	fmt.Fprintln(d.out, s)
}

func (d *Driver) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}
