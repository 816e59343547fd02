package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/eigerco/presetcheck/internal/crypto"
	"github.com/eigerco/presetcheck/internal/fetch"
	"github.com/eigerco/presetcheck/internal/preset"
	"github.com/eigerco/presetcheck/internal/report"
	"github.com/eigerco/presetcheck/pkg/db"
	"github.com/eigerco/presetcheck/pkg/db/pebble"
	"github.com/eigerco/presetcheck/pkg/log"
)

// Options defines command line options.
type Options struct {
	Root          string        `long:"root" description:"repository root preset paths are relative to" default:"."`
	Rules         string        `long:"rules" description:"rules file replacing the embedded one"`
	Profiles      []string      `short:"p" long:"profile" description:"verify only this preset (repeatable)"`
	Tag           string        `long:"tag" description:"reference tag replacing the one in the rules"`
	ReferenceFile string        `long:"reference-file" description:"read the upstream Rust preset from a local file instead of fetching it"`
	CacheDir      string        `long:"cache-dir" description:"cache the fetched Rust preset in this directory"`
	ExpectDigest  string        `long:"expect-digest" description:"hex blake2b-256 digest the upstream Rust preset must have"`
	Timeout       time.Duration `long:"timeout" description:"timeout of the upstream fetch, 0 waits forever" default:"0s"`
	Diff          bool          `long:"diff" description:"print a unified diff of the mismatches"`
	LogLevel      string        `long:"log-level" description:"log level" default:"info"`
	LogJSON       bool          `long:"log-json" description:"log as JSON"`
}

// parseOptions returns parsed command-line flags.
func parseOptions(args []string) (*Options, error) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.Default)
	parser.Name = "presetcheck"
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// main verifies the preset YAML files against the Rust presets.
// go run ./cmd/presetcheck --root .
func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	level, err := log.ParseLogLevel(opts.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", opts.LogLevel, err)
		os.Exit(1)
	}
	loggerType := log.ConsoleLogger
	if opts.LogJSON {
		loggerType = log.JSONLogger
	}
	log.Init(log.Options{LogLevel: level, Type: loggerType})

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		if !errors.Is(err, report.ErrVerificationFailed) {
			log.Root.Error().Err(err).Msg("preset verification aborted")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *Options, out io.Writer) error {
	rules, err := loadRules(opts)
	if err != nil {
		return err
	}

	src := report.Sources{Root: opts.Root}
	if rules.NeedsReference() {
		ref, err := upstream(ctx, opts, rules.Reference)
		if err != nil {
			return err
		}
		src.Upstream = &ref
	}

	_, err = report.New(rules, out, report.Options{Diff: opts.Diff}).Run(src)
	return err
}

func loadRules(opts *Options) (*preset.Rules, error) {
	var (
		rules *preset.Rules
		err   error
	)
	if opts.Rules != "" {
		rules, err = preset.Load(opts.Rules)
	} else {
		rules, err = preset.Default()
	}
	if err != nil {
		return nil, err
	}
	if opts.Tag != "" {
		rules.Reference.Tag = opts.Tag
	}
	if err := rules.Select(opts.Profiles); err != nil {
		return nil, err
	}
	return rules, nil
}

// upstream reads the reference text once for every non-local preset.
func upstream(ctx context.Context, opts *Options, ref preset.Reference) (fetch.Reference, error) {
	var (
		text fetch.Reference
		err  error
	)
	if opts.ReferenceFile != "" {
		text, err = fetch.ReadFile(opts.ReferenceFile)
	} else {
		text, err = download(ctx, opts, ref.ResolvedURL())
	}
	if err != nil {
		return fetch.Reference{}, err
	}

	if opts.ExpectDigest != "" {
		expected, err := crypto.ParseHash(opts.ExpectDigest)
		if err != nil {
			return fetch.Reference{}, err
		}
		if expected.IsZero() {
			return fetch.Reference{}, fmt.Errorf("%w: --expect-digest is all zeros", crypto.ErrInvalidHash)
		}
		if err := text.Verify(expected); err != nil {
			return fetch.Reference{}, err
		}
	}
	return text, nil
}

func download(ctx context.Context, opts *Options, url string) (fetch.Reference, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var cache db.KVStore
	if opts.CacheDir != "" {
		store, err := pebble.NewKVStore(opts.CacheDir)
		if err != nil {
			return fetch.Reference{}, fmt.Errorf("open cache %s: %w", opts.CacheDir, err)
		}
		defer store.Close()
		cache = store
	}

	log.Fetch.Info().Str("url", url).Msg("Downloading upstream Rust preset")
	return fetch.New(http.DefaultClient, cache).Fetch(ctx, url)
}
