// Package fetch retrieves Rust reference source text, from the local
// repository or from a remote URL with an optional on-disk cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/eigerco/presetcheck/internal/crypto"
	"github.com/eigerco/presetcheck/pkg/db"
	"github.com/eigerco/presetcheck/pkg/db/pebble"
	"github.com/eigerco/presetcheck/pkg/log"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

var (
	ErrUnexpectedStatus = errors.New("failed to retrieve Rust preset file content")
	ErrDigestMismatch   = errors.New("reference digest mismatch")
)

const (
	prefixText   = "reference:"
	prefixDigest = "digest:"
)

// Reference is a retrieved reference source text.
type Reference struct {
	Origin string
	Text   string
	Digest crypto.Hash
	Cached bool
}

// Verify checks the reference against a pinned digest.
func (r Reference) Verify(expected crypto.Hash) error {
	if r.Digest != expected {
		return fmt.Errorf("%w: %s has %s, expected %s", ErrDigestMismatch, r.Origin, r.Digest, expected)
	}
	return nil
}

// ReadFile reads a reference maintained in the local repository.
func ReadFile(path string) (Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Reference{}, fmt.Errorf("read Rust preset %s: %w", path, err)
	}
	log.Fetch.Info().Str("path", path).Msg("Reading local Rust preset")
	return newReference(path, data, false), nil
}

type Fetcher struct {
	client *http.Client
	cache  db.KVStore
}

// New returns a Fetcher. cache may be nil to always fetch.
func New(client *http.Client, cache db.KVStore) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, cache: cache}
}

// Fetch downloads url with a single GET. Any status other than 200 is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Reference, error) {
	if ref, ok := f.cached(url); ok {
		log.Fetch.Info().Str("url", url).Str("digest", ref.Digest.String()).Msg("Using cached Rust preset")
		return ref, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Reference{}, fmt.Errorf("build request for %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Reference{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Reference{}, fmt.Errorf("%w: %s: %d, %q", ErrUnexpectedStatus, url, resp.StatusCode, body)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reference{}, fmt.Errorf("read body of %s: %w", url, err)
	}

	ref := newReference(url, data, false)
	log.Fetch.Info().Str("url", url).Str("digest", ref.Digest.String()).Int("bytes", len(data)).Msg("Downloaded upstream Rust preset")
	f.store(ref)
	return ref, nil
}

func (f *Fetcher) cached(url string) (Reference, bool) {
	if f.cache == nil {
		return Reference{}, false
	}
	text, err := f.cache.Get([]byte(prefixText + url))
	if err != nil {
		if !errors.Is(err, pebble.ErrNotFound) {
			log.Fetch.Warn().Err(err).Str("url", url).Msg("cache read failed")
		}
		return Reference{}, false
	}
	digest, err := f.cache.Get([]byte(prefixDigest + url))
	if err != nil {
		return Reference{}, false
	}
	ref := newReference(url, text, true)
	if ref.Digest.String() != string(digest) {
		log.Fetch.Warn().Str("url", url).Msg("cached Rust preset does not match its digest, fetching again")
		return Reference{}, false
	}
	return ref, true
}

// store writes the text and its digest in one batch. Cache failures are
// logged, they never fail the run.
func (f *Fetcher) store(ref Reference) {
	if f.cache == nil {
		return
	}
	batch := f.cache.NewBatch()
	defer batch.Close()

	if err := batch.Put([]byte(prefixText+ref.Origin), []byte(ref.Text)); err != nil {
		log.Fetch.Warn().Err(err).Msg("cache write failed")
		return
	}
	if err := batch.Put([]byte(prefixDigest+ref.Origin), []byte(ref.Digest.String())); err != nil {
		log.Fetch.Warn().Err(err).Msg("cache write failed")
		return
	}
	if err := batch.Commit(); err != nil {
		log.Fetch.Warn().Err(err).Msg("cache commit failed")
	}
}

func newReference(origin string, data []byte, cached bool) Reference {
	return Reference{Origin: origin, Text: string(data), Digest: crypto.HashData(data), Cached: cached}
}
