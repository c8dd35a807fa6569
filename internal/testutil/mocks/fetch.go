package mocks

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

// Fetcher serves downloads from memory into a mock FileSystem.
type Fetcher struct {
	mu        sync.Mutex
	fs        *FileSystem
	bodies    map[string][]byte
	errs      map[string]error
	live      map[string]bool
	downloads int
}

// NewFetcher creates a Fetcher that writes into fs.
func NewFetcher(fs *FileSystem) *Fetcher {
	return &Fetcher{
		fs:     fs,
		bodies: make(map[string][]byte),
		errs:   make(map[string]error),
		live:   make(map[string]bool),
	}
}

// Serve registers the body returned for url.
func (f *Fetcher) Serve(url string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[url] = body
}

// Fail makes downloads of url fail with err.
func (f *Fetcher) Fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[url] = err
}

// Download implements ports.Fetcher.
func (f *Fetcher) Download(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	body, ok := f.bodies[url]
	if !ok {
		return "", fmt.Errorf("GET %s: 404 Not Found", url)
	}
	p := fmt.Sprintf("/tmp/debprep-fetch-%d/%s", f.downloads, path.Base(url))
	if err := f.fs.WriteFileAtomic(p, body, 0o600); err != nil {
		return "", err
	}
	f.live[p] = true
	return p, nil
}

// Discard implements ports.Fetcher.
func (f *Fetcher) Discard(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, p)
	if f.fs.Exists(p) {
		return f.fs.Remove(p)
	}
	return nil
}

// Outstanding returns downloaded paths that were never discarded.
func (f *Fetcher) Outstanding() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for p := range f.live {
		out = append(out, p)
	}
	return out
}

// KeyVerifier accepts key material whose fingerprint is registered.
type KeyVerifier struct {
	mu   sync.Mutex
	keys map[string]string
}

// NewKeyVerifier creates an empty KeyVerifier.
func NewKeyVerifier() *KeyVerifier {
	return &KeyVerifier{keys: make(map[string]string)}
}

// AddKey registers data as a key with the given fingerprint.
func (k *KeyVerifier) AddKey(data []byte, fingerprint string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[string(data)] = fingerprint
}

// Verify implements ports.KeyVerifier.
func (k *KeyVerifier) Verify(data []byte, expected string) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	fp, ok := k.keys[string(data)]
	if !ok || fp != expected {
		return nil, fmt.Errorf("%w: got %q, want %q", ports.ErrFingerprintMismatch, fp, expected)
	}
	return append([]byte("keyring:"), data...), nil
}

var (
	_ ports.Fetcher     = (*Fetcher)(nil)
	_ ports.KeyVerifier = (*KeyVerifier)(nil)
)
