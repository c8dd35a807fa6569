// Package httpfetch downloads artifacts over HTTP(S) into private temporary directories.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/felixgeelhaar/debprep/internal/ports"
	"github.com/felixgeelhaar/debprep/internal/validation"
)

// DefaultMaxBytes caps a single download.
const DefaultMaxBytes = 512 << 20

// ErrTooLarge is returned when a body exceeds the configured limit.
var ErrTooLarge = errors.New("download exceeds size limit")

// Fetcher implements ports.Fetcher with net/http.
type Fetcher struct {
	client   *http.Client
	tempRoot string
	maxBytes int64
	logger   ports.Logger

	mu   sync.Mutex
	dirs map[string]struct{}
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithTempRoot sets the parent of the per-download directories.
func WithTempRoot(dir string) Option {
	return func(f *Fetcher) { f.tempRoot = dir }
}

// WithMaxBytes sets the size limit.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New creates a Fetcher.
func New(logger ports.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: 5 * time.Minute},
		maxBytes: DefaultMaxBytes,
		logger:   logger,
		dirs:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Download fetches rawURL into a fresh 0700 directory. On any failure the
// directory is removed before returning.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (_ string, err error) {
	if err := validation.ValidateURL(rawURL); err != nil {
		return "", err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", rawURL, err)
	}

	dir, err := os.MkdirTemp(f.tempRoot, "debprep-fetch-")
	if err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "debprep")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("download %s: unexpected status %s", rawURL, resp.Status)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		name = "download"
	}
	dest := filepath.Join(dir, name)

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(out, io.LimitReader(resp.Body, f.maxBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	if n > f.maxBytes {
		return "", fmt.Errorf("download %s: %w (%d bytes)", rawURL, ErrTooLarge, f.maxBytes)
	}

	f.mu.Lock()
	f.dirs[dir] = struct{}{}
	f.mu.Unlock()

	f.logger.Debug(ctx, "downloaded", ports.F("url", rawURL), ports.F("bytes", n))
	return dest, nil
}

// Discard removes a file returned by Download together with its directory.
func (f *Fetcher) Discard(p string) error {
	dir := filepath.Dir(p)

	f.mu.Lock()
	_, ok := f.dirs[dir]
	delete(f.dirs, dir)
	f.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s was not created by this fetcher", p)
	}
	return os.RemoveAll(dir)
}

var _ ports.Fetcher = (*Fetcher)(nil)
