package ports

import (
	"context"
	"errors"
)

// Fetcher downloads remote artifacts.
type Fetcher interface {
	// Download writes the body of url to a new file inside a private temporary
	// directory and returns its path. Any non-2xx status is an error and
	// leaves nothing behind. The caller owns the returned file and must remove
	// it with Discard once done.
	Download(ctx context.Context, url string) (string, error)
	// Discard removes a path returned by Download together with its private directory.
	Discard(path string) error
}

// KeyVerifier checks signing-key material against a known-good fingerprint.
type KeyVerifier interface {
	// Verify parses the armored or binary OpenPGP key in data and returns the
	// binary keyring bytes when its primary key fingerprint equals expected.
	Verify(data []byte, expected string) ([]byte, error)
}

// ErrFingerprintMismatch is returned by KeyVerifier when the key is not the expected one.
var ErrFingerprintMismatch = errors.New("signing key fingerprint mismatch")
