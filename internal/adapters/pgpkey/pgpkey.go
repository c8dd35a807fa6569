// Package pgpkey verifies OpenPGP signing keys by primary key fingerprint.
package pgpkey

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/openpgp"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

// ErrNoKey is returned when data holds no OpenPGP public key.
var ErrNoKey = errors.New("no OpenPGP public key found")

// Verifier implements ports.KeyVerifier.
type Verifier struct{}

// New creates a Verifier.
func New() *Verifier {
	return &Verifier{}
}

// Verify accepts armored or binary key material holding exactly one primary
// key and returns it as a binary keyring when its fingerprint is expected.
func (v *Verifier) Verify(data []byte, expected string) ([]byte, error) {
	want := NormalizeFingerprint(expected)
	if len(want) != 40 {
		return nil, fmt.Errorf("expected fingerprint %q is not 40 hex characters", expected)
	}

	ring, err := readKeyRing(data)
	if err != nil {
		return nil, err
	}
	if len(ring) != 1 {
		return nil, fmt.Errorf("%w: keyring holds %d primary keys, want 1", ports.ErrFingerprintMismatch, len(ring))
	}

	entity := ring[0]
	got := Fingerprint(entity)
	if got != want {
		return nil, fmt.Errorf("%w: got %s, want %s", ports.ErrFingerprintMismatch, got, want)
	}

	var buf bytes.Buffer
	if err := entity.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize keyring: %w", err)
	}
	return buf.Bytes(), nil
}

func readKeyRing(data []byte) (openpgp.EntityList, error) {
	if ring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data)); err == nil && len(ring) > 0 {
		return ring, nil
	}
	ring, err := openpgp.ReadKeyRing(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoKey, err)
	}
	if len(ring) == 0 {
		return nil, ErrNoKey
	}
	return ring, nil
}

// Fingerprint returns the upper-case hex fingerprint of the entity's primary key.
func Fingerprint(e *openpgp.Entity) string {
	return strings.ToUpper(hex.EncodeToString(e.PrimaryKey.Fingerprint[:]))
}

// NormalizeFingerprint strips spaces and upper-cases a fingerprint as printed by gpg.
func NormalizeFingerprint(fp string) string {
	return strings.ToUpper(strings.Join(strings.Fields(fp), ""))
}

var _ ports.KeyVerifier = (*Verifier)(nil)
