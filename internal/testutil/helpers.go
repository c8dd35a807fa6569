// Package testutil provides test helpers shared by the debprep packages.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
)

// NoSleep is a provision.Sleeper that returns immediately unless ctx is done.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// NewRunner returns a runner that never waits between attempts and always
// passes the privilege check. Options are applied after those defaults.
func NewRunner(opts ...provision.RunnerOption) *provision.Runner {
	base := []provision.RunnerOption{
		provision.WithSleeper(NoSleep),
		provision.WithPrivilegeCheck(func() bool { return true }),
	}
	return provision.NewRunner(append(base, opts...)...)
}

// WriteTempFile writes content to a file in the specified directory.
func WriteTempFile(t testing.TB, dir, filename, content string) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err, "failed to write temp file: %s", filename)

	return path
}
