package marker

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/adapters/filesystem"
	"github.com/felixgeelhaar/debprep/internal/testutil/mocks"
)

const markerPath = "/var/lib/debprep/initialized"

func TestStore_Lifecycle(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	store := New(fsys, markerPath, "run-42")
	store.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 500, time.UTC) }

	set, err := store.Get()
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, store.Set())
	set, err = store.Get()
	require.NoError(t, err)
	assert.True(t, set)

	rec, err := store.Record()
	require.NoError(t, err)
	assert.Equal(t, "run-42", rec.RunID)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), rec.CompletedAt)
	assert.Equal(t, 1, fsys.Writes(markerPath))

	require.NoError(t, store.Clear())
	set, err = store.Get()
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, store.Clear(), "clearing twice is fine")
}

func TestStore_CorruptMarker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "{{{"},
		{"missing timestamp", "run_id: abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fsys := mocks.NewFileSystem()
			fsys.AddFile(markerPath, tt.content)

			_, err := New(fsys, markerPath, "").Get()
			assert.Error(t, err)
		})
	}
}

func TestStore_WriteFailure(t *testing.T) {
	t.Parallel()

	fsys := mocks.NewFileSystem()
	fsys.FailWrites(markerPath, errors.New("read-only file system"))
	store := New(fsys, markerPath, "")

	err := store.Set()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only file system")

	set, err := store.Get()
	require.NoError(t, err)
	assert.False(t, set, "no half-written marker")
}

func TestStore_RealFileSystem(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "initialized")
	store := New(filesystem.NewRealFileSystem(), path, "run-real")

	require.NoError(t, store.Set())
	set, err := store.Get()
	require.NoError(t, err)
	assert.True(t, set)
	assert.Equal(t, path, store.Path())

	require.NoError(t, store.Clear())
	set, err = store.Get()
	require.NoError(t, err)
	assert.False(t, set)
}
