package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealFileSystem_WriteFileAtomic(t *testing.T) {
	t.Parallel()

	fs := NewRealFileSystem()
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.list")

	require.NoError(t, fs.WriteFileAtomic(path, []byte("deb old"), 0o644))
	require.NoError(t, fs.WriteFileAtomic(path, []byte("deb new"), 0o600))

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "deb new", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestRealFileSystem_WriteFileAtomic_MissingDir(t *testing.T) {
	t.Parallel()

	fs := NewRealFileSystem()
	err := fs.WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "f"), []byte("x"), 0o644)
	assert.Error(t, err)
}

func TestRealFileSystem_CopyFile(t *testing.T) {
	t.Parallel()

	fs := NewRealFileSystem()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dest := filepath.Join(dir, "dest")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0o640))

	require.NoError(t, fs.CopyFile(src, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	assert.Error(t, fs.CopyFile(filepath.Join(dir, "nope"), dest))
}

func TestRealFileSystem_HashExistsRemove(t *testing.T) {
	t.Parallel()

	fs := NewRealFileSystem()
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	hash, err := fs.FileHash(path)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", hash)

	require.NoError(t, fs.Chmod(path, 0o755))
	assert.True(t, fs.Exists(path))
	require.NoError(t, fs.Remove(path))
	assert.False(t, fs.Exists(path))

	_, err = fs.FileHash(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, fs.MkdirAll(sub, 0o755))
	assert.True(t, fs.Exists(sub))
}
