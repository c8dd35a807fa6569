package mocks

import (
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystem_ReadWrite(t *testing.T) {
	fs := NewFileSystem()

	_, err := fs.ReadFile("/etc/apt/sources.list")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, fs.WriteFileAtomic("/etc/apt/sources.list", []byte("deb x"), 0o644))
	data, err := fs.ReadFile("/etc/apt/sources.list")
	require.NoError(t, err)
	assert.Equal(t, "deb x", string(data))
	assert.Equal(t, os.FileMode(0o644), fs.Mode("/etc/apt/sources.list"))
	assert.Equal(t, 1, fs.Writes("/etc/apt/sources.list"))
}

func TestFileSystem_FailWrites(t *testing.T) {
	fs := NewFileSystem()
	fs.FailWrites("/etc/x", errors.New("read-only file system"))

	assert.Error(t, fs.WriteFileAtomic("/etc/x", nil, 0o644))
	assert.False(t, fs.Exists("/etc/x"))
}

func TestFileSystem_CopyChmodRemove(t *testing.T) {
	fs := NewFileSystem()
	fs.AddFile("/a", "content")

	require.NoError(t, fs.CopyFile("/a", "/b"))
	assert.Equal(t, "content", fs.Content("/b"))

	require.NoError(t, fs.Chmod("/b", 0o755))
	assert.Equal(t, os.FileMode(0o755), fs.Mode("/b"))

	require.NoError(t, fs.Remove("/a"))
	assert.False(t, fs.Exists("/a"))
	assert.ErrorIs(t, fs.Remove("/a"), os.ErrNotExist)
	assert.ErrorIs(t, fs.CopyFile("/a", "/c"), os.ErrNotExist)
}

func TestFileSystem_FileHash(t *testing.T) {
	fs := NewFileSystem()
	fs.AddFile("/f", "hello")

	hash, err := fs.FileHash("/f")
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", hash)
}

func TestFileSystem_Dirs(t *testing.T) {
	fs := NewFileSystem()
	require.NoError(t, fs.MkdirAll("/var/lib/debprep", 0o755))
	assert.True(t, fs.Exists("/var/lib/debprep"))

	fs.Reset()
	assert.False(t, fs.Exists("/var/lib/debprep"))
}

func TestFileSystem_ThreadSafety(_ *testing.T) {
	fs := NewFileSystem()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := "/f" + string(rune('a'+i%26))
			_ = fs.WriteFileAtomic(p, []byte("x"), 0o644)
			_, _ = fs.ReadFile(p)
			_ = fs.Exists(p)
		}(i)
	}
	wg.Wait()
}
