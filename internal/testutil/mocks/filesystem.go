package mocks

import (
	"crypto/sha256"
	"encoding/hex"
	iofs "io/fs"
	"os"
	"sync"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

// FileSystem is a thread-safe test double for ports.FileSystem.
type FileSystem struct {
	mu        sync.RWMutex
	files     map[string][]byte
	modes     map[string]os.FileMode
	dirs      map[string]bool
	writeErrs map[string]error
	writes    map[string]int
}

// NewFileSystem creates a new FileSystem mock.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:     make(map[string][]byte),
		modes:     make(map[string]os.FileMode),
		dirs:      make(map[string]bool),
		writeErrs: make(map[string]error),
		writes:    make(map[string]int),
	}
}

// AddFile adds a file to the mock filesystem.
func (fs *FileSystem) AddFile(path string, content string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = []byte(content)
	fs.modes[path] = 0o644
}

// AddDir adds a directory to the mock filesystem.
func (fs *FileSystem) AddDir(path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.dirs[path] = true
}

// FailWrites makes every write to path return err.
func (fs *FileSystem) FailWrites(path string, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.writeErrs[path] = err
}

// Content returns the content of path as a string, or "" when absent.
func (fs *FileSystem) Content(path string) string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return string(fs.files[path])
}

// Mode returns the permission bits recorded for path.
func (fs *FileSystem) Mode(path string) os.FileMode {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.modes[path]
}

// Writes returns how many times path was written.
func (fs *FileSystem) Writes(path string) int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.writes[path]
}

// ReadFile reads a file from the mock filesystem.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if content, ok := fs.files[path]; ok {
		return append([]byte(nil), content...), nil
	}
	return nil, notExist("open", path)
}

// WriteFileAtomic writes a file to the mock filesystem.
func (fs *FileSystem) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err, ok := fs.writeErrs[path]; ok {
		return err
	}
	fs.files[path] = append([]byte(nil), data...)
	fs.modes[path] = perm
	fs.writes[path]++
	return nil
}

// Exists checks if a file or directory exists in the mock filesystem.
func (fs *FileSystem) Exists(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, fileExists := fs.files[path]
	return fileExists || fs.dirs[path]
}

// Remove removes a file from the mock filesystem.
func (fs *FileSystem) Remove(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[path]; !ok && !fs.dirs[path] {
		return notExist("remove", path)
	}
	delete(fs.files, path)
	delete(fs.modes, path)
	delete(fs.dirs, path)
	return nil
}

// MkdirAll creates a directory in the mock filesystem.
func (fs *FileSystem) MkdirAll(path string, _ os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.dirs[path] = true
	return nil
}

// CopyFile copies a file in the mock filesystem.
func (fs *FileSystem) CopyFile(src, dest string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	content, ok := fs.files[src]
	if !ok {
		return notExist("open", src)
	}
	if err, ok := fs.writeErrs[dest]; ok {
		return err
	}
	fs.files[dest] = append([]byte(nil), content...)
	fs.modes[dest] = fs.modes[src]
	fs.writes[dest]++
	return nil
}

// FileHash returns the SHA-256 of a file in the mock filesystem.
func (fs *FileSystem) FileHash(path string) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	content, ok := fs.files[path]
	if !ok {
		return "", notExist("open", path)
	}
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:]), nil
}

// Chmod changes the recorded permission bits of a file.
func (fs *FileSystem) Chmod(path string, perm os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[path]; !ok {
		return notExist("chmod", path)
	}
	fs.modes[path] = perm
	return nil
}

// Reset clears all files and directories.
func (fs *FileSystem) Reset() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files = make(map[string][]byte)
	fs.modes = make(map[string]os.FileMode)
	fs.dirs = make(map[string]bool)
	fs.writeErrs = make(map[string]error)
	fs.writes = make(map[string]int)
}

func notExist(op, path string) error {
	return &iofs.PathError{Op: op, Path: path, Err: iofs.ErrNotExist}
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
