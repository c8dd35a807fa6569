package ports

import (
	"os"
	"path/filepath"
	"strings"
)

// FileSystem provides the file operations steps need on system configuration files.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	// WriteFileAtomic writes data to a temporary file next to path and renames it into place.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error
	Exists(path string) bool
	Remove(path string) error
	MkdirAll(path string, perm os.FileMode) error
	CopyFile(src, dest string) error
	FileHash(path string) (string, error)
	Chmod(path string, perm os.FileMode) error
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
