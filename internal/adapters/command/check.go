package command

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

// ErrNotFound marks a command that is not installed.
var ErrNotFound = errors.New("command not found")

// IsNotFound reports whether an error indicates a missing executable.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return true
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return true
	}
	return false
}

// Check folds a Run outcome into one error. A non-zero exit becomes an error
// carrying the last line of stderr; a missing binary is marked with ErrNotFound.
func Check(name string, result ports.CommandResult, err error) error {
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	if result.Success() {
		return nil
	}
	if msg := LastLine(result.Stderr); msg != "" {
		return fmt.Errorf("%s exited %d: %s", name, result.ExitCode, msg)
	}
	return fmt.Errorf("%s exited %d", name, result.ExitCode)
}

// LastLine returns the last non-empty line of s; tools print the reason last.
func LastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
