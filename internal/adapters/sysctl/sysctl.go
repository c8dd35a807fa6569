// Package sysctl reads kernel parameters from /proc/sys and applies sysctl.d files.
package sysctl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/debprep/internal/adapters/command"
	"github.com/felixgeelhaar/debprep/internal/ports"
	"github.com/felixgeelhaar/debprep/internal/validation"
)

// DefaultProcRoot is where the kernel exposes its parameters.
const DefaultProcRoot = "/proc/sys"

var moduleNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Sysctl implements ports.Sysctl.
type Sysctl struct {
	runner   ports.CommandRunner
	procRoot string
}

// New creates a Sysctl reading from DefaultProcRoot.
func New(runner ports.CommandRunner) *Sysctl {
	return &Sysctl{runner: runner, procRoot: DefaultProcRoot}
}

// Get returns the trimmed live value of key.
func (s *Sysctl) Get(key string) (string, error) {
	if err := validation.ValidateSysctlKey(key); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.procRoot, strings.ReplaceAll(key, ".", "/")))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// LoadModule runs modprobe.
func (s *Sysctl) LoadModule(ctx context.Context, name string) error {
	if !moduleNameRegex.MatchString(name) {
		return fmt.Errorf("invalid kernel module name %q", name)
	}
	return s.run(ctx, "modprobe", name)
}

// Apply loads path into the running kernel with sysctl -p.
func (s *Sysctl) Apply(ctx context.Context, path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("sysctl file %q must be absolute", path)
	}
	if err := validation.ValidatePath(path); err != nil {
		return err
	}
	return s.run(ctx, "sysctl", "-p", path)
}

func (s *Sysctl) run(ctx context.Context, name string, args ...string) error {
	result, err := s.runner.Run(ctx, name, args...)
	return command.Check(name, result, err)
}

var _ ports.Sysctl = (*Sysctl)(nil)
