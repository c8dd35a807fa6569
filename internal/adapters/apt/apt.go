// Package apt drives dpkg-query and apt-get behind ports.PackageManager.
package apt

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/debprep/internal/adapters/command"
	"github.com/felixgeelhaar/debprep/internal/ports"
	"github.com/felixgeelhaar/debprep/internal/validation"
)

// queryFormat makes dpkg-query print one tab-separated record per package.
const queryFormat = "${Package}\\t${Version}\\t${db:Status-Status}\\n"

// Manager implements ports.PackageManager.
type Manager struct {
	runner ports.CommandRunner
}

// New creates a Manager that runs commands through runner.
func New(runner ports.CommandRunner) *Manager {
	return &Manager{runner: runner}
}

// Query returns the dpkg state of every name, in request order.
func (m *Manager) Query(ctx context.Context, names ...string) ([]ports.PackageState, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if err := validation.ValidatePackageNames(names); err != nil {
		return nil, err
	}

	args := append([]string{"-W", "-f=" + queryFormat}, names...)
	result, err := m.runner.Run(ctx, "dpkg-query", args...)
	if err != nil {
		return nil, command.Check("dpkg-query", result, err)
	}
	// Exit 1 only means some names are unknown to dpkg.
	if result.ExitCode > 1 {
		return nil, fmt.Errorf("dpkg-query exited %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	known := parseQuery(result.Stdout)
	states := make([]ports.PackageState, 0, len(names))
	for _, name := range names {
		if s, ok := known[name]; ok {
			states = append(states, s)
			continue
		}
		states = append(states, ports.PackageState{Name: name})
	}
	return states, nil
}

// parseQuery reads the records printed with queryFormat.
func parseQuery(out string) map[string]ports.PackageState {
	states := make(map[string]ports.PackageState)
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) != 3 || fields[0] == "" {
			continue
		}
		name := strings.SplitN(fields[0], ":", 2)[0]
		state := ports.PackageState{
			Name:      name,
			Version:   fields[1],
			Installed: fields[2] == "installed",
		}
		// Multi-arch packages print one line per architecture.
		if prev, ok := states[name]; ok && prev.Installed {
			continue
		}
		states[name] = state
	}
	return states
}

// UpdateIndex runs apt-get update.
func (m *Manager) UpdateIndex(ctx context.Context) error {
	return m.aptGet(ctx, "-q", "update")
}

// Install installs names without prompting. Already installed names are left alone by apt.
func (m *Manager) Install(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	if err := validation.ValidatePackageNames(names); err != nil {
		return err
	}
	args := append([]string{"-q", "-y", "-o", "Dpkg::Options::=--force-confold", "install"}, names...)
	return m.aptGet(ctx, args...)
}

func (m *Manager) aptGet(ctx context.Context, args ...string) error {
	full := append([]string{"DEBIAN_FRONTEND=noninteractive", "apt-get"}, args...)
	result, err := m.runner.Run(ctx, "env", full...)
	return command.Check("apt-get", result, err)
}

var _ ports.PackageManager = (*Manager)(nil)
