// Package systemd drives systemctl behind ports.ServiceManager.
package systemd

import (
	"context"

	"github.com/felixgeelhaar/debprep/internal/adapters/command"
	"github.com/felixgeelhaar/debprep/internal/ports"
	"github.com/felixgeelhaar/debprep/internal/validation"
)

// Manager implements ports.ServiceManager.
type Manager struct {
	runner ports.CommandRunner
}

// New creates a Manager.
func New(runner ports.CommandRunner) *Manager {
	return &Manager{runner: runner}
}

// EnableNow enables unit at boot and starts it.
func (m *Manager) EnableNow(ctx context.Context, unit string) error {
	if err := validation.ValidateUnitName(unit); err != nil {
		return err
	}
	result, err := m.runner.Run(ctx, "systemctl", "enable", "--now", unit)
	return command.Check("systemctl enable "+unit, result, err)
}

// IsActive asks systemctl and judges by exit code alone.
func (m *Manager) IsActive(ctx context.Context, unit string) (bool, error) {
	if err := validation.ValidateUnitName(unit); err != nil {
		return false, err
	}
	result, err := m.runner.Run(ctx, "systemctl", "is-active", "--quiet", unit)
	if err != nil {
		return false, command.Check("systemctl is-active "+unit, result, err)
	}
	return result.Success(), nil
}

var _ ports.ServiceManager = (*Manager)(nil)
