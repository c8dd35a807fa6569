package systemd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/ports"
	"github.com/felixgeelhaar/debprep/internal/testutil/mocks"
	"github.com/felixgeelhaar/debprep/internal/validation"
)

func TestManager_IsActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		exitCode int
		want     bool
	}{
		{"active", 0, true},
		{"inactive", 3, false},
		{"unknown unit", 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			runner := mocks.NewCommandRunner()
			runner.AddResult("systemctl", []string{"is-active", "--quiet", "docker"}, ports.CommandResult{ExitCode: tt.exitCode})

			active, err := New(runner).IsActive(context.Background(), "docker")
			require.NoError(t, err)
			assert.Equal(t, tt.want, active)
		})
	}
}

func TestManager_IsActive_Errors(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddError("systemctl", []string{"is-active", "--quiet", "docker"}, errors.New("no systemctl"))

	_, err := New(runner).IsActive(context.Background(), "docker")
	assert.Error(t, err)

	_, err = New(runner).IsActive(context.Background(), "docker; reboot")
	assert.ErrorIs(t, err, validation.ErrInvalidUnitName)
}

func TestManager_EnableNow(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("systemctl", []string{"enable", "--now", "prometheus-node-exporter"}, ports.CommandResult{})
	runner.AddResult("systemctl", []string{"enable", "--now", "broken"}, ports.CommandResult{ExitCode: 1, Stderr: "Unit broken.service not found.\n"})

	mgr := New(runner)
	require.NoError(t, mgr.EnableNow(context.Background(), "prometheus-node-exporter"))

	err := mgr.EnableNow(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unit broken.service not found.")

	assert.ErrorIs(t, mgr.EnableNow(context.Background(), "-x"), validation.ErrInvalidUnitName)
}
