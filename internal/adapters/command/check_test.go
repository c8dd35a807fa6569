package command

import (
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"exec ErrNotFound", exec.ErrNotFound, true},
		{"exec error wrapper", &exec.Error{Name: "dpkg-query", Err: exec.ErrNotFound}, true},
		{"path error", &os.PathError{Err: os.ErrNotExist}, true},
		{"marked", ErrNotFound, true},
		{"other error", errors.New("nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Check("modprobe", ports.CommandResult{}, nil))

	err := Check("modprobe", ports.CommandResult{ExitCode: 1, Stderr: "warning\nmodprobe: FATAL: Module x not found\n"}, nil)
	require.Error(t, err)
	assert.Equal(t, "modprobe exited 1: modprobe: FATAL: Module x not found", err.Error())

	assert.Equal(t, "usermod exited 6", Check("usermod", ports.CommandResult{ExitCode: 6}, nil).Error())

	err = Check("tmux", ports.CommandResult{}, &exec.Error{Name: "tmux", Err: exec.ErrNotFound})
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("boom")
	assert.ErrorIs(t, Check("tmux", ports.CommandResult{}, boom), boom)
}
