package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandResult_Success(t *testing.T) {
	t.Parallel()

	assert.True(t, CommandResult{ExitCode: 0, Stdout: "output"}.Success())
	assert.False(t, CommandResult{ExitCode: 1, Stderr: "error"}.Success())
	assert.False(t, CommandResult{ExitCode: 100}.Success())
}

func TestMissing(t *testing.T) {
	t.Parallel()

	states := []PackageState{
		{Name: "curl", Installed: true},
		{Name: "tmux", Installed: false},
		{Name: "gnupg", Installed: true},
		{Name: "sudo", Installed: false},
	}

	assert.Equal(t, []string{"tmux", "sudo"}, Missing(states))
	assert.Empty(t, Missing(nil))
}
