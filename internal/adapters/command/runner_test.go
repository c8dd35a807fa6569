package command

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/adapters/logging"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

func TestRealRunner_Run_Success(t *testing.T) {
	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, "hello\n", result.Stdout)
}

func TestRealRunner_Run_NonZeroExitIsNotAnError(t *testing.T) {
	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), "sh", "-c", "echo error >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "error\n", result.Stderr)
}

func TestRealRunner_Run_NotFound(t *testing.T) {
	runner := NewRealRunner()

	_, err := runner.Run(context.Background(), "nonexistent-command-12345")
	assert.Error(t, err)
}

func TestRealRunner_Run_ContextCancellation(t *testing.T) {
	runner := NewRealRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, "sleep", "10")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRealRunner_WithEnv(t *testing.T) {
	runner := NewRealRunner(WithEnv("DEBIAN_FRONTEND=noninteractive"))

	result, err := runner.Run(context.Background(), "sh", "-c", "echo $DEBIAN_FRONTEND")
	require.NoError(t, err)
	assert.Equal(t, "noninteractive\n", result.Stdout)
}

func TestRealRunner_RunWithInputIsNotLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger(logging.WithOutput(&buf), logging.WithLevel(ports.LevelDebug))
	runner := NewRealRunner(WithLogger(logger))

	result, err := runner.RunWithInput(context.Background(), "hunter2\n", "cat")
	require.NoError(t, err)
	assert.Equal(t, "hunter2\n", result.Stdout)
	assert.Contains(t, buf.String(), "command finished")
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestRedactArgs(t *testing.T) {
	args := []string{"new-session", "-e", "TOKEN=s3cr3t", "--env", "A=b=c", "-e", "NOVALUE", "-d"}

	got := RedactArgs(args)

	assert.Equal(t, []string{"new-session", "-e", "TOKEN=***", "--env", "A=***", "-e", "NOVALUE", "-d"}, got)
	assert.Equal(t, "TOKEN=s3cr3t", args[2], "input is not modified")
}

func TestRealRunner_EnvArgsAreRedactedInLog(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger(logging.WithOutput(&buf), logging.WithLevel(ports.LevelDebug))
	runner := NewRealRunner(WithLogger(logger))

	_, err := runner.Run(context.Background(), "echo", "-e", "TOKEN=s3cr3t")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "TOKEN=***")
	assert.NotContains(t, buf.String(), "s3cr3t")
}
