// Package command runs host commands for the other adapters.
package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/felixgeelhaar/debprep/internal/adapters/logging"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// RealRunner executes commands with os/exec.
type RealRunner struct {
	env    []string
	logger ports.Logger
}

// Option configures a RealRunner.
type Option func(*RealRunner)

// WithEnv adds KEY=value pairs to the environment of every command.
func WithEnv(kv ...string) Option {
	return func(r *RealRunner) {
		r.env = append(r.env, kv...)
	}
}

// WithLogger logs each command at debug level. Stdin is never logged.
func WithLogger(logger ports.Logger) Option {
	return func(r *RealRunner) {
		r.logger = logger
	}
}

// NewRealRunner creates a new RealRunner.
func NewRealRunner(opts ...Option) *RealRunner {
	r := &RealRunner{logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a command and returns the result.
func (r *RealRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	return r.run(ctx, nil, command, args)
}

// RunWithInput executes a command with input on stdin.
func (r *RealRunner) RunWithInput(ctx context.Context, input string, command string, args ...string) (ports.CommandResult, error) {
	return r.run(ctx, strings.NewReader(input), command, args)
}

func (r *RealRunner) run(ctx context.Context, stdin *strings.Reader, command string, args []string) (ports.CommandResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	if stdin != nil {
		cmd.Stdin = stdin
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := ports.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return result, fmt.Errorf("%s: %w", command, cerr)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			r.logger.Debug(ctx, "command failed to run",
				ports.F("command", command), ports.F("error", err.Error()))
			return result, err
		}
		result.ExitCode = exitErr.ExitCode()
	}

	r.logger.Debug(ctx, "command finished",
		ports.F("command", command+" "+strings.Join(RedactArgs(args), " ")),
		ports.F("exit_code", result.ExitCode),
		ports.F("elapsed", time.Since(start).Round(time.Millisecond).String()))
	return result, nil
}

// RedactArgs masks the value of every "-e KEY=value" or "--env KEY=value"
// pair so environment values never reach the log.
func RedactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		if out[i-1] != "-e" && out[i-1] != "--env" {
			continue
		}
		if key, _, ok := strings.Cut(out[i], "="); ok {
			out[i] = key + "=***"
		}
	}
	return out
}

// Ensure RealRunner implements ports.InputRunner.
var _ ports.InputRunner = (*RealRunner)(nil)
