// Package tmux supervises long-running agents in detached tmux sessions owned by a service account.
package tmux

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/felixgeelhaar/debprep/internal/adapters/command"
	"github.com/felixgeelhaar/debprep/internal/ports"
	"github.com/felixgeelhaar/debprep/internal/validation"
)

// FingerprintVar is the session environment variable holding the launch fingerprint.
const FingerprintVar = "DEBPREP_FINGERPRINT"

// The session environment is written by the owner into a 0600 file under its
// home over stdin and sourced by the launcher, so values never reach argv.
const (
	writeEnvScript = `umask 077 && cat > "$HOME/.$1.env"`
	launchScript   = `set -a && . "$HOME/.$1.env" && set +a && shift && exec "$@"`
)

var envNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Supervisor implements ports.Supervisor.
type Supervisor struct {
	runner ports.InputRunner
	logger ports.Logger
}

// New creates a Supervisor.
func New(runner ports.InputRunner, logger ports.Logger) *Supervisor {
	return &Supervisor{runner: runner, logger: logger}
}

// Inspect reports whether the session runs and which fingerprint it was started with.
func (s *Supervisor) Inspect(ctx context.Context, owner, session string) (ports.SessionInfo, error) {
	if err := validate(owner, session); err != nil {
		return ports.SessionInfo{}, err
	}
	info := ports.SessionInfo{Name: session}

	result, err := s.tmux(ctx, owner, "has-session", "-t", target(session))
	if err != nil {
		return info, err
	}
	if !result.Success() {
		return info, nil
	}
	info.Running = true

	result, err = s.tmux(ctx, owner, "show-environment", "-t", target(session), FingerprintVar)
	if err != nil {
		return info, err
	}
	if result.Success() {
		info.Fingerprint = parseEnvLine(result.Stdout, FingerprintVar)
	}
	return info, nil
}

// Start launches program in a new detached session and records fingerprint in its environment.
func (s *Supervisor) Start(ctx context.Context, owner, session, fingerprint string, env map[string]string, program string, args ...string) error {
	if err := validate(owner, session); err != nil {
		return err
	}
	if program == "" {
		return validation.ErrEmptyInput
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !envNameRegex.MatchString(k) || strings.ContainsAny(env[k], "\n\x00") {
			return fmt.Errorf("invalid session environment entry %q", k)
		}
	}

	newArgs := []string{"new-session", "-d", "-s", session}
	if len(keys) > 0 {
		name := envFileName(session)
		if err := s.writeEnv(ctx, owner, name, renderEnv(keys, env)); err != nil {
			return err
		}
		newArgs = append(newArgs, "sh", "-c", launchScript, "sh", name)
	}
	newArgs = append(newArgs, program)
	newArgs = append(newArgs, args...)

	if err := s.mustTmux(ctx, owner, newArgs...); err != nil {
		return err
	}
	if err := s.mustTmux(ctx, owner, "set-environment", "-t", target(session), FingerprintVar, fingerprint); err != nil {
		return err
	}

	s.logger.Info(ctx, "session started",
		ports.F("user", owner),
		ports.F("session", session),
		ports.F("env_keys", strings.Join(keys, ",")),
	)
	return nil
}

// Stop kills the session.
func (s *Supervisor) Stop(ctx context.Context, owner, session string) error {
	if err := validate(owner, session); err != nil {
		return err
	}
	return s.mustTmux(ctx, owner, "kill-session", "-t", target(session))
}

func (s *Supervisor) writeEnv(ctx context.Context, owner, name, content string) error {
	result, err := s.runner.RunWithInput(ctx, content, "runuser", "-u", owner, "--", "sh", "-c", writeEnvScript, "sh", name)
	return command.Check("write session environment", result, err)
}

func envFileName(session string) string {
	return "debprep-" + session
}

// renderEnv produces KEY='value' lines for sh.
func renderEnv(keys []string, env map[string]string) string {
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("='")
		b.WriteString(strings.ReplaceAll(env[k], "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

// tmux runs tmux as owner so the session lives on the owner's server socket.
func (s *Supervisor) tmux(ctx context.Context, owner string, args ...string) (ports.CommandResult, error) {
	full := append([]string{"-u", owner, "--", "tmux"}, args...)
	result, err := s.runner.Run(ctx, "runuser", full...)
	if err != nil {
		return result, command.Check("tmux "+args[0], result, err)
	}
	return result, nil
}

func (s *Supervisor) mustTmux(ctx context.Context, owner string, args ...string) error {
	result, err := s.tmux(ctx, owner, args...)
	if err != nil {
		return err
	}
	return command.Check("tmux "+args[0], result, nil)
}

// target makes tmux match the session name exactly instead of by prefix.
func target(session string) string {
	return "=" + session
}

// parseEnvLine extracts the value from "NAME=value" output; "-NAME" means unset.
func parseEnvLine(out, name string) string {
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), name+"="); ok {
			return v
		}
	}
	return ""
}

func validate(owner, session string) error {
	if err := validation.ValidateUserName(owner); err != nil {
		return err
	}
	return validation.ValidateSessionName(session)
}

var _ ports.Supervisor = (*Supervisor)(nil)
