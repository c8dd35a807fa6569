package telemetry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

// SessionState is what a supervised session looks like before launch.
type SessionState int

const (
	// SessionAbsent means no session is running.
	SessionAbsent SessionState = iota
	// SessionStale means a session runs with a different configuration.
	SessionStale
	// SessionHealthy means the session runs with the current configuration.
	SessionHealthy
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case SessionAbsent:
		return "absent"
	case SessionStale:
		return "stale"
	case SessionHealthy:
		return "healthy"
	default:
		return "unknown"
	}
}

// SessionSpec describes the process to supervise.
type SessionSpec struct {
	Name    string
	Program string
	Args    []string
	Env     map[string]string
	// BinaryHash is the SHA-256 of Program, so a new binary restarts the session.
	BinaryHash string
}

// Fingerprint hashes everything that requires a restart when it changes.
func (s SessionSpec) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "binary=%s\x00program=%s\x00", s.BinaryHash, s.Program)
	for _, arg := range s.Args {
		fmt.Fprintf(h, "arg=%s\x00", arg)
	}
	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "env=%s=%s\x00", k, s.Env[k])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// SessionHandle identifies a running supervised session.
type SessionHandle struct {
	Owner       string
	Name        string
	Fingerprint string
}

// InspectSession classifies the session spec would run in.
func InspectSession(ctx context.Context, sup ports.Supervisor, acct AccountHandle, spec SessionSpec) (SessionState, error) {
	info, err := sup.Inspect(ctx, acct.Name, spec.Name)
	if err != nil {
		return SessionAbsent, err
	}
	switch {
	case !info.Running:
		return SessionAbsent, nil
	case info.Fingerprint != spec.Fingerprint():
		return SessionStale, nil
	default:
		return SessionHealthy, nil
	}
}

// LaunchSupervised makes sure spec runs in a detached session owned by acct.
// A healthy session is left alone; a stale one is stopped and started again.
func LaunchSupervised(ctx context.Context, sup ports.Supervisor, logger ports.Logger, acct AccountHandle, spec SessionSpec) (SessionHandle, error) {
	handle := SessionHandle{Owner: acct.Name, Name: spec.Name, Fingerprint: spec.Fingerprint()}

	state, err := InspectSession(ctx, sup, acct, spec)
	if err != nil {
		return SessionHandle{}, err
	}
	switch state {
	case SessionHealthy:
		return handle, nil
	case SessionStale:
		logger.Info(ctx, "configuration changed, restarting session",
			ports.F("owner", acct.Name), ports.F("session", spec.Name))
		if err := sup.Stop(ctx, acct.Name, spec.Name); err != nil {
			return SessionHandle{}, fmt.Errorf("stop stale session: %w", err)
		}
	}

	if err := sup.Start(ctx, acct.Name, spec.Name, handle.Fingerprint, spec.Env, spec.Program, spec.Args...); err != nil {
		return SessionHandle{}, fmt.Errorf("start session: %w", err)
	}
	return handle, nil
}
