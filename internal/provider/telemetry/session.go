package telemetry

import (
	"fmt"

	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// SessionStep keeps the agent running under its account in a tmux session.
type SessionStep struct {
	id         provision.StepID
	cfg        config.TelemetryConfig
	fs         ports.FileSystem
	accounts   ports.Accounts
	supervisor ports.Supervisor
	logger     ports.Logger
}

// NewSessionStep creates the telemetry:session step.
func NewSessionStep(cfg config.TelemetryConfig, fsys ports.FileSystem, accounts ports.Accounts, supervisor ports.Supervisor, logger ports.Logger) *SessionStep {
	return &SessionStep{
		id:         provision.MustNewStepID("telemetry:session"),
		cfg:        cfg,
		fs:         fsys,
		accounts:   accounts,
		supervisor: supervisor,
		logger:     logger,
	}
}

// ID returns the step identifier.
func (s *SessionStep) ID() provision.StepID {
	return s.id
}

// RequiresRoot reports that starting a session as another user needs root.
func (s *SessionStep) RequiresRoot() bool {
	return true
}

// Guard requires the account and the binary installed by the earlier steps.
func (s *SessionStep) Guard(_ provision.RunContext) error {
	if _, err := s.account(); err != nil {
		return provision.Unsupported("%v", err).WithSuggestion("run telemetry:account first")
	}
	if !s.fs.Exists(s.cfg.InstallPath) {
		return provision.Unsupported("agent binary %s is not installed", s.cfg.InstallPath).
			WithSuggestion("run telemetry:binary first")
	}
	return nil
}

// Check is satisfied only by a session running the current configuration.
func (s *SessionStep) Check(ctx provision.RunContext) (provision.StepStatus, error) {
	state, err := s.state(ctx)
	if err != nil {
		return provision.StatusUnknown, err
	}
	if state == SessionHealthy {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Plan distinguishes a first start from a restart.
func (s *SessionStep) Plan(ctx provision.RunContext) (provision.Diff, error) {
	state, err := s.state(ctx)
	if err != nil {
		return provision.Diff{}, err
	}
	if state == SessionStale {
		return provision.NewDiff(provision.DiffTypeModify, "session", s.cfg.Session, "stale", "restarted"), nil
	}
	return provision.NewDiff(provision.DiffTypeAdd, "session", s.cfg.Session, "", s.cfg.InstallPath), nil
}

// Apply launches or relaunches the session.
func (s *SessionStep) Apply(ctx provision.RunContext) error {
	acct, err := s.account()
	if err != nil {
		return err
	}
	spec, err := s.spec()
	if err != nil {
		return err
	}
	_, err = LaunchSupervised(ctx.Context(), s.supervisor, s.logger, acct, spec)
	return err
}

// Verify requires the session to be running with the current fingerprint.
func (s *SessionStep) Verify(ctx provision.RunContext) (bool, error) {
	state, err := s.state(ctx)
	return state == SessionHealthy, err
}

// Explain provides a human-readable explanation.
func (s *SessionStep) Explain() provision.Explanation {
	return provision.NewExplanation(
		"Run the telemetry agent",
		fmt.Sprintf("Runs %s as %s in tmux session %q and restarts it when its configuration changes.",
			s.cfg.InstallPath, s.cfg.Account, s.cfg.Session),
		nil,
	)
}

func (s *SessionStep) account() (AccountHandle, error) {
	acct, found, err := s.accounts.Lookup(s.cfg.Account)
	if err != nil {
		return AccountHandle{}, err
	}
	if !found {
		return AccountHandle{}, fmt.Errorf("account %s does not exist", s.cfg.Account)
	}
	return AccountHandle{Name: acct.Name, UID: acct.UID, Home: acct.Home}, nil
}

func (s *SessionStep) spec() (SessionSpec, error) {
	hash, err := s.fs.FileHash(s.cfg.InstallPath)
	if err != nil {
		return SessionSpec{}, err
	}
	return SessionSpec{
		Name:       s.cfg.Session,
		Program:    s.cfg.InstallPath,
		Args:       s.cfg.Args,
		Env:        s.cfg.Env,
		BinaryHash: hash,
	}, nil
}

func (s *SessionStep) state(ctx provision.RunContext) (SessionState, error) {
	acct, err := s.account()
	if err != nil {
		return SessionAbsent, err
	}
	spec, err := s.spec()
	if err != nil {
		return SessionAbsent, err
	}
	return InspectSession(ctx.Context(), s.supervisor, acct, spec)
}

var (
	_ provision.GuardedStep    = (*SessionStep)(nil)
	_ provision.PrivilegedStep = (*SessionStep)(nil)
)
