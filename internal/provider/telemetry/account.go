// Package telemetry installs a telemetry agent under its own system account
// and keeps it running in a supervised tmux session.
package telemetry

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// AccountHandle identifies a service account that exists on the host.
type AccountHandle struct {
	Name string
	UID  int
	Home string
	// Created is true when this call created the account.
	Created bool
}

// SecretFunc produces the credential for a new account.
type SecretFunc func() (string, error)

// NewSecret returns 32 random bytes, base64url encoded.
func NewSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate credential: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// EnsureServiceAccount returns the account called name, creating it first if
// needed. A taken preferredUID falls back to a system-assigned one. The
// credential is passed to the system only. An existing account without a
// usable credential, for example one left behind by a failed chpasswd, gets
// a fresh one.
func EnsureServiceAccount(ctx context.Context, accounts ports.Accounts, logger ports.Logger, name string, preferredUID int, secret SecretFunc) (AccountHandle, error) {
	if acct, found, err := accounts.Lookup(name); err != nil {
		return AccountHandle{}, err
	} else if found {
		if err := ensureCredential(ctx, accounts, logger, name, secret); err != nil {
			return AccountHandle{}, err
		}
		return AccountHandle{Name: acct.Name, UID: acct.UID, Home: acct.Home}, nil
	}

	uid := preferredUID
	if uid > 0 {
		taken, err := accounts.UIDTaken(uid)
		if err != nil {
			return AccountHandle{}, err
		}
		if taken {
			logger.Warn(ctx, "preferred uid is taken, letting the system choose",
				ports.F("account", name), ports.F("uid", uid))
			uid = 0
		}
	}

	if err := accounts.CreateSystem(ctx, name, uid); err != nil {
		return AccountHandle{}, err
	}
	acct, found, err := accounts.Lookup(name)
	if err != nil {
		return AccountHandle{}, err
	}
	if !found {
		return AccountHandle{}, fmt.Errorf("account %s missing after useradd", name)
	}

	if err := setCredential(ctx, accounts, name, secret); err != nil {
		return AccountHandle{}, err
	}
	logger.Info(ctx, "created service account", ports.F("account", name), ports.F("uid", acct.UID))
	return AccountHandle{Name: acct.Name, UID: acct.UID, Home: acct.Home, Created: true}, nil
}

func ensureCredential(ctx context.Context, accounts ports.Accounts, logger ports.Logger, name string, secret SecretFunc) error {
	ok, err := accounts.HasPassword(ctx, name)
	if err != nil || ok {
		return err
	}
	if err := setCredential(ctx, accounts, name, secret); err != nil {
		return err
	}
	logger.Info(ctx, "set missing credential on service account", ports.F("account", name))
	return nil
}

func setCredential(ctx context.Context, accounts ports.Accounts, name string, secret SecretFunc) error {
	credential, err := secret()
	if err != nil {
		return err
	}
	return accounts.SetPassword(ctx, name, credential)
}

// AccountStep creates the agent's system account.
type AccountStep struct {
	id           provision.StepID
	name         string
	preferredUID int
	accounts     ports.Accounts
	logger       ports.Logger
	secret       SecretFunc
}

// NewAccountStep creates the telemetry:account step.
func NewAccountStep(name string, preferredUID int, accounts ports.Accounts, logger ports.Logger) *AccountStep {
	return &AccountStep{
		id:           provision.MustNewStepID("telemetry:account"),
		name:         name,
		preferredUID: preferredUID,
		accounts:     accounts,
		logger:       logger,
		secret:       NewSecret,
	}
}

// ID returns the step identifier.
func (s *AccountStep) ID() provision.StepID {
	return s.id
}

// RequiresRoot reports that useradd needs root.
func (s *AccountStep) RequiresRoot() bool {
	return true
}

// Check reports whether the account exists with a usable credential.
func (s *AccountStep) Check(ctx provision.RunContext) (provision.StepStatus, error) {
	ready, err := s.ready(ctx)
	if err != nil {
		return provision.StatusUnknown, err
	}
	if ready {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

func (s *AccountStep) ready(ctx provision.RunContext) (bool, error) {
	_, found, err := s.accounts.Lookup(s.name)
	if err != nil || !found {
		return false, err
	}
	return s.accounts.HasPassword(ctx.Context(), s.name)
}

// Plan returns the diff for this step.
func (s *AccountStep) Plan(_ provision.RunContext) (provision.Diff, error) {
	return provision.NewDiff(provision.DiffTypeAdd, "account", s.name, "", fmt.Sprintf("uid %d", s.preferredUID)), nil
}

// Apply creates the account.
func (s *AccountStep) Apply(ctx provision.RunContext) error {
	_, err := EnsureServiceAccount(ctx.Context(), s.accounts, s.logger, s.name, s.preferredUID, s.secret)
	return err
}

// Verify requires the account and its credential.
func (s *AccountStep) Verify(ctx provision.RunContext) (bool, error) {
	return s.ready(ctx)
}

// Explain provides a human-readable explanation.
func (s *AccountStep) Explain() provision.Explanation {
	return provision.NewExplanation(
		"Create the "+s.name+" service account",
		fmt.Sprintf("Creates system account %s (uid %d if free) with a random credential that is never shown.",
			s.name, s.preferredUID),
		nil,
	)
}

var _ provision.PrivilegedStep = (*AccountStep)(nil)
