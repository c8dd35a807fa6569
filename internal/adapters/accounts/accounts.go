// Package accounts manages local system accounts with os/user and the shadow utilities.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"os/user"
	"slices"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/debprep/internal/adapters/command"
	"github.com/felixgeelhaar/debprep/internal/ports"
	"github.com/felixgeelhaar/debprep/internal/validation"
)

// NoLoginShell is the shell given to service accounts.
const NoLoginShell = "/usr/sbin/nologin"

// directory is the subset of os/user the manager reads from.
type directory struct {
	lookup      func(name string) (*user.User, error)
	lookupID    func(uid string) (*user.User, error)
	lookupGroup func(name string) (*user.Group, error)
}

var systemDirectory = directory{
	lookup:      user.Lookup,
	lookupID:    user.LookupId,
	lookupGroup: user.LookupGroup,
}

// Manager implements ports.Accounts.
type Manager struct {
	runner ports.InputRunner
	dir    directory
}

// New creates a Manager.
func New(runner ports.InputRunner) *Manager {
	return &Manager{runner: runner, dir: systemDirectory}
}

// Lookup returns the named account.
func (m *Manager) Lookup(name string) (ports.Account, bool, error) {
	u, err := m.dir.lookup(name)
	if err != nil {
		var unknown user.UnknownUserError
		if errors.As(err, &unknown) {
			return ports.Account{}, false, nil
		}
		return ports.Account{}, false, fmt.Errorf("lookup user %s: %w", name, err)
	}
	acct, err := toAccount(u)
	if err != nil {
		return ports.Account{}, false, err
	}
	return acct, true, nil
}

// UIDTaken reports whether uid belongs to an existing account.
func (m *Manager) UIDTaken(uid int) (bool, error) {
	_, err := m.dir.lookupID(strconv.Itoa(uid))
	if err == nil {
		return true, nil
	}
	var unknown user.UnknownUserIdError
	if errors.As(err, &unknown) {
		return false, nil
	}
	return false, fmt.Errorf("lookup uid %d: %w", uid, err)
}

// CreateSystem runs useradd for a home-owning system account that cannot log in.
func (m *Manager) CreateSystem(ctx context.Context, name string, uid int) error {
	if err := validation.ValidateUserName(name); err != nil {
		return err
	}
	args := []string{"--system"}
	if uid > 0 {
		args = append(args, "--uid", strconv.Itoa(uid))
	}
	args = append(args, "--create-home", "--shell", NoLoginShell, name)
	return m.run(ctx, "useradd", args...)
}

// SetPassword pipes the credential to chpasswd on stdin.
func (m *Manager) SetPassword(ctx context.Context, name, secret string) error {
	if err := validation.ValidateUserName(name); err != nil {
		return err
	}
	if secret == "" || strings.ContainsAny(secret, ":\n") {
		return errors.New("credential must be non-empty and free of ':' and newlines")
	}
	result, err := m.runner.RunWithInput(ctx, name+":"+secret+"\n", "chpasswd")
	if err != nil {
		return fmt.Errorf("chpasswd: %w", err)
	}
	if !result.Success() {
		// chpasswd may echo the offending line; keep stderr out of the error.
		return fmt.Errorf("chpasswd exited %d", result.ExitCode)
	}
	return nil
}

// HasPassword reads the status column of `passwd -S`. "P" means a usable
// password; "L" (locked, as left by useradd) and "NP" do not count.
func (m *Manager) HasPassword(ctx context.Context, name string) (bool, error) {
	if err := validation.ValidateUserName(name); err != nil {
		return false, err
	}
	result, err := m.runner.Run(ctx, "passwd", "-S", name)
	if cerr := command.Check("passwd", result, err); cerr != nil {
		return false, cerr
	}
	fields := strings.Fields(result.Stdout)
	if len(fields) < 2 || fields[0] != name {
		return false, fmt.Errorf("unexpected passwd -S output for %s", name)
	}
	return fields[1] == "P", nil
}

// InGroup reports whether name is a supplementary or primary member of group.
func (m *Manager) InGroup(name, group string) (bool, error) {
	u, err := m.dir.lookup(name)
	if err != nil {
		return false, fmt.Errorf("lookup user %s: %w", name, err)
	}
	g, err := m.dir.lookupGroup(group)
	if err != nil {
		var unknown user.UnknownGroupError
		if errors.As(err, &unknown) {
			return false, nil
		}
		return false, fmt.Errorf("lookup group %s: %w", group, err)
	}
	if u.Gid == g.Gid {
		return true, nil
	}
	ids, err := u.GroupIds()
	if err != nil {
		return false, fmt.Errorf("groups of %s: %w", name, err)
	}
	return slices.Contains(ids, g.Gid), nil
}

// AddToGroup appends group to the user's supplementary groups.
func (m *Manager) AddToGroup(ctx context.Context, name, group string) error {
	if err := validation.ValidateUserName(name); err != nil {
		return err
	}
	if err := validation.ValidateUserName(group); err != nil {
		return err
	}
	return m.run(ctx, "usermod", "-aG", group, name)
}

func (m *Manager) run(ctx context.Context, name string, args ...string) error {
	result, err := m.runner.Run(ctx, name, args...)
	return command.Check(name, result, err)
}

func toAccount(u *user.User) (ports.Account, error) {
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return ports.Account{}, fmt.Errorf("user %s has non-numeric uid %q", u.Username, u.Uid)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return ports.Account{}, fmt.Errorf("user %s has non-numeric gid %q", u.Username, u.Gid)
	}
	return ports.Account{Name: u.Username, UID: uid, GID: gid, Home: u.HomeDir}, nil
}

var _ ports.Accounts = (*Manager)(nil)
