package ports

import "context"

// Account describes a local user account.
type Account struct {
	Name string
	UID  int
	GID  int
	Home string
}

// Accounts manages local system accounts.
type Accounts interface {
	// Lookup returns the account with the given name, or found == false.
	Lookup(name string) (acct Account, found bool, err error)
	// UIDTaken reports whether any account already owns uid.
	UIDTaken(uid int) (bool, error)
	// CreateSystem creates a system account. A uid of zero or less lets the
	// system pick one.
	CreateSystem(ctx context.Context, name string, uid int) error
	// SetPassword sets the account credential without exposing it on a command line.
	SetPassword(ctx context.Context, name, secret string) error
	// HasPassword reports whether the account has a usable credential set.
	HasPassword(ctx context.Context, name string) (bool, error)
	// InGroup reports whether user is a member of group.
	InGroup(user, group string) (bool, error)
	// AddToGroup adds user to the supplementary group.
	AddToGroup(ctx context.Context, user, group string) error
}

// SessionInfo is what the supervisor knows about a running session.
type SessionInfo struct {
	Name        string
	Running     bool
	Fingerprint string
}

// Supervisor runs long-lived processes in detachable terminal sessions.
type Supervisor interface {
	// Inspect returns information about the named session owned by user.
	Inspect(ctx context.Context, user, session string) (SessionInfo, error)
	// Start launches command in a new detached session and tags it with fingerprint.
	Start(ctx context.Context, user, session, fingerprint string, env map[string]string, command string, args ...string) error
	// Stop terminates the named session.
	Stop(ctx context.Context, user, session string) error
}
