package accounts

import (
	"context"
	"errors"
	"os/user"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/ports"
	"github.com/felixgeelhaar/debprep/internal/testutil/mocks"
	"github.com/felixgeelhaar/debprep/internal/validation"
)

func fakeDirectory() directory {
	users := map[string]*user.User{
		"telemetry": {Uid: "1500", Gid: "1500", Username: "telemetry", HomeDir: "/home/telemetry"},
		"root":      {Uid: "0", Gid: "0", Username: "root", HomeDir: "/root"},
	}
	groups := map[string]*user.Group{
		"root":   {Gid: "0", Name: "root"},
		"docker": {Gid: "998", Name: "docker"},
	}
	return directory{
		lookup: func(name string) (*user.User, error) {
			if u, ok := users[name]; ok {
				return u, nil
			}
			return nil, user.UnknownUserError(name)
		},
		lookupID: func(uid string) (*user.User, error) {
			for _, u := range users {
				if u.Uid == uid {
					return u, nil
				}
			}
			return nil, user.UnknownUserIdError(0)
		},
		lookupGroup: func(name string) (*user.Group, error) {
			if g, ok := groups[name]; ok {
				return g, nil
			}
			return nil, user.UnknownGroupError(name)
		},
	}
}

func newManager(runner *mocks.CommandRunner) *Manager {
	m := New(runner)
	m.dir = fakeDirectory()
	return m
}

func TestManager_Lookup(t *testing.T) {
	t.Parallel()

	m := newManager(mocks.NewCommandRunner())

	acct, found, err := m.Lookup("telemetry")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, ports.Account{Name: "telemetry", UID: 1500, GID: 1500, Home: "/home/telemetry"}, acct)

	_, found, err = m.Lookup("nobody-here")
	require.NoError(t, err)
	assert.False(t, found)

	m.dir.lookup = func(string) (*user.User, error) { return nil, errors.New("nss broken") }
	_, _, err = m.Lookup("telemetry")
	assert.Error(t, err)
}

func TestManager_UIDTaken(t *testing.T) {
	t.Parallel()

	m := newManager(mocks.NewCommandRunner())

	taken, err := m.UIDTaken(1500)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = m.UIDTaken(1501)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestManager_CreateSystem(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	withUID := []string{"--system", "--uid", "1500", "--create-home", "--shell", NoLoginShell, "telemetry"}
	autoUID := []string{"--system", "--create-home", "--shell", NoLoginShell, "telemetry"}
	runner.AddResult("useradd", withUID, ports.CommandResult{})
	runner.AddResult("useradd", autoUID, ports.CommandResult{ExitCode: 9, Stderr: "useradd: user 'telemetry' already exists"})

	m := newManager(runner)
	require.NoError(t, m.CreateSystem(context.Background(), "telemetry", 1500))

	err := m.CreateSystem(context.Background(), "telemetry", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	assert.ErrorIs(t, m.CreateSystem(context.Background(), "Bad Name", 0), validation.ErrInvalidUserName)
}

func TestManager_SetPassword(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("chpasswd", nil, ports.CommandResult{})
	m := newManager(runner)

	require.NoError(t, m.SetPassword(context.Background(), "telemetry", "s3cr3t"))

	for _, call := range runner.Calls() {
		assert.NotContains(t, call.Args, "s3cr3t", "credential never appears on a command line")
	}
	assert.Equal(t, []string{"telemetry:s3cr3t\n"}, runner.Inputs("chpasswd"))

	assert.Error(t, m.SetPassword(context.Background(), "telemetry", "a:b"))
	assert.Error(t, m.SetPassword(context.Background(), "telemetry", ""))
}

func TestManager_SetPassword_FailureHidesStderr(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("chpasswd", nil, ports.CommandResult{ExitCode: 1, Stderr: "chpasswd: line 1: telemetry:s3cr3t"})

	err := newManager(runner).SetPassword(context.Background(), "telemetry", "s3cr3t")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cr3t")
}

func TestManager_HasPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		stdout  string
		want    bool
		wantErr bool
	}{
		{name: "usable", stdout: "telemetry P 2026-10-17 0 99999 7 -1\n", want: true},
		{name: "locked after useradd", stdout: "telemetry L 2026-10-17 0 99999 7 -1\n"},
		{name: "no password", stdout: "telemetry NP 2026-10-17 0 99999 7 -1\n"},
		{name: "garbage", stdout: "\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := mocks.NewCommandRunner()
			runner.AddResult("passwd", []string{"-S", "telemetry"}, ports.CommandResult{Stdout: tt.stdout})

			got, err := newManager(runner).HasPassword(context.Background(), "telemetry")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManager_Groups(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("usermod", []string{"-aG", "docker", "telemetry"}, ports.CommandResult{})
	m := newManager(runner)

	in, err := m.InGroup("root", "root")
	require.NoError(t, err)
	assert.True(t, in, "primary group counts")

	in, err = m.InGroup("telemetry", "no-such-group")
	require.NoError(t, err)
	assert.False(t, in)

	_, err = m.InGroup("ghost", "docker")
	assert.Error(t, err)

	require.NoError(t, m.AddToGroup(context.Background(), "telemetry", "docker"))
	assert.Equal(t, 1, runner.CallCount("usermod", "-aG", "docker", "telemetry"))
	assert.Error(t, m.AddToGroup(context.Background(), "telemetry", "doc;ker"))
}
