package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

// Accounts is an in-memory ports.Accounts.
type Accounts struct {
	mu        sync.Mutex
	accounts  map[string]ports.Account
	passwords map[string]string
	groups    map[string]map[string]bool
	creates   []string
	nextUID   int

	CreateErr error
	LookupErr error
	// PasswordErrs are returned by successive SetPassword calls before it succeeds.
	PasswordErrs []error
	// GroupErrs are returned by successive AddToGroup calls before it succeeds.
	GroupErrs []error
}

// NewAccounts creates an Accounts mock. Auto-assigned UIDs count down from 999.
func NewAccounts() *Accounts {
	return &Accounts{
		accounts:  make(map[string]ports.Account),
		passwords: make(map[string]string),
		groups:    make(map[string]map[string]bool),
		nextUID:   999,
	}
}

// AddAccount registers an existing account.
func (a *Accounts) AddAccount(acct ports.Account) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts[acct.Name] = acct
}

// Lookup implements ports.Accounts.
func (a *Accounts) Lookup(name string) (ports.Account, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.LookupErr != nil {
		return ports.Account{}, false, a.LookupErr
	}
	acct, ok := a.accounts[name]
	return acct, ok, nil
}

// UIDTaken implements ports.Accounts.
func (a *Accounts) UIDTaken(uid int) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.uidTaken(uid), nil
}

func (a *Accounts) uidTaken(uid int) bool {
	for _, acct := range a.accounts {
		if acct.UID == uid {
			return true
		}
	}
	return false
}

// CreateSystem implements ports.Accounts.
func (a *Accounts) CreateSystem(_ context.Context, name string, uid int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.creates = append(a.creates, name)
	if a.CreateErr != nil {
		return a.CreateErr
	}
	if _, exists := a.accounts[name]; exists {
		return fmt.Errorf("useradd: user '%s' already exists", name)
	}
	if uid > 0 && a.uidTaken(uid) {
		return fmt.Errorf("useradd: UID %d is not unique", uid)
	}
	if uid <= 0 {
		for a.uidTaken(a.nextUID) {
			a.nextUID--
		}
		uid = a.nextUID
		a.nextUID--
	}
	a.accounts[name] = ports.Account{Name: name, UID: uid, GID: uid, Home: "/home/" + name}
	a.passwords[name] = ""
	return nil
}

// SetPassword implements ports.Accounts.
func (a *Accounts) SetPassword(_ context.Context, name, secret string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.accounts[name]; !ok {
		return fmt.Errorf("chpasswd: user '%s' does not exist", name)
	}
	if len(a.PasswordErrs) > 0 {
		err := a.PasswordErrs[0]
		a.PasswordErrs = a.PasswordErrs[1:]
		return err
	}
	a.passwords[name] = secret
	return nil
}

// HasPassword implements ports.Accounts. Accounts added with AddAccount count
// as having a credential unless SetLocked was called.
func (a *Accounts) HasPassword(_ context.Context, name string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.accounts[name]; !ok {
		return false, fmt.Errorf("passwd: user '%s' does not exist", name)
	}
	secret, ok := a.passwords[name]
	return !ok || secret != "", nil
}

// SetLocked marks name as having no usable credential.
func (a *Accounts) SetLocked(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.passwords[name] = ""
}

// InGroup implements ports.Accounts.
func (a *Accounts) InGroup(user, group string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.groups[group][user], nil
}

// AddToGroup implements ports.Accounts.
func (a *Accounts) AddToGroup(_ context.Context, user, group string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.GroupErrs) > 0 {
		err := a.GroupErrs[0]
		a.GroupErrs = a.GroupErrs[1:]
		return err
	}
	if a.groups[group] == nil {
		a.groups[group] = make(map[string]bool)
	}
	a.groups[group][user] = true
	return nil
}

// Creates returns the names passed to CreateSystem.
func (a *Accounts) Creates() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.creates...)
}

// Password returns the credential set for name.
func (a *Accounts) Password(name string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.passwords[name]
}

// Supervisor is an in-memory ports.Supervisor.
type Supervisor struct {
	mu       sync.Mutex
	sessions map[string]ports.SessionInfo
	starts   []string
	stops    []string
	envs     map[string]map[string]string

	StartErr error
	// NoStart makes Start report success without a session appearing.
	NoStart bool
}

// NewSupervisor creates an empty Supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{
		sessions: make(map[string]ports.SessionInfo),
		envs:     make(map[string]map[string]string),
	}
}

func sessionKey(user, session string) string {
	return user + "/" + session
}

// AddSession registers a running session.
func (s *Supervisor) AddSession(user, session, fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionKey(user, session)] = ports.SessionInfo{Name: session, Running: true, Fingerprint: fingerprint}
}

// Inspect implements ports.Supervisor.
func (s *Supervisor) Inspect(_ context.Context, user, session string) (ports.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.sessions[sessionKey(user, session)]
	if !ok {
		return ports.SessionInfo{Name: session}, nil
	}
	return info, nil
}

// Start implements ports.Supervisor.
func (s *Supervisor) Start(_ context.Context, user, session, fingerprint string, env map[string]string, _ string, _ ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey(user, session)
	s.starts = append(s.starts, key)
	if s.StartErr != nil {
		return s.StartErr
	}
	if _, running := s.sessions[key]; running {
		return fmt.Errorf("duplicate session: %s", session)
	}
	s.envs[key] = env
	if !s.NoStart {
		s.sessions[key] = ports.SessionInfo{Name: session, Running: true, Fingerprint: fingerprint}
	}
	return nil
}

// Stop implements ports.Supervisor.
func (s *Supervisor) Stop(_ context.Context, user, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey(user, session)
	s.stops = append(s.stops, key)
	delete(s.sessions, key)
	return nil
}

// Starts returns the user/session keys passed to Start.
func (s *Supervisor) Starts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.starts...)
}

// Stops returns the user/session keys passed to Stop.
func (s *Supervisor) Stops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stops...)
}

// Env returns the environment the session was started with.
func (s *Supervisor) Env(user, session string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.envs[sessionKey(user, session)]
}

var (
	_ ports.Accounts   = (*Accounts)(nil)
	_ ports.Supervisor = (*Supervisor)(nil)
)
