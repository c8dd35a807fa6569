package mocks

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

// PackageManager is an in-memory ports.PackageManager.
type PackageManager struct {
	mu        sync.Mutex
	installed map[string]string
	installs  [][]string
	updates   int

	// QueryErr, UpdateErr and InstallErr are returned by the matching call when set.
	QueryErr   error
	UpdateErr  error
	InstallErr error
	// InstallFailures makes the first n Install calls fail with InstallErr
	// and later calls succeed. Zero means InstallErr applies to every call.
	InstallFailures int
	// Broken makes Install report success without installing anything.
	Broken bool
}

// NewPackageManager creates a PackageManager with the given packages installed.
func NewPackageManager(installed ...string) *PackageManager {
	m := &PackageManager{installed: make(map[string]string)}
	for _, name := range installed {
		m.installed[name] = "1.0"
	}
	return m
}

// Query implements ports.PackageManager.
func (m *PackageManager) Query(_ context.Context, names ...string) ([]ports.PackageState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	states := make([]ports.PackageState, 0, len(names))
	for _, name := range names {
		version, ok := m.installed[name]
		states = append(states, ports.PackageState{Name: name, Version: version, Installed: ok})
	}
	return states, nil
}

// UpdateIndex implements ports.PackageManager.
func (m *PackageManager) UpdateIndex(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	return m.UpdateErr
}

// Install implements ports.PackageManager.
func (m *PackageManager) Install(_ context.Context, names ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installs = append(m.installs, append([]string(nil), names...))
	if m.InstallErr != nil {
		if m.InstallFailures == 0 || len(m.installs) <= m.InstallFailures {
			return m.InstallErr
		}
	}
	if m.Broken {
		return nil
	}
	for _, name := range names {
		m.installed[name] = "1.0"
	}
	return nil
}

// Installs returns the argument list of every Install call.
func (m *PackageManager) Installs() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.installs))
	copy(out, m.installs)
	return out
}

// Updates returns how many times the index was refreshed.
func (m *PackageManager) Updates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates
}

// ServiceManager is an in-memory ports.ServiceManager.
type ServiceManager struct {
	mu      sync.Mutex
	active  map[string]bool
	enables []string

	EnableErr   error
	IsActiveErr error
	// StayInactive lists units that never become active.
	StayInactive map[string]bool
}

// NewServiceManager creates a ServiceManager with the given units active.
func NewServiceManager(active ...string) *ServiceManager {
	m := &ServiceManager{active: make(map[string]bool), StayInactive: make(map[string]bool)}
	for _, unit := range active {
		m.active[unit] = true
	}
	return m
}

// EnableNow implements ports.ServiceManager.
func (m *ServiceManager) EnableNow(_ context.Context, unit string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enables = append(m.enables, unit)
	if m.EnableErr != nil {
		return m.EnableErr
	}
	if !m.StayInactive[unit] {
		m.active[unit] = true
	}
	return nil
}

// IsActive implements ports.ServiceManager.
func (m *ServiceManager) IsActive(_ context.Context, unit string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsActiveErr != nil {
		return false, m.IsActiveErr
	}
	return m.active[unit], nil
}

// Enables returns the units passed to EnableNow.
func (m *ServiceManager) Enables() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.enables...)
}

// Sysctl is an in-memory ports.Sysctl.
type Sysctl struct {
	mu      sync.Mutex
	values  map[string]string
	modules []string
	applied []string

	// OnApply holds the values that become live when Apply is called.
	OnApply   map[string]string
	GetErr    error
	ModuleErr error
	ApplyErr  error
}

// NewSysctl creates a Sysctl with the given live values.
func NewSysctl(values map[string]string) *Sysctl {
	s := &Sysctl{values: make(map[string]string), OnApply: make(map[string]string)}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Get implements ports.Sysctl.
func (s *Sysctl) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return "", s.GetErr
	}
	return s.values[key], nil
}

// LoadModule implements ports.Sysctl.
func (s *Sysctl) LoadModule(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules = append(s.modules, name)
	return s.ModuleErr
}

// Apply implements ports.Sysctl.
func (s *Sysctl) Apply(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, path)
	if s.ApplyErr != nil {
		return s.ApplyErr
	}
	for k, v := range s.OnApply {
		s.values[k] = v
	}
	return nil
}

// Mutations returns how many module loads and applies were requested.
func (s *Sysctl) Mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.modules) + len(s.applied)
}

// Modules returns the modules passed to LoadModule.
func (s *Sysctl) Modules() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.modules...)
}

var (
	_ ports.PackageManager = (*PackageManager)(nil)
	_ ports.ServiceManager = (*ServiceManager)(nil)
	_ ports.Sysctl         = (*Sysctl)(nil)
)
