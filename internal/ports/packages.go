package ports

import "context"

// PackageState describes what dpkg knows about a single package.
type PackageState struct {
	Name      string
	Version   string
	Installed bool
}

// PackageManager is the package-manager surface steps are allowed to use.
// All operations are idempotent from the caller's point of view.
type PackageManager interface {
	// Query returns the state of every requested package, in request order.
	// Packages dpkg has never heard of are returned with Installed == false.
	Query(ctx context.Context, names ...string) ([]PackageState, error)
	// UpdateIndex refreshes the package index.
	UpdateIndex(ctx context.Context) error
	// Install installs the named packages non-interactively.
	Install(ctx context.Context, names ...string) error
}

// Missing returns the names from states that are not installed.
func Missing(states []PackageState) []string {
	var missing []string
	for _, s := range states {
		if !s.Installed {
			missing = append(missing, s.Name)
		}
	}
	return missing
}

// ServiceManager is the init-system surface.
type ServiceManager interface {
	// EnableNow enables the unit and starts it immediately.
	EnableNow(ctx context.Context, unit string) error
	// IsActive reports whether the unit is currently active.
	IsActive(ctx context.Context, unit string) (bool, error)
}

// Sysctl reads and applies kernel parameters.
type Sysctl interface {
	// Get returns the live value of a dotted key such as net.ipv4.tcp_congestion_control.
	Get(key string) (string, error)
	// LoadModule loads a kernel module.
	LoadModule(ctx context.Context, name string) error
	// Apply loads the settings of a sysctl.d file into the running kernel.
	Apply(ctx context.Context, path string) error
}
