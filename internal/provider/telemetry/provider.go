package telemetry

import (
	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/provider"
)

// Provider builds the telemetry group.
type Provider struct {
	deps provider.Deps
}

// NewProvider creates a new telemetry provider.
func NewProvider(deps provider.Deps) *Provider {
	return &Provider{deps: deps}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "telemetry"
}

// Title returns the menu title.
func (p *Provider) Title() string {
	return "telemetry agent"
}

// Description returns the menu description.
func (p *Provider) Description() string {
	return "Install the telemetry agent and run it under its own account"
}

// Compile returns the account, binary and session steps when telemetry is enabled.
func (p *Provider) Compile(cfg *config.Config) ([]provision.Step, error) {
	t := cfg.Telemetry
	if !t.Enabled {
		return nil, nil
	}
	return []provision.Step{
		NewAccountStep(t.Account, t.PreferredUID, p.deps.Accounts, p.deps.Logger),
		NewBinaryStep(t.BinaryURL, t.SHA256, t.InstallPath, p.deps.FS, p.deps.Fetcher, p.deps.Logger),
		NewSessionStep(t, p.deps.FS, p.deps.Accounts, p.deps.Supervisor, p.deps.Logger),
	}, nil
}

var _ provider.Provider = (*Provider)(nil)
