package monitoring

import (
	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/provider"
)

// Provider builds the monitoring group.
type Provider struct {
	deps provider.Deps
}

// NewProvider creates a new monitoring provider.
func NewProvider(deps provider.Deps) *Provider {
	return &Provider{deps: deps}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "monitoring"
}

// Title returns the menu title.
func (p *Provider) Title() string {
	return "monitoring agent"
}

// Description returns the menu description.
func (p *Provider) Description() string {
	return "Install and enable the node exporter"
}

// Compile returns the monitoring:agent step, or nothing when no package is configured.
func (p *Provider) Compile(cfg *config.Config) ([]provision.Step, error) {
	if cfg.Monitoring.Package == "" {
		return nil, nil
	}
	return []provision.Step{NewAgentStep(cfg.Monitoring, p.deps.Packages, p.deps.Services)}, nil
}

var _ provider.Provider = (*Provider)(nil)
