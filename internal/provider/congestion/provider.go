package congestion

import (
	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/provider"
)

// Provider builds the congestion group.
type Provider struct {
	deps provider.Deps
}

// NewProvider creates a new congestion provider.
func NewProvider(deps provider.Deps) *Provider {
	return &Provider{deps: deps}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "congestion"
}

// Title returns the menu title.
func (p *Provider) Title() string {
	return "tcp congestion control"
}

// Description returns the menu description.
func (p *Provider) Description() string {
	return "Switch to BBR with the fq queueing discipline"
}

// Compile returns the sysctl:congestion step.
func (p *Provider) Compile(cfg *config.Config) ([]provision.Step, error) {
	return []provision.Step{
		NewTuneStep(cfg.Congestion, p.deps.FS, p.deps.Sysctl, p.deps.Platform),
	}, nil
}

var _ provider.Provider = (*Provider)(nil)
