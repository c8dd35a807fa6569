package baseline

import (
	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/provider"
)

// Provider builds the baseline group.
type Provider struct {
	deps provider.Deps
}

// NewProvider creates a new baseline provider.
func NewProvider(deps provider.Deps) *Provider {
	return &Provider{deps: deps}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "baseline"
}

// Title returns the menu title.
func (p *Provider) Title() string {
	return "baseline packages"
}

// Description returns the menu description.
func (p *Provider) Description() string {
	return "Install the first-run tool set"
}

// Compile returns the apt:baseline step, or nothing for an empty package list.
func (p *Provider) Compile(cfg *config.Config) ([]provision.Step, error) {
	if len(cfg.Baseline.Packages) == 0 {
		return nil, nil
	}
	return []provision.Step{NewPackagesStep(cfg.Baseline.Packages, p.deps.Packages)}, nil
}

var _ provider.Provider = (*Provider)(nil)
