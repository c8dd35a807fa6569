package repository

import (
	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/provider"
)

// Provider builds the repository group.
type Provider struct {
	deps provider.Deps
}

// NewProvider creates a new repository provider.
func NewProvider(deps provider.Deps) *Provider {
	return &Provider{deps: deps}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "repository"
}

// Title returns the menu title.
func (p *Provider) Title() string {
	return "apt repositories"
}

// Description returns the menu description.
func (p *Provider) Description() string {
	return "Point sources.list at the configured Debian mirrors"
}

// Compile returns the apt:sources step.
func (p *Provider) Compile(cfg *config.Config) ([]provision.Step, error) {
	return []provision.Step{
		NewSourcesStep(cfg.Repository, p.deps.FS, p.deps.Packages, p.deps.Platform),
	}, nil
}

var _ provider.Provider = (*Provider)(nil)
