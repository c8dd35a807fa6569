package docker

import (
	"os"

	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/provider"
)

// Provider builds the docker group.
type Provider struct {
	deps   provider.Deps
	getenv func(string) string
}

// NewProvider creates a new docker provider.
func NewProvider(deps provider.Deps) *Provider {
	return &Provider{deps: deps, getenv: os.Getenv}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "docker"
}

// Title returns the menu title.
func (p *Provider) Title() string {
	return "docker engine"
}

// Description returns the menu description.
func (p *Provider) Description() string {
	return "Install Docker Engine from download.docker.com"
}

// Compile returns docker:engine and, when an operator is known, docker:group.
func (p *Provider) Compile(cfg *config.Config) ([]provision.Step, error) {
	codename := cfg.Repository.Codename
	if codename == "" && p.deps.Platform != nil {
		codename = p.deps.Platform.Release().Codename
	}
	steps := []provision.Step{NewEngineStep(cfg.Docker, codename, p.deps)}

	if operator := p.operator(cfg.Docker); operator != "" {
		steps = append(steps, NewGroupStep(cfg.Docker.Group, operator, p.deps.Accounts, p.deps.Confirmer))
	}
	return steps, nil
}

// operator is the configured operator, else the user who invoked sudo.
func (p *Provider) operator(cfg config.DockerConfig) string {
	if cfg.Operator != "" {
		return cfg.Operator
	}
	if user := p.getenv("SUDO_USER"); user != "root" {
		return user
	}
	return ""
}

var _ provider.Provider = (*Provider)(nil)
