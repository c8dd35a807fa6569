// Package provider assembles the concrete provisioning steps into menu groups.
package provider

import (
	"fmt"

	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/platform"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// Deps are the host collaborators steps are built from.
type Deps struct {
	FS         ports.FileSystem
	Packages   ports.PackageManager
	Services   ports.ServiceManager
	Sysctl     ports.Sysctl
	Fetcher    ports.Fetcher
	Keys       ports.KeyVerifier
	Accounts   ports.Accounts
	Supervisor ports.Supervisor
	Confirmer  ports.Confirmer
	Platform   *platform.Platform
	Logger     ports.Logger
}

// Provider turns one configuration section into a group of steps.
type Provider interface {
	// Name is the group ID, e.g. "docker".
	Name() string
	Title() string
	Description() string
	// Compile returns the group's steps. No steps means the group is disabled.
	Compile(cfg *config.Config) ([]provision.Step, error)
}

// BuildRegistry compiles providers in order and registers every non-empty group.
func BuildRegistry(cfg *config.Config, providers ...Provider) (*provision.Registry, error) {
	reg := provision.NewRegistry()
	for _, p := range providers {
		steps, err := p.Compile(cfg)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", p.Name(), err)
		}
		if len(steps) == 0 {
			continue
		}
		if err := reg.Register(provision.Group{
			ID:          p.Name(),
			Title:       p.Title(),
			Description: p.Description(),
			Steps:       steps,
		}); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
