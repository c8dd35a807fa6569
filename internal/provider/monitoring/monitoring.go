// Package monitoring installs the host monitoring agent and keeps it running.
package monitoring

import (
	"fmt"

	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// AgentStep installs the agent package and enables its service.
type AgentStep struct {
	id       provision.StepID
	cfg      config.MonitoringConfig
	packages ports.PackageManager
	services ports.ServiceManager
}

// NewAgentStep creates the monitoring:agent step.
func NewAgentStep(cfg config.MonitoringConfig, packages ports.PackageManager, services ports.ServiceManager) *AgentStep {
	return &AgentStep{
		id:       provision.MustNewStepID("monitoring:agent"),
		cfg:      cfg,
		packages: packages,
		services: services,
	}
}

// ID returns the step identifier.
func (s *AgentStep) ID() provision.StepID {
	return s.id
}

// RequiresRoot reports that apt and systemd need root.
func (s *AgentStep) RequiresRoot() bool {
	return true
}

// Check is satisfied when the package is installed and the service is active.
func (s *AgentStep) Check(ctx provision.RunContext) (provision.StepStatus, error) {
	ok, err := s.converged(ctx)
	if err != nil {
		return provision.StatusUnknown, err
	}
	if ok {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Plan returns the diff for this step.
func (s *AgentStep) Plan(_ provision.RunContext) (provision.Diff, error) {
	return provision.NewDiff(provision.DiffTypeAdd, "service", s.cfg.Service, "", s.cfg.Package), nil
}

// Apply installs the package if needed and starts the service.
func (s *AgentStep) Apply(ctx provision.RunContext) error {
	return provision.Sequence(ctx,
		provision.Op("install "+s.cfg.Package, func(rc provision.RunContext) error {
			installed, err := s.installed(rc)
			if err != nil || installed {
				return err
			}
			if err := s.packages.UpdateIndex(rc.Context()); err != nil {
				return err
			}
			return s.packages.Install(rc.Context(), s.cfg.Package)
		}),
		provision.Op("enable "+s.cfg.Service, func(rc provision.RunContext) error {
			return s.services.EnableNow(rc.Context(), s.cfg.Service)
		}),
	)
}

// Verify requires the service to report active.
func (s *AgentStep) Verify(ctx provision.RunContext) (bool, error) {
	return s.converged(ctx)
}

// Explain provides a human-readable explanation.
func (s *AgentStep) Explain() provision.Explanation {
	return provision.NewExplanation(
		"Install the monitoring agent",
		fmt.Sprintf("Installs %s and enables the %s service.", s.cfg.Package, s.cfg.Service),
		nil,
	)
}

func (s *AgentStep) installed(ctx provision.RunContext) (bool, error) {
	states, err := s.packages.Query(ctx.Context(), s.cfg.Package)
	if err != nil {
		return false, err
	}
	return len(ports.Missing(states)) == 0, nil
}

func (s *AgentStep) converged(ctx provision.RunContext) (bool, error) {
	installed, err := s.installed(ctx)
	if err != nil || !installed {
		return false, err
	}
	return s.services.IsActive(ctx.Context(), s.cfg.Service)
}

var _ provision.PrivilegedStep = (*AgentStep)(nil)
