package docker

import (
	"fmt"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// GroupStep adds the operator to the docker group after asking first.
// Membership grants root-equivalent access to the host.
type GroupStep struct {
	id        provision.StepID
	group     string
	operator  string
	accounts  ports.Accounts
	confirmer ports.Confirmer
	// approved holds a yes for the retries of the current run.
	approved bool
}

// NewGroupStep creates the docker:group step.
func NewGroupStep(group, operator string, accounts ports.Accounts, confirmer ports.Confirmer) *GroupStep {
	return &GroupStep{
		id:        provision.MustNewStepID("docker:group"),
		group:     group,
		operator:  operator,
		accounts:  accounts,
		confirmer: confirmer,
	}
}

// ID returns the step identifier.
func (s *GroupStep) ID() provision.StepID {
	return s.id
}

// RequiresRoot reports that usermod needs root.
func (s *GroupStep) RequiresRoot() bool {
	return true
}

// Check reports whether the operator is already a member.
func (s *GroupStep) Check(_ provision.RunContext) (provision.StepStatus, error) {
	member, err := s.accounts.InGroup(s.operator, s.group)
	if err != nil {
		return provision.StatusUnknown, err
	}
	if member {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Plan returns the diff for this step.
func (s *GroupStep) Plan(_ provision.RunContext) (provision.Diff, error) {
	return provision.NewDiff(provision.DiffTypeAdd, "group", s.group, "", s.operator), nil
}

// Apply asks for confirmation and adds the operator to the group. The
// question is asked on the first attempt of a run only.
func (s *GroupStep) Apply(ctx provision.RunContext) error {
	if ctx.Attempt() <= 1 {
		s.approved = false
	}
	if !s.approved {
		ok, err := s.confirmer.Confirm(
			fmt.Sprintf("Add %s to the %s group?", s.operator, s.group),
			"Members can run containers without sudo, which is equivalent to root access.",
		)
		if err != nil {
			return provision.Unsupported("cannot ask for confirmation: %v", err)
		}
		if !ok {
			return provision.Aborted(fmt.Sprintf("%s was not added to %s", s.operator, s.group))
		}
		s.approved = true
	}
	return s.accounts.AddToGroup(ctx.Context(), s.operator, s.group)
}

// Verify re-reads the group membership.
func (s *GroupStep) Verify(_ provision.RunContext) (bool, error) {
	return s.accounts.InGroup(s.operator, s.group)
}

// Explain provides a human-readable explanation.
func (s *GroupStep) Explain() provision.Explanation {
	return provision.NewExplanation(
		"Let "+s.operator+" use Docker without sudo",
		fmt.Sprintf("Adds %s to the %s group. Takes effect at the next login.", s.operator, s.group),
		[]string{"https://docs.docker.com/engine/install/linux-postinstall/"},
	)
}

var _ provision.PrivilegedStep = (*GroupStep)(nil)
