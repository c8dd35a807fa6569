// Package baseline installs the first-run package set.
package baseline

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// StepID identifies the baseline step; the first-run gate keys on it.
const StepID = "apt:baseline"

// PackagesStep installs whichever configured packages are missing.
type PackagesStep struct {
	id       provision.StepID
	names    []string
	packages ports.PackageManager
}

// NewPackagesStep creates the apt:baseline step.
func NewPackagesStep(names []string, packages ports.PackageManager) *PackagesStep {
	return &PackagesStep{
		id:       provision.MustNewStepID(StepID),
		names:    append([]string(nil), names...),
		packages: packages,
	}
}

// ID returns the step identifier.
func (s *PackagesStep) ID() provision.StepID {
	return s.id
}

// RequiresRoot reports that apt-get install needs root.
func (s *PackagesStep) RequiresRoot() bool {
	return true
}

// Check is satisfied when every package is installed.
func (s *PackagesStep) Check(ctx provision.RunContext) (provision.StepStatus, error) {
	missing, err := s.missing(ctx)
	if err != nil {
		return provision.StatusUnknown, err
	}
	if len(missing) == 0 {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Plan lists the packages that would be installed.
func (s *PackagesStep) Plan(ctx provision.RunContext) (provision.Diff, error) {
	missing, err := s.missing(ctx)
	if err != nil {
		return provision.Diff{}, err
	}
	return provision.NewDiff(provision.DiffTypeAdd, "packages", StepID, "", strings.Join(missing, " ")), nil
}

// Apply refreshes the index and installs only what is missing now.
func (s *PackagesStep) Apply(ctx provision.RunContext) error {
	var missing []string
	return provision.Sequence(ctx,
		provision.Op("query", func(rc provision.RunContext) error {
			var err error
			missing, err = s.missing(rc)
			return err
		}),
		provision.Op("update index", func(rc provision.RunContext) error {
			if len(missing) == 0 {
				return nil
			}
			return s.packages.UpdateIndex(rc.Context())
		}),
		provision.Op("install", func(rc provision.RunContext) error {
			if len(missing) == 0 {
				return nil
			}
			return s.packages.Install(rc.Context(), missing...)
		}),
	)
}

// Verify asks dpkg again rather than trusting apt-get's exit code.
func (s *PackagesStep) Verify(ctx provision.RunContext) (bool, error) {
	missing, err := s.missing(ctx)
	if err != nil {
		return false, err
	}
	if len(missing) > 0 {
		return false, fmt.Errorf("still missing: %s", strings.Join(missing, ", "))
	}
	return true, nil
}

// Explain provides a human-readable explanation.
func (s *PackagesStep) Explain() provision.Explanation {
	return provision.NewExplanation(
		"Install baseline packages",
		"Installs the tools every server gets on first run: "+strings.Join(s.names, ", ")+".",
		nil,
	)
}

func (s *PackagesStep) missing(ctx provision.RunContext) ([]string, error) {
	states, err := s.packages.Query(ctx.Context(), s.names...)
	if err != nil {
		return nil, err
	}
	return ports.Missing(states), nil
}

var _ provision.PrivilegedStep = (*PackagesStep)(nil)
