package app

import (
	"context"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
)

// StepStatus is the read-only state of one step.
type StepStatus struct {
	Group  string
	StepID provision.StepID
	Status provision.StepStatus
	// Err is set when the guard rejected the host or the probe failed.
	Err error
}

// Status evaluates every step's guard and precondition without applying anything.
func (a *App) Status(ctx context.Context) []StepStatus {
	rc := provision.NewRunContext(ctx)
	var out []StepStatus
	for _, g := range a.registry.Groups() {
		for _, step := range g.Steps {
			out = append(out, a.stepStatus(rc, g.ID, step))
		}
	}
	return out
}

// stepStatus mirrors the runner: a satisfied precondition wins, then the guard.
func (a *App) stepStatus(rc provision.RunContext, group string, step provision.Step) StepStatus {
	st := StepStatus{Group: group, StepID: step.ID(), Status: provision.StatusUnknown}
	status, checkErr := step.Check(rc)
	if checkErr == nil && status == provision.StatusSatisfied {
		st.Status = status
		return st
	}
	if guarded, ok := step.(provision.GuardedStep); ok {
		if err := guarded.Guard(rc); err != nil {
			st.Err = err
			return st
		}
	}
	if checkErr != nil {
		st.Err = checkErr
		return st
	}
	st.Status = status
	return st
}

// PrintStatus renders Status through the reporter, one line per step.
func (a *App) PrintStatus(ctx context.Context) []StepStatus {
	statuses := a.Status(ctx)
	if a.NeedsBootstrap() {
		a.reporter.Warning("first-run setup pending")
	} else {
		a.reporter.Success("first-run setup completed")
	}
	for _, st := range statuses {
		switch {
		case st.Err != nil:
			a.reporter.Error("%s/%s: %v", st.Group, st.StepID, st.Err)
		case st.Status == provision.StatusSatisfied:
			a.reporter.Success("%s/%s: %s", st.Group, st.StepID, st.Status)
		default:
			a.reporter.Info("%s/%s: %s", st.Group, st.StepID, st.Status)
		}
	}
	return statuses
}
