package provision

// StepStatus is the answer a precondition gives about the desired end state.
type StepStatus string

const (
	// StatusSatisfied indicates the desired end state already holds.
	StatusSatisfied StepStatus = "satisfied"
	// StatusNeedsApply indicates the mutation has to run.
	StatusNeedsApply StepStatus = "needs-apply"
	// StatusUnknown indicates the probe failed; it is handled like StatusNeedsApply.
	StatusUnknown StepStatus = "unknown"
)

// String returns the string representation of the status.
func (s StepStatus) String() string {
	return string(s)
}

// NeedsAction returns true if the mutation has to be attempted.
func (s StepStatus) NeedsAction() bool {
	switch s {
	case StatusNeedsApply, StatusUnknown:
		return true
	case StatusSatisfied:
		return false
	}
	return true
}
