package provision

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a step failure and decides whether it is retried.
type ErrorKind string

const (
	// KindPreconditionUnknown means the probe failed; the step is treated as unsatisfied.
	KindPreconditionUnknown ErrorKind = "precondition-unknown"
	// KindMutationFailed is a transient mutation failure and is retried.
	KindMutationFailed ErrorKind = "mutation-failed"
	// KindVerificationFailed means the mutation ran but the end state was not observed.
	KindVerificationFailed ErrorKind = "verification-failed"
	// KindUnsupported is fatal: wrong platform, architecture, privilege or untrusted input.
	KindUnsupported ErrorKind = "unsupported"
	// KindUserAborted means the operator declined a prompt. It is not an error.
	KindUserAborted ErrorKind = "user-aborted"
)

// Retryable reports whether another attempt may change the result.
func (k ErrorKind) Retryable() bool {
	return k == KindMutationFailed || k == KindVerificationFailed || k == KindPreconditionUnknown
}

// Error codes for step failures.
const (
	ErrCodeCheckFailed   = "CHECK_FAILED"
	ErrCodeApplyFailed   = "APPLY_FAILED"
	ErrCodeVerifyFailed  = "VERIFY_FAILED"
	ErrCodeUnsupported   = "UNSUPPORTED"
	ErrCodeNotPrivileged = "NOT_PRIVILEGED"
	ErrCodeAborted       = "ABORTED"
	ErrCodeInterrupted   = "INTERRUPTED"
	ErrCodePanicked      = "PANICKED"
)

// StepError is a classified step failure with an actionable suggestion.
type StepError struct {
	Kind       ErrorKind
	Code       string
	Message    string
	StepID     string
	Suggestion string
	Underlying error
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	var b strings.Builder
	if e.StepID != "" {
		fmt.Fprintf(&b, "step %q: ", e.StepID)
	}
	b.WriteString(e.Message)
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain support.
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Format returns a fully formatted error with all details.
func (e *StepError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.StepID != "" {
		fmt.Fprintf(&b, "\n  Step: %s", e.StepID)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}

	return b.String()
}

// WithStepID returns a copy of the error with the step ID set.
func (e *StepError) WithStepID(stepID string) *StepError {
	c := *e
	c.StepID = stepID
	return &c
}

// WithSuggestion returns a copy of the error with the suggestion set.
func (e *StepError) WithSuggestion(suggestion string) *StepError {
	c := *e
	c.Suggestion = suggestion
	return &c
}

// KindOf classifies err. Errors that carry no StepError are transient mutation failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Kind
	}
	return KindMutationFailed
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// Unsupported returns a fatal error for an environment the step cannot handle.
func Unsupported(format string, args ...interface{}) *StepError {
	return &StepError{
		Kind:    KindUnsupported,
		Code:    ErrCodeUnsupported,
		Message: fmt.Sprintf(format, args...),
	}
}

// Aborted returns the error a step uses when the operator declines a prompt.
func Aborted(message string) *StepError {
	return &StepError{
		Kind:    KindUserAborted,
		Code:    ErrCodeAborted,
		Message: message,
	}
}

// NewCheckFailedError wraps a precondition probe failure.
func NewCheckFailedError(stepID string, err error) *StepError {
	return &StepError{
		Kind:       KindPreconditionUnknown,
		Code:       ErrCodeCheckFailed,
		Message:    "precondition could not be evaluated",
		StepID:     stepID,
		Suggestion: "The step will be applied anyway; the postcondition decides whether it converged.",
		Underlying: err,
	}
}

// NewApplyFailedError wraps a failed mutation attempt.
func NewApplyFailedError(stepID string, err error) *StepError {
	return &StepError{
		Kind:       KindMutationFailed,
		Code:       ErrCodeApplyFailed,
		Message:    "mutation failed",
		StepID:     stepID,
		Suggestion: "Check network access and the package manager, then run the step again.",
		Underlying: err,
	}
}

// NewVerifyFailedError reports a mutation whose end state could not be observed.
// err may be nil when the postcondition simply did not hold.
func NewVerifyFailedError(stepID string, err error) *StepError {
	return &StepError{
		Kind:       KindVerificationFailed,
		Code:       ErrCodeVerifyFailed,
		Message:    "desired end state not observed after mutation",
		StepID:     stepID,
		Suggestion: "Inspect the service or setting by hand; some changes only take effect after a reboot.",
		Underlying: err,
	}
}

// NewNotPrivilegedError reports a mutation attempted without root.
func NewNotPrivilegedError(stepID string) *StepError {
	return &StepError{
		Kind:       KindUnsupported,
		Code:       ErrCodeNotPrivileged,
		Message:    "root privileges are required",
		StepID:     stepID,
		Suggestion: "Run debprep as root, for example with sudo.",
	}
}

// NewInterruptedError reports a step cut short by cancellation.
func NewInterruptedError(stepID string, err error) *StepError {
	return &StepError{
		Kind:       KindMutationFailed,
		Code:       ErrCodeInterrupted,
		Message:    "interrupted by operator",
		StepID:     stepID,
		Suggestion: "Run the step again; its precondition picks up where it stopped.",
		Underlying: err,
	}
}

// NewPanicError reports a step that panicked. The panic value becomes the cause.
func NewPanicError(stepID string, recovered interface{}) *StepError {
	cause, ok := recovered.(error)
	if !ok {
		cause = fmt.Errorf("%v", recovered)
	}
	return &StepError{
		Kind:       KindUnsupported,
		Code:       ErrCodePanicked,
		Message:    "step panicked",
		StepID:     stepID,
		Suggestion: "This is a bug in debprep; rerun with --verbose and report the log.",
		Underlying: cause,
	}
}
