package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/tui/ui"
)

// Level is the severity of a reported line.
type Level int

// Report levels.
const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

var symbols = map[Level]string{
	LevelInfo:    "•",
	LevelSuccess: "✓",
	LevelWarning: "!",
	LevelError:   "✗",
}

// LevelFor maps a step result to the level it is reported at.
func LevelFor(res provision.StepResult) Level {
	switch {
	case res.Declined():
		return LevelWarning
	case res.Outcome() == provision.OutcomeAlreadySatisfied:
		return LevelInfo
	case res.Outcome() == provision.OutcomeSucceeded:
		return LevelSuccess
	default:
		return LevelError
	}
}

// Reporter prints leveled, operator-facing lines.
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	styles  ui.Styles
	verbose bool
}

// NewReporter creates a Reporter writing to out.
func NewReporter(out io.Writer, styles ui.Styles) *Reporter {
	return &Reporter{out: out, styles: styles}
}

// SetVerbose enables per-phase progress lines.
func (r *Reporter) SetVerbose(verbose bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verbose = verbose
}

// Report prints msg at level.
func (r *Reporter) Report(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.write(level, msg)
}

func (r *Reporter) write(level Level, msg string) {
	line := symbols[level] + " " + msg
	style := r.styles.Info
	switch level {
	case LevelSuccess:
		style = r.styles.Success
	case LevelWarning:
		style = r.styles.Warning
	case LevelError:
		style = r.styles.Error
	}
	fmt.Fprintln(r.out, style.Render(line))
}

// Info reports an informational line.
func (r *Reporter) Info(format string, args ...interface{}) {
	r.Report(LevelInfo, fmt.Sprintf(format, args...))
}

// Success reports a success line.
func (r *Reporter) Success(format string, args ...interface{}) {
	r.Report(LevelSuccess, fmt.Sprintf(format, args...))
}

// Warning reports a warning line.
func (r *Reporter) Warning(format string, args ...interface{}) {
	r.Report(LevelWarning, fmt.Sprintf(format, args...))
}

// Error reports an error line.
func (r *Reporter) Error(format string, args ...interface{}) {
	r.Report(LevelError, fmt.Sprintf(format, args...))
}

// Result reports the terminal outcome of one step.
func (r *Reporter) Result(res provision.StepResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	level := LevelFor(res)
	msg := fmt.Sprintf("%s: %s", res.StepID(), res.Detail())
	if res.Outcome() == provision.OutcomeSucceeded && !res.Diff().IsEmpty() {
		msg += " " + r.diffStyle(res.Diff()).Render(res.Diff().Summary())
	}
	r.write(level, msg)

	if level != LevelError || res.Error() == nil {
		return
	}
	if res.Error().Error() != res.Detail() {
		fmt.Fprintln(r.out, "    "+res.Error().Error())
	}
	var stepErr *provision.StepError
	if errors.As(res.Error(), &stepErr) && stepErr.Suggestion != "" {
		fmt.Fprintln(r.out, "    hint: "+stepErr.Suggestion)
	}
}

func (r *Reporter) diffStyle(d provision.Diff) lipgloss.Style {
	switch d.Type() {
	case provision.DiffTypeAdd:
		return r.styles.DiffAdd
	case provision.DiffTypeRemove:
		return r.styles.DiffRemove
	default:
		return r.styles.DiffModify
	}
}

// Batch reports every result, then a tally and the names of failed steps.
func (r *Reporter) Batch(b provision.BatchResult) {
	for _, res := range b.Results() {
		r.Result(res)
	}
	failed := b.Failed()
	if len(failed) == 0 {
		r.Success("%s", b.Summary())
		return
	}
	names := make([]string, 0, len(failed))
	for _, res := range failed {
		names = append(names, res.StepID().String())
	}
	r.Error("%s; failed: %s", b.Summary(), strings.Join(names, ", "))
}

// PhaseChanged prints retry progress, and every phase when verbose.
func (r *Reporter) PhaseChanged(id provision.StepID, phase provision.Phase, attempt int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case phase == provision.PhaseBackoff:
		r.write(LevelWarning, fmt.Sprintf("%s: attempt %d failed, retrying", id, attempt))
	case r.verbose && (phase == provision.PhaseApplying || phase == provision.PhaseVerifying):
		fmt.Fprintln(r.out, r.styles.Help.Render(fmt.Sprintf("  %s %s (attempt %d)", id, phase, attempt)))
	}
}

var _ provision.Observer = (*Reporter)(nil)
