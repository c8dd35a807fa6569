package provision

import (
	"github.com/felixgeelhaar/statekit"
)

// Phase is where a step currently is inside a Run.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseChecking  Phase = "checking"
	PhaseApplying  Phase = "applying"
	PhaseVerifying Phase = "verifying"
	PhaseBackoff   Phase = "backoff"
	PhaseSatisfied Phase = "satisfied"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
	PhaseFatal     Phase = "fatal"
)

// Events driving the phase machine.
const (
	eventCheck     = "CHECK"
	eventApply     = "APPLY"
	eventVerify    = "VERIFY"
	eventBackoff   = "BACKOFF"
	eventSatisfied = "SATISFIED"
	eventSucceeded = "SUCCEEDED"
	eventFailed    = "FAILED"
	eventFatal     = "FATAL"
	eventReset     = "RESET"
)

// Observer receives phase changes while a step runs.
type Observer interface {
	PhaseChanged(id StepID, phase Phase, attempt int)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(id StepID, phase Phase, attempt int)

// PhaseChanged calls f.
func (f ObserverFunc) PhaseChanged(id StepID, phase Phase, attempt int) {
	f(id, phase, attempt)
}

type phaseContext struct {
	stepID string
}

// phaseTracker mirrors a single Run in a statekit machine so that observers
// only ever see legal transitions.
type phaseTracker struct {
	id       StepID
	interp   *statekit.Interpreter[phaseContext]
	observer Observer
}

func buildPhaseMachine(id StepID) (*statekit.Interpreter[phaseContext], error) {
	machine, err := statekit.NewMachine[phaseContext]("debprep-step").
		WithInitial(statekit.StateID(PhaseIdle)).
		WithContext(phaseContext{stepID: id.String()}).
		State(statekit.StateID(PhaseIdle)).
		On(eventCheck).Target(statekit.StateID(PhaseChecking)).
		On(eventFatal).Target(statekit.StateID(PhaseFatal)).Done().
		State(statekit.StateID(PhaseChecking)).
		On(eventSatisfied).Target(statekit.StateID(PhaseSatisfied)).
		On(eventApply).Target(statekit.StateID(PhaseApplying)).
		On(eventFailed).Target(statekit.StateID(PhaseFailed)).
		On(eventFatal).Target(statekit.StateID(PhaseFatal)).Done().
		State(statekit.StateID(PhaseApplying)).
		On(eventVerify).Target(statekit.StateID(PhaseVerifying)).
		On(eventBackoff).Target(statekit.StateID(PhaseBackoff)).
		On(eventSatisfied).Target(statekit.StateID(PhaseSatisfied)).
		On(eventFailed).Target(statekit.StateID(PhaseFailed)).
		On(eventFatal).Target(statekit.StateID(PhaseFatal)).Done().
		State(statekit.StateID(PhaseVerifying)).
		On(eventSucceeded).Target(statekit.StateID(PhaseSucceeded)).
		On(eventBackoff).Target(statekit.StateID(PhaseBackoff)).
		On(eventFailed).Target(statekit.StateID(PhaseFailed)).
		On(eventFatal).Target(statekit.StateID(PhaseFatal)).Done().
		State(statekit.StateID(PhaseBackoff)).
		On(eventApply).Target(statekit.StateID(PhaseApplying)).
		On(eventFailed).Target(statekit.StateID(PhaseFailed)).Done().
		State(statekit.StateID(PhaseSatisfied)).
		On(eventReset).Target(statekit.StateID(PhaseIdle)).Done().
		State(statekit.StateID(PhaseSucceeded)).
		On(eventReset).Target(statekit.StateID(PhaseIdle)).Done().
		State(statekit.StateID(PhaseFailed)).
		On(eventReset).Target(statekit.StateID(PhaseIdle)).Done().
		State(statekit.StateID(PhaseFatal)).
		On(eventReset).Target(statekit.StateID(PhaseIdle)).Done().
		Build()
	if err != nil {
		return nil, err
	}
	return statekit.NewInterpreter(machine), nil
}

// newPhaseTracker returns a tracker, or nil when nobody is listening.
func newPhaseTracker(id StepID, observer Observer) *phaseTracker {
	if observer == nil {
		return nil
	}
	interp, err := buildPhaseMachine(id)
	if err != nil {
		return &phaseTracker{id: id, observer: observer}
	}
	interp.Start()
	return &phaseTracker{id: id, interp: interp, observer: observer}
}

// fire sends event and reports the resulting phase. fallback is reported when
// the machine is unavailable.
func (t *phaseTracker) fire(event string, fallback Phase, attempt int) {
	if t == nil {
		return
	}
	phase := fallback
	if t.interp != nil {
		t.interp.Send(statekit.Event{Type: statekit.EventType(event)})
		phase = Phase(t.interp.State().Value)
	}
	t.observer.PhaseChanged(t.id, phase, attempt)
}

func (t *phaseTracker) stop() {
	if t == nil || t.interp == nil {
		return
	}
	t.interp.Stop()
}
