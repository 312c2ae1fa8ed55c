package onboarding

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSteps is returned when a flow is built without any steps.
	ErrNoSteps = errors.New("onboarding flow needs at least one step")
	// ErrStepOrder is returned when step ids are not 1..N in order.
	ErrStepOrder = errors.New("onboarding step ids must be contiguous and start at 1")
)

// StepFlow tracks progression through a fixed, ordered list of steps.
// Transitions are clamped rather than rejected. A StepFlow is owned by a
// single caller and is not safe for concurrent use.
type StepFlow struct {
	steps   []Step
	current int
}

// NewStepFlow copies steps and positions the flow on the first one.
func NewStepFlow(steps []Step) (*StepFlow, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	for i, step := range steps {
		if step.ID != i+1 {
			return nil, fmt.Errorf("%w: position %d has id %d", ErrStepOrder, i+1, step.ID)
		}
	}
	owned := make([]Step, len(steps))
	copy(owned, steps)
	return &StepFlow{steps: owned, current: 1}, nil
}

// Advance moves forward one step unless the flow is already terminal.
func (f *StepFlow) Advance() int {
	if f.current < len(f.steps) {
		f.current++
	}
	return f.current
}

// Retreat moves back one step unless the flow is on the first step.
func (f *StepFlow) Retreat() int {
	if f.current > 1 {
		f.current--
	}
	return f.current
}

// ProgressPercent is (current / N) * 100.
func (f *StepFlow) ProgressPercent() float64 {
	return float64(f.current) / float64(len(f.steps)) * 100
}

// IsTerminal reports whether the current step is the last one.
func (f *StepFlow) IsTerminal() bool {
	return f.current == len(f.steps)
}

// CurrentID returns the 1-based id of the current step.
func (f *StepFlow) CurrentID() int {
	return f.current
}

// Current returns the current step.
func (f *StepFlow) Current() Step {
	return f.steps[f.current-1]
}

// Len returns the number of steps.
func (f *StepFlow) Len() int {
	return len(f.steps)
}

// Steps returns a copy of the step list.
func (f *StepFlow) Steps() []Step {
	out := make([]Step, len(f.steps))
	copy(out, f.steps)
	return out
}

// State classifies the step with the given id relative to the current one.
func (f *StepFlow) State(id int) StepState {
	switch {
	case id < f.current:
		return StepComplete
	case id == f.current:
		return StepCurrent
	default:
		return StepUpcoming
	}
}
