package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedSteps(n int) []Step {
	steps := make([]Step, n)
	for i := range steps {
		steps[i] = Step{ID: i + 1, Title: "step"}
	}
	return steps
}

func TestNewStepFlowValidation(t *testing.T) {
	_, err := NewStepFlow(nil)
	require.ErrorIs(t, err, ErrNoSteps)

	_, err = NewStepFlow([]Step{{ID: 1}, {ID: 3}})
	require.ErrorIs(t, err, ErrStepOrder)

	_, err = NewStepFlow([]Step{{ID: 0}})
	require.ErrorIs(t, err, ErrStepOrder)
}

func TestStepFlowAdvanceClampsAtLastStep(t *testing.T) {
	for n := 1; n <= 6; n++ {
		flow, err := NewStepFlow(numberedSteps(n))
		require.NoError(t, err)
		assert.Equal(t, 1, flow.CurrentID())

		for i := 0; i < n-1; i++ {
			flow.Advance()
		}
		assert.Equal(t, n, flow.CurrentID())
		assert.True(t, flow.IsTerminal())

		assert.Equal(t, n, flow.Advance(), "advance at the last step is a no-op")
		assert.True(t, flow.IsTerminal())
	}
}

func TestStepFlowRetreatClampsAtFirstStep(t *testing.T) {
	flow, err := NewStepFlow(DefaultSteps())
	require.NoError(t, err)

	assert.Equal(t, 1, flow.Retreat())
	flow.Advance()
	flow.Advance()
	assert.Equal(t, 2, flow.Retreat())
	assert.Equal(t, 1, flow.Retreat())
	assert.Equal(t, 1, flow.Retreat())
}

func TestStepFlowProgressIsMonotonic(t *testing.T) {
	flow, err := NewStepFlow(DefaultSteps())
	require.NoError(t, err)

	assert.InDelta(t, 25.0, flow.ProgressPercent(), 1e-9)
	last := flow.ProgressPercent()
	for i := 0; i < 6; i++ {
		flow.Advance()
		assert.GreaterOrEqual(t, flow.ProgressPercent(), last)
		last = flow.ProgressPercent()
	}
	assert.Equal(t, 100.0, flow.ProgressPercent())
}

func TestStepFlowSingleStepIsTerminal(t *testing.T) {
	flow, err := NewStepFlow(numberedSteps(1))
	require.NoError(t, err)
	assert.True(t, flow.IsTerminal())
	assert.Equal(t, 100.0, flow.ProgressPercent())
	assert.Equal(t, 1, flow.Retreat())
}

func TestStepFlowState(t *testing.T) {
	flow, err := NewStepFlow(DefaultSteps())
	require.NoError(t, err)
	flow.Advance()

	assert.Equal(t, StepComplete, flow.State(1))
	assert.Equal(t, StepCurrent, flow.State(2))
	assert.Equal(t, StepUpcoming, flow.State(3))
	assert.Equal(t, "Project Information", flow.Current().Title)
}

func TestStepFlowOwnsItsSteps(t *testing.T) {
	steps := DefaultSteps()
	flow, err := NewStepFlow(steps)
	require.NoError(t, err)

	steps[0].Title = "mutated"
	assert.Equal(t, "Client Details", flow.Current().Title)

	copied := flow.Steps()
	copied[0].Title = "mutated"
	assert.Equal(t, "Client Details", flow.Current().Title)
}
