package operations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationStateLifecycle(t *testing.T) {
	state := NewOperationState("op-1")
	assert.Equal(t, OperationStatusPending, state.GetStatus())

	state.Start()
	assert.Equal(t, OperationStatusRunning, state.GetStatus())

	state.Fail(errors.New("broken"))
	assert.Equal(t, OperationStatusFailed, state.GetStatus())
	require.NotNil(t, state.EndTime)
	assert.EqualError(t, state.Error, "broken")
}

func TestTypedContext(t *testing.T) {
	state := NewOperationState("op-1")

	_, ok := Get[map[string]int](state, KeyRowCounts)
	assert.False(t, ok)
	assert.False(t, state.HasContext(KeyRowCounts))

	state.SetContext(KeyRowCounts, map[string]int{"bangs": 6})
	counts, ok := Get[map[string]int](state, KeyRowCounts)
	require.True(t, ok)
	assert.Equal(t, 6, counts["bangs"])
	assert.True(t, state.HasContext(KeyRowCounts))

	// Wrong type reads as missing.
	_, err := Require[string](state, KeyRowCounts)
	assert.EqualError(t, err, `missing input "row_counts"`)
}

func TestOutputs(t *testing.T) {
	state := NewOperationState("op-1")
	assert.Empty(t, state.Outputs())

	state.AddOutput("a.csv", "b.csv")
	state.AddOutput("report.html")
	outputs := state.Outputs()
	assert.Equal(t, []string{"a.csv", "b.csv", "report.html"}, outputs)

	outputs[0] = "changed"
	assert.Equal(t, "a.csv", state.Outputs()[0])
}

func TestStepState(t *testing.T) {
	s := NewStepState("load", "Load inputs")
	assert.Equal(t, StepStatusPending, s.GetStatus())
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, StepStatusActive, s.GetStatus())
	s.Fail(errors.New("no file"))
	assert.Equal(t, StepStatusFailed, s.GetStatus())
	assert.Equal(t, "no file", s.Error)
	assert.GreaterOrEqual(t, s.Duration().Nanoseconds(), int64(0))

	skipped := NewStepState("export", "Export tables")
	skipped.Skip("step load failed")
	assert.Equal(t, StepStatusSkipped, skipped.GetStatus())
	assert.Equal(t, "step load failed", skipped.Message)
}
