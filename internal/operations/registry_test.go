package operations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopStep struct{ BaseStage }

func (noopStep) Execute(ctx context.Context, state *OperationState) error { return nil }

func step(id string) Step { return noopStep{NewBaseStage(id, "Step "+id)} }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(step("load")))
	require.NoError(t, r.Register(step("join")))
	require.NoError(t, r.Register(step("aggregate")))

	assert.Equal(t, 3, r.Count())
	assert.True(t, r.Has("join"))
	assert.False(t, r.Has("render"))
	assert.Equal(t, []string{"load", "join", "aggregate"}, r.ListIDs())

	got, err := r.Get("join")
	require.NoError(t, err)
	assert.Equal(t, "Step join", got.Name())

	_, err = r.Get("render")
	assert.Error(t, err)
}

func TestRegistryRejects(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(step("")))
	require.NoError(t, r.Register(step("load")))
	assert.Error(t, r.Register(step("load")))
}

func TestRegistryThrough(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"load", "join", "aggregate", "analyze"} {
		require.NoError(t, r.Register(step(id)))
	}

	steps, err := r.Through("join")
	require.NoError(t, err)
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID()
	}
	assert.Equal(t, []string{"load", "join"}, ids)

	_, err = r.Through("render")
	assert.Error(t, err)
}

func TestBaseStageValidate(t *testing.T) {
	assert.NoError(t, step("load").Validate(NewOperationState("x")))
}
