package operations_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"bangreport/internal/infrastructure"
	"bangreport/internal/operations"
	"bangreport/internal/operations/testutil"
	sharedtest "bangreport/internal/shared/testutil"
)

func newManager(t *testing.T, steps ...operations.Step) *operations.Manager {
	t.Helper()
	logger, _ := sharedtest.NewTestLogger(t)
	m := operations.NewManager(nil, nil, nil, logger)
	for _, s := range steps {
		require.NoError(t, m.RegisterStage(s))
	}
	return m
}

func statuses(resp *operations.OperationResponse) map[string]operations.StepStatus {
	out := map[string]operations.StepStatus{}
	for _, s := range resp.Steps {
		out[s.ID] = s.Status
	}
	return out
}

func TestManagerExecuteSequential(t *testing.T) {
	var order []string
	m := newManager(t,
		testutil.CreateSuccessfulStage("s1", &order),
		testutil.CreateSuccessfulStage("s2", &order),
		testutil.CreateSuccessfulStage("s3", &order),
	)

	resp, err := m.Execute(context.Background(), operations.OperationRequest{ID: "test-sequential"})
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2", "s3"}, order)
	assert.Equal(t, "test-sequential", resp.ID)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	require.Len(t, resp.Steps, 3)
	for _, s := range resp.Steps {
		assert.Equal(t, operations.StepStatusCompleted, s.Status, s.ID)
	}
}

func TestManagerGeneratesID(t *testing.T) {
	m := newManager(t, testutil.CreateSuccessfulStage("s1", nil))

	resp, err := m.Execute(context.Background(), operations.OperationRequest{})
	require.NoError(t, err)
	assert.Contains(t, resp.ID, "operation-")
}

func TestManagerStopsOnFailure(t *testing.T) {
	boom := errors.New("boom")
	var order []string
	s3 := testutil.CreateSuccessfulStage("s3", &order)
	m := newManager(t,
		testutil.CreateSuccessfulStage("s1", &order),
		testutil.CreateFailingStage("s2", boom),
		s3,
	)

	resp, err := m.Execute(context.Background(), operations.OperationRequest{})
	require.Error(t, err)

	var opErr *operations.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "s2", opErr.Step)
	assert.Equal(t, operations.ErrorTypeExecution, opErr.Type)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"s1"}, order)
	assert.Zero(t, s3.ExecuteCalls())
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
	assert.Equal(t, map[string]operations.StepStatus{
		"s1": operations.StepStatusCompleted,
		"s2": operations.StepStatusFailed,
		"s3": operations.StepStatusSkipped,
	}, statuses(resp))
	assert.Contains(t, resp.Error, "boom")
}

func TestManagerValidationFailure(t *testing.T) {
	step := &testutil.MockStage{
		IDValue:   "needs-input",
		NameValue: "Needs input",
		ValidateFunc: func(state *operations.OperationState) error {
			_, err := operations.Require[int](state, operations.KeySummaries)
			return err
		},
	}
	m := newManager(t, step)

	_, err := m.Execute(context.Background(), operations.OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeValidation, operations.GetErrorType(err))
	assert.Equal(t, "needs-input", operations.FailedStep(err))
	assert.Contains(t, err.Error(), `missing input "summaries"`)
	assert.Equal(t, 1, step.ValidateCalls())
	assert.Zero(t, step.ExecuteCalls())
}

func TestManagerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := &testutil.MockStage{
		IDValue: "first",
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			cancel()
			return nil
		},
	}
	second := testutil.CreateSuccessfulStage("second", nil)
	m := newManager(t, first, second)

	resp, err := m.Execute(ctx, operations.OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "second", operations.FailedStep(err))
	assert.Zero(t, second.ExecuteCalls())
	assert.Equal(t, operations.OperationStatusCancelled, resp.Status)
	assert.Equal(t, operations.StepStatusSkipped, statuses(resp)["second"])
}

func TestManagerStageTimeout(t *testing.T) {
	slow := &testutil.MockStage{
		IDValue: "slow",
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	cfg := operations.NewConfig()
	cfg.SetStageTimeout("slow", 20*time.Millisecond)
	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(slow))
	m := operations.NewManager(registry, cfg, nil, nil)

	_, err := m.Execute(context.Background(), operations.OperationRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(err))
}

func TestManagerStepSelection(t *testing.T) {
	tests := []struct {
		name     string
		req      operations.OperationRequest
		expected []string
		errType  operations.ErrorType
		wantErr  bool
	}{
		{name: "all", req: operations.OperationRequest{}, expected: []string{"a", "b", "c"}},
		{name: "single step", req: operations.OperationRequest{Step: "b"}, expected: []string{"b"}},
		{name: "through", req: operations.OperationRequest{Through: "b"}, expected: []string{"a", "b"}},
		{name: "unknown step", req: operations.OperationRequest{Step: "zzz"}, wantErr: true, errType: operations.ErrorTypeNotFound},
		{name: "unknown through", req: operations.OperationRequest{Through: "zzz"}, wantErr: true, errType: operations.ErrorTypeNotFound},
		{name: "both", req: operations.OperationRequest{Step: "a", Through: "b"}, wantErr: true, errType: operations.ErrorTypeExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var order []string
			m := newManager(t,
				testutil.CreateSuccessfulStage("a", &order),
				testutil.CreateSuccessfulStage("b", &order),
				testutil.CreateSuccessfulStage("c", &order),
			)

			_, err := m.Execute(context.Background(), tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.errType, operations.GetErrorType(err))
				assert.Empty(t, order)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, order)
		})
	}
}

func TestManagerSeededState(t *testing.T) {
	state := operations.NewOperationState("seed")
	state.SetContext(operations.KeyRowCounts, map[string]int{"bangs": 3})

	var seen map[string]int
	step := &testutil.MockStage{
		IDValue: "reader",
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			var err error
			seen, err = operations.Require[map[string]int](state, operations.KeyRowCounts)
			return err
		},
	}
	m := newManager(t, step)

	resp, err := m.Execute(context.Background(), operations.OperationRequest{Step: "reader", State: state})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"bangs": 3}, seen)
	assert.Same(t, state, resp.State)
}

func TestManagerLogsAndMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	metrics, err := infrastructure.CreatePipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	logger, handler := sharedtest.NewTestLogger(t)
	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(testutil.CreateSuccessfulStage("s1", nil)))
	require.NoError(t, registry.Register(testutil.CreateSuccessfulStage("s2", nil)))
	m := operations.NewManager(registry, nil, operations.NewOperationTracer(metrics), logger)

	_, err = m.Execute(context.Background(), operations.OperationRequest{ID: "metrics"})
	require.NoError(t, err)

	assert.True(t, handler.ContainsMessage("operation_started"))
	assert.True(t, handler.ContainsMessage("operation_completed"))
	assert.True(t, handler.ContainsAttr("operation_id", "metrics"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if data, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), sums["operation_steps_total"])
	assert.Equal(t, int64(1), sums["operation_executions_total"])
}
