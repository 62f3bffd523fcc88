package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Manager runs registered steps in order against one operation state
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager. Nil arguments get defaults.
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   logger.With("component", "operation_manager"),
	}
}

// RegisterStage registers a step with the manager
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the step registry
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs the steps selected by req. The first failing step stops the
// run; its error is an *OperationError carrying the step id. The response is
// returned even when err is non-nil.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = "operation-" + uuid.NewString()
	}

	state := req.State
	if state == nil {
		state = NewOperationState(req.ID)
	}
	state.ID = req.ID

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID, req)
	logger := m.logger.With(slog.String("operation_id", req.ID))

	steps, err := m.selectSteps(req)
	if err != nil {
		logger.ErrorContext(ctx, "operation_step_selection_failed", slog.String("error", err.Error()))
		state.Fail(err)
		m.tracer.RecordOperationCompletion(ctx, span, req.ID, 0, err)
		return m.createResponse(state, steps), err
	}

	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	state.Start()
	logger.InfoContext(ctx, "operation_started", slog.Int("step_count", len(steps)))

	err = m.executeSequential(ctx, logger, state, steps)
	switch {
	case err == nil:
		state.Complete()
		logger.InfoContext(ctx, "operation_completed", slog.Duration("duration", state.Duration()))
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel()
		logger.WarnContext(ctx, "operation_cancelled", slog.String("error", err.Error()))
	default:
		state.Fail(err)
		logger.ErrorContext(ctx, "operation_failed",
			slog.String("step", FailedStep(err)),
			slog.String("error", err.Error()))
	}

	m.tracer.RecordOperationCompletion(ctx, span, req.ID, state.Duration(), err)
	return m.createResponse(state, steps), err
}

func (m *Manager) selectSteps(req OperationRequest) ([]Step, error) {
	switch {
	case req.Step != "" && req.Through != "":
		return nil, fmt.Errorf("step and through are mutually exclusive")
	case req.Step != "":
		step, err := m.registry.Get(req.Step)
		if err != nil {
			return nil, NewNotFoundError(req.Step)
		}
		return []Step{step}, nil
	case req.Through != "":
		steps, err := m.registry.Through(req.Through)
		if err != nil {
			return nil, NewNotFoundError(req.Through)
		}
		return steps, nil
	}
	if m.registry.Count() == 0 {
		return nil, fmt.Errorf("no steps registered")
	}
	return m.registry.List(), nil
}

// executeSequential executes steps one by one. Once a step fails the rest
// are marked skipped.
func (m *Manager) executeSequential(ctx context.Context, logger *slog.Logger, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		logger.InfoContext(ctx, "executing_stage",
			slog.String("step", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(steps)))

		if err := m.executeStage(ctx, logger, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage validates and runs a single step under its timeout
func (m *Manager) executeStage(ctx context.Context, logger *slog.Logger, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())

	if err := step.Validate(state); err != nil {
		logger.WarnContext(ctx, "validation_failed",
			slog.String("step", step.ID()),
			slog.String("error", err.Error()))
		opErr := NewValidationError(step.ID(), err)
		stepState.Fail(opErr)
		return opErr
	}

	stepCtx, span := m.tracer.TraceStageExecution(ctx, state.ID, step.ID())
	timeout := m.config.GetStageTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(stepCtx, timeout)
	defer cancel()

	stepState.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)
	m.tracer.RecordStageCompletion(stepCtx, span, step.ID(), duration, err)

	if err != nil {
		var opErr *OperationError
		switch {
		case errors.Is(err, context.Canceled) && ctx.Err() != nil:
			opErr = NewCancellationError(step.ID(), err)
		case errors.As(err, &opErr):
			if opErr.Step == "" {
				opErr.Step = step.ID()
			}
		default:
			opErr = NewExecutionError(step.ID(), err)
		}
		stepState.Fail(opErr)
		logger.ErrorContext(ctx, "stage_execution_failed",
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return opErr
	}

	stepState.Complete()
	logger.InfoContext(ctx, "stage_completed",
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

func (m *Manager) createResponse(state *OperationState, steps []Step) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.GetStatus(),
		Duration: state.Duration(),
		Outputs:  state.Outputs(),
		State:    state,
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	for _, step := range steps {
		s := state.GetStage(step.ID())
		if s == nil {
			continue
		}
		s.mu.RLock()
		summary := StepSummary{ID: s.ID, Name: s.Name, Status: s.Status, Error: s.Error}
		s.mu.RUnlock()
		summary.Duration = s.Duration()
		resp.Steps = append(resp.Steps, summary)
	}
	return resp
}
