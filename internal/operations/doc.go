// Package operations runs the report pipeline as an ordered list of steps.
//
// Core Components:
//
// Manager: executes registered steps sequentially against one
// OperationState, stopping at the first failure or on cancellation. Each
// step runs under its own timeout and gets an OpenTelemetry span; durations
// and outcomes go to the pipeline metrics.
//
// Step: a unit of work with an ID, a Name, Validate (are my inputs in the
// state?) and Execute. Validation failures stop the run before the step
// executes.
//
// Registry: keeps steps in registration order, which is the run order.
//
// OperationState: step status plus the values steps hand to each other,
// stored under typed ContextKeys and read back with Get and Require.
//
// The report steps are load, join, aggregate, analyze, render and export:
//
//	registry, err := operations.NewReportRegistry(operations.StageOptions{
//		Config: cfg,
//		Paths:  paths,
//	}, logger)
//	if err != nil {
//		return err
//	}
//	manager := operations.NewManager(registry, nil, nil, logger)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{})
//
// A request may name a single Step (its inputs must be seeded in
// OperationRequest.State) or run Through a given step.
package operations
