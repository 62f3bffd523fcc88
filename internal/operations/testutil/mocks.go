// Package testutil provides step doubles for operations tests.
package testutil

import (
	"context"
	"sync"

	"bangreport/internal/operations"
)

// MockStage is a configurable implementation of operations.Step
type MockStage struct {
	IDValue   string
	NameValue string

	ExecuteFunc  func(ctx context.Context, state *operations.OperationState) error
	ValidateFunc func(state *operations.OperationState) error

	mu            sync.Mutex
	executeCalls  int
	validateCalls int
}

// ID returns the step ID
func (m *MockStage) ID() string {
	return m.IDValue
}

// Name returns the step name
func (m *MockStage) Name() string {
	return m.NameValue
}

// Execute counts the call and runs ExecuteFunc
func (m *MockStage) Execute(ctx context.Context, state *operations.OperationState) error {
	m.mu.Lock()
	m.executeCalls++
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state)
	}
	return nil
}

// Validate counts the call and runs ValidateFunc
func (m *MockStage) Validate(state *operations.OperationState) error {
	m.mu.Lock()
	m.validateCalls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(state)
	}
	return nil
}

// ExecuteCalls returns how often Execute ran
func (m *MockStage) ExecuteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executeCalls
}

// ValidateCalls returns how often Validate ran
func (m *MockStage) ValidateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validateCalls
}

// CreateSuccessfulStage returns a step that appends its id to *order
func CreateSuccessfulStage(id string, order *[]string) *MockStage {
	var mu sync.Mutex
	return &MockStage{
		IDValue:   id,
		NameValue: "Step " + id,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			if order != nil {
				mu.Lock()
				*order = append(*order, id)
				mu.Unlock()
			}
			return nil
		},
	}
}

// CreateFailingStage returns a step whose Execute returns err
func CreateFailingStage(id string, err error) *MockStage {
	return &MockStage{
		IDValue:   id,
		NameValue: "Step " + id,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			return err
		},
	}
}
