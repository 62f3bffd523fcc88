package operations

import (
	"fmt"
	"sync"
	"time"
)

// OperationStatusValue represents the overall operation status
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// ContextKey names a value passed between steps
type ContextKey string

// Values produced by the pipeline steps
const (
	KeyDataset    ContextKey = "dataset"     // *dataprocessing.Dataset
	KeyRowCounts  ContextKey = "row_counts"  // map[string]int
	KeyJoined     ContextKey = "joined"      // *dataprocessing.JoinedData
	KeyJoinReport ContextKey = "join_report" // dataprocessing.JoinReport
	KeySummaries  ContextKey = "summaries"   // *dataprocessing.Summaries
	KeyResults    ContextKey = "results"     // *analysis.Results
	KeyCharts     ContextKey = "charts"      // []report.Chart
	KeyOutputs    ContextKey = "outputs"     // []string, files written so far
)

// OperationState is the state of one pipeline run
type OperationState struct {
	mu sync.RWMutex

	ID        string               `json:"id"`
	Status    OperationStatusValue `json:"status"`
	StartTime time.Time            `json:"start_time"`
	EndTime   *time.Time           `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	// Values passed between steps
	context map[ContextKey]any

	Error error `json:"-"`
}

// NewOperationState creates a new operation state
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		context:   make(map[ContextKey]any),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
}

// GetStatus returns the current status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// Duration returns how long the operation ran
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// GetStage returns the state of a specific step
func (p *OperationState) GetStage(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stepID]
}

// SetStage sets the state of a specific step
func (p *OperationState) SetStage(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stepID] = state
}

// SetContext stores a value for later steps
func (p *OperationState) SetContext(key ContextKey, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.context[key] = value
}

// HasContext reports whether key has been set
func (p *OperationState) HasContext(key ContextKey) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.context[key]
	return ok
}

// AddOutput records a file written by a step
func (p *OperationState) AddOutput(paths ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	outputs, _ := p.context[KeyOutputs].([]string)
	p.context[KeyOutputs] = append(outputs, paths...)
}

// Outputs lists the files written so far
func (p *OperationState) Outputs() []string {
	outputs, _ := Get[[]string](p, KeyOutputs)
	return append([]string(nil), outputs...)
}

// Get returns the value stored under key when it has type T
func Get[T any](p *OperationState, key ContextKey) (T, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.context[key].(T)
	return v, ok
}

// Require is Get for step bodies; a missing or mistyped value is an error
func Require[T any](p *OperationState, key ContextKey) (T, error) {
	v, ok := Get[T](p, key)
	if !ok {
		return v, fmt.Errorf("missing input %q", key)
	}
	return v, nil
}
