package operations

import "time"

// Step IDs of the report pipeline, in execution order
const (
	StepIDLoad      = "load"
	StepIDJoin      = "join"
	StepIDAggregate = "aggregate"
	StepIDAnalyze   = "analyze"
	StepIDRender    = "render"
	StepIDExport    = "export"
)

// OperationRequest selects what a run executes. With neither Step nor
// Through set every registered step runs.
type OperationRequest struct {
	ID string `json:"id"`
	// Step runs a single step. Its inputs must already be in State.
	Step string `json:"step,omitempty"`
	// Through runs every step up to and including this one.
	Through string `json:"through,omitempty"`
	// State seeds the run; nil starts from an empty state.
	State *OperationState `json:"-"`
}

// StepSummary reports one step of a finished run
type StepSummary struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// OperationResponse represents the result of a run
type OperationResponse struct {
	ID       string               `json:"id"`
	Status   OperationStatusValue `json:"status"`
	Duration time.Duration        `json:"duration"`
	Steps    []StepSummary        `json:"steps"`
	Outputs  []string             `json:"outputs,omitempty"`
	Error    string               `json:"error,omitempty"`
	// State holds the values the steps produced
	State *OperationState `json:"-"`
}
