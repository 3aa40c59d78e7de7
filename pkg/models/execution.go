package models

import "time"

// ExecutionStatus is the lifecycle state of one workflow run.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusSucceeded ExecutionStatus = "succeeded"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusPartial   ExecutionStatus = "partial"
)

// Terminal reports whether no further transitions are allowed from the status.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case ExecutionStatusSucceeded, ExecutionStatusFailed, ExecutionStatusPartial:
		return true
	case ExecutionStatusPending, ExecutionStatusRunning:
		return false
	}

	return false
}

// ActionStatus is the outcome of a single action within a run.
type ActionStatus string

const (
	ActionStatusSucceeded ActionStatus = "succeeded"
	ActionStatusFailed    ActionStatus = "failed"
)

// ActionResult records the outcome of one action, in list order.
type ActionResult struct {
	Type       string       `json:"type"`
	Name       string       `json:"name,omitempty"`
	Status     ActionStatus `json:"status"`
	Output     any          `json:"output,omitempty"`
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMs int64        `json:"duration_ms"`
}

// WorkflowExecution is one run of a workflow: the audit row callers inspect
// to learn which side effects actually occurred.
type WorkflowExecution struct {
	ID          string          `json:"id"`
	WorkflowID  string          `json:"workflow_id"`
	Trigger     TriggerKind     `json:"trigger"`
	TriggerData map[string]any  `json:"trigger_data,omitempty"`
	Status      ExecutionStatus `json:"status"`
	Results     []ActionResult  `json:"results"`
	ExecutedBy  string          `json:"executed_by,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}

// FinalStatus folds per-action outcomes into the run's terminal status:
// all succeeded, all failed, or partial when mixed.
func FinalStatus(results []ActionResult) ExecutionStatus {
	succeeded := 0

	for _, result := range results {
		if result.Status == ActionStatusSucceeded {
			succeeded++
		}
	}

	switch {
	case succeeded == len(results):
		return ExecutionStatusSucceeded
	case succeeded == 0:
		return ExecutionStatusFailed
	default:
		return ExecutionStatusPartial
	}
}
