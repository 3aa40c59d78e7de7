package models

// ExecutionContext carries the data visible to action handlers while a run
// is in progress: the trigger payload, workflow variables, and the outputs
// of the actions already completed, keyed by ActionItem.Key.
type ExecutionContext struct {
	ID            string         `json:"id"`
	WorkflowID    string         `json:"workflow_id"`
	Trigger       TriggerKind    `json:"trigger"`
	TriggerData   map[string]any `json:"trigger_data,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	ActionResults map[string]any `json:"action_results,omitempty"`
}
