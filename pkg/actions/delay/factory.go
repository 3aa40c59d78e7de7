package delay

import "github.com/flowline/flowline/pkg/protocol"

// ActionFactory creates delay actions.
type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "delay"
}

// Name returns the name of the action.
func (f *ActionFactory) Name() string {
	return "Delay"
}

// Description returns a brief description of the action.
func (f *ActionFactory) Description() string {
	return "Pauses the workflow for a fixed number of seconds."
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"seconds": map[string]any{
				"type":             "number",
				"minimum":          0,
				"exclusiveMinimum": true,
				"maximum":          maxDelaySeconds,
			},
		},
		"required":             []string{"seconds"},
		"additionalProperties": false,
	}
}

// Create creates a new action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config)
}
