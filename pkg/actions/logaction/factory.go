package logaction

import "github.com/flowline/flowline/pkg/protocol"

// ActionFactory creates log actions.
type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "log"
}

// Name returns the name of the action.
func (f *ActionFactory) Name() string {
	return "Log"
}

// Description returns a brief description of the action.
func (f *ActionFactory) Description() string {
	return "Emits a structured log line from the workflow."
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message to log. Supports templating.",
			},
			"level": map[string]any{
				"type":    "string",
				"enum":    []string{"debug", "info", "warn", "error"},
				"default": "info",
			},
		},
		"additionalProperties": false,
	}
}

// Create creates a new action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewAction(config), nil
}
