package callwebhook

import "github.com/flowline/flowline/pkg/protocol"

// ActionFactory creates call_webhook actions.
type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "call_webhook"
}

// Name returns the name of the action.
func (f *ActionFactory) Name() string {
	return "Call Webhook"
}

// Description returns a brief description of the action.
func (f *ActionFactory) Description() string {
	return "Posts a signed JSON payload to an external HTTP endpoint."
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The endpoint to POST to. Supports templating.",
			},
			"event": map[string]any{
				"type":        "string",
				"description": "Event name sent in the X-Webhook-Event header.",
			},
			"payload": map[string]any{
				"type":        "object",
				"description": "JSON payload. String values support templating.",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Extra HTTP headers. Values support templating.",
				"additionalProperties": map[string]any{
					"type": "string",
				},
			},
			"secret": map[string]any{
				"type":        "string",
				"description": "Shared secret used to sign the payload.",
			},
			"timeout_seconds": map[string]any{
				"type":    "integer",
				"minimum": 1,
				"maximum": 300,
			},
		},
		"required":             []string{"url"},
		"additionalProperties": false,
	}
}

// Create creates a new action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config)
}
