package sendemail

import "github.com/flowline/flowline/pkg/protocol"

// ActionFactory creates send_email actions bound to one mailer.
type ActionFactory struct {
	mailer Mailer
}

func NewActionFactory(mailer Mailer) *ActionFactory {
	return &ActionFactory{mailer: mailer}
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "send_email"
}

// Name returns the name of the action.
func (f *ActionFactory) Name() string {
	return "Send Email"
}

// Description returns a brief description of the action.
func (f *ActionFactory) Description() string {
	return "Sends an email through the configured SMTP relay."
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient address. Supports templating.",
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Email subject. Supports templating.",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Plain-text email body. Supports templating.",
			},
		},
		"required":             []string{"to", "subject"},
		"additionalProperties": false,
	}
}

// Create creates a new action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.mailer)
}
