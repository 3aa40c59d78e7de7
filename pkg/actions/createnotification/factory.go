package createnotification

import (
	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/protocol"
)

// ActionFactory creates create_notification actions bound to one store.
type ActionFactory struct {
	notifications persistence.NotificationRepository
}

func NewActionFactory(notifications persistence.NotificationRepository) *ActionFactory {
	return &ActionFactory{notifications: notifications}
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "create_notification"
}

// Name returns the name of the action.
func (f *ActionFactory) Name() string {
	return "Create Notification"
}

// Description returns a brief description of the action.
func (f *ActionFactory) Description() string {
	return "Creates an in-app notification for a user."
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id": map[string]any{
				"type":        "string",
				"description": "Recipient user id. Supports templating.",
			},
			"type": map[string]any{
				"type":        "string",
				"description": "Notification category.",
				"default":     "workflow",
			},
			"title": map[string]any{
				"type":        "string",
				"description": "Notification title. Supports templating.",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Notification body. Supports templating.",
			},
		},
		"required":             []string{"user_id", "title"},
		"additionalProperties": false,
	}
}

// Create creates a new action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.notifications)
}
