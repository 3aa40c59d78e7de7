package updaterecord

import (
	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/protocol"
)

// ActionFactory creates update_record actions bound to one record store.
type ActionFactory struct {
	records persistence.RecordRepository
}

func NewActionFactory(records persistence.RecordRepository) *ActionFactory {
	return &ActionFactory{records: records}
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "update_record"
}

// Name returns the name of the action.
func (f *ActionFactory) Name() string {
	return "Update Record"
}

// Description returns a brief description of the action.
func (f *ActionFactory) Description() string {
	return "Merges attributes into a stored record."
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"kind": map[string]any{
				"type":        "string",
				"description": "Record kind, e.g. 'distributor' or 'order'.",
			},
			"record_id": map[string]any{
				"type":        "string",
				"description": "Record identifier. Supports templating.",
			},
			"attributes": map[string]any{
				"type":        "object",
				"description": "Attributes to merge. String values support templating.",
				"minProperties": 1,
			},
		},
		"required":             []string{"kind", "record_id", "attributes"},
		"additionalProperties": false,
	}
}

// Create creates a new action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.records)
}
