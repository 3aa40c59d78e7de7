package models

import "time"

// TemplateDifficulty grades how much setup a template expects from the
// operator who instantiates it.
type TemplateDifficulty string

const (
	DifficultyBeginner     TemplateDifficulty = "beginner"
	DifficultyIntermediate TemplateDifficulty = "intermediate"
	DifficultyAdvanced     TemplateDifficulty = "advanced"
)

// WorkflowTemplate is the reusable workflow definition a template stamps out.
type WorkflowTemplate struct {
	Trigger       TriggerKind    `json:"trigger"`
	TriggerConfig map[string]any `json:"trigger_config,omitempty"`
	Actions       []ActionItem   `json:"actions"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// AutomationTemplate is a cataloged, ready-made workflow definition.
// Popularity counts how many workflows were created from it.
type AutomationTemplate struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"        validate:"required,min=3"`
	Description          string             `json:"description"`
	Category             string             `json:"category"`
	Difficulty           TemplateDifficulty `json:"difficulty"`
	Workflow             WorkflowTemplate   `json:"workflow"`
	RequiredIntegrations []string           `json:"required_integrations,omitempty"`
	Public               bool               `json:"public"`
	Popularity           int64              `json:"popularity"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}
