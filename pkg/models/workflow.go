// Package models defines the core domain models for trigger-driven workflow automation.
package models

import (
	"errors"
	"fmt"
	"time"
)

// TriggerKind is the category of event that starts workflow evaluation.
type TriggerKind string

const (
	TriggerKindManual   TriggerKind = "manual"   // Operator-initiated via the execute endpoint
	TriggerKindSchedule TriggerKind = "schedule" // Fired by an external cron/trigger service
	TriggerKindEvent    TriggerKind = "event"    // Domain event received on the event bus
	TriggerKindWebhook  TriggerKind = "webhook"  // Verified inbound webhook payload
)

var triggerKinds = map[TriggerKind]struct{}{
	TriggerKindManual:   {},
	TriggerKindSchedule: {},
	TriggerKindEvent:    {},
	TriggerKindWebhook:  {},
}

// Valid reports whether the trigger kind is one of the enumerated values.
func (k TriggerKind) Valid() bool {
	_, ok := triggerKinds[k]

	return ok
}

var (
	// ErrInvalidTriggerKind indicates a trigger kind outside the enumerated set.
	ErrInvalidTriggerKind = errors.New("invalid trigger kind")

	// ErrNoActions indicates a workflow definition with an empty action list.
	ErrNoActions = errors.New("workflow must contain at least one action")
)

// ActionItem is a single typed step within a workflow's ordered action list.
type ActionItem struct {
	Type       string         `json:"type"                 validate:"required"`
	Name       string         `json:"name,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Key returns the identifier under which this action's output is exposed to
// later actions. Index keeps keys unique when names repeat or are absent.
func (a ActionItem) Key(index int) string {
	if a.Name != "" {
		return a.Name
	}

	return fmt.Sprintf("%s_%d", a.Type, index)
}

// Workflow is a named, ordered sequence of actions started by a trigger kind.
type Workflow struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"                      validate:"required,min=3"`
	Description    string         `json:"description"`
	Trigger        TriggerKind    `json:"trigger"                   validate:"required"`
	TriggerConfig  map[string]any `json:"trigger_config,omitempty"`
	Actions        []ActionItem   `json:"actions"                   validate:"required,min=1,dive"`
	Variables      map[string]any `json:"variables,omitempty"`
	Active         bool           `json:"active"`
	Exclusive      bool           `json:"exclusive"` // One execution in flight at a time
	CreatedBy      string         `json:"created_by"`
	ExecutionCount int64          `json:"execution_count"`
	SuccessCount   int64          `json:"success_count"`
	FailureCount   int64          `json:"failure_count"`
	PartialCount   int64          `json:"partial_count"`
	LastExecutedAt *time.Time     `json:"last_executed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Validate checks the structural invariants that hold for every persisted
// workflow: an enumerated trigger kind and a non-empty action list.
func (w *Workflow) Validate() error {
	if !w.Trigger.Valid() {
		return fmt.Errorf("trigger %q: %w", w.Trigger, ErrInvalidTriggerKind)
	}

	if len(w.Actions) == 0 {
		return ErrNoActions
	}

	for i, action := range w.Actions {
		if action.Type == "" {
			return fmt.Errorf("action %d has no type: %w", i, ErrNoActions)
		}
	}

	return nil
}
