// Package events defines the event types published on the bus: domain events
// entering the system and execution lifecycle notifications leaving it.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/flowline/flowline/pkg/models"
)

type EventType string

// Topic is the bus topic carrying all flowline events.
const Topic = "flowline.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// DomainEventType wraps external domain events that may start
	// event-triggered workflows.
	DomainEventType EventType = "domain.event"

	// Workflow execution lifecycle events.
	WorkflowTriggeredEvent EventType = "workflow.triggered"
	ExecutionStartedEvent  EventType = "workflow.execution.started"
	ExecutionFinishedEvent EventType = "workflow.execution.finished"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// DomainEvent is an external business event, e.g. "order.created".
type DomainEvent struct {
	BaseEvent

	Name string         `json:"name"`
	Data map[string]any `json:"data,omitempty"`
}

func (e DomainEvent) GetType() EventType {
	return DomainEventType
}

// WorkflowTriggered records that a trigger matched a workflow.
type WorkflowTriggered struct {
	BaseEvent

	WorkflowID  string             `json:"workflow_id"`
	Trigger     models.TriggerKind `json:"trigger"`
	TriggerData map[string]any     `json:"trigger_data,omitempty"`
	ExecutedBy  string             `json:"executed_by,omitempty"`
}

func (e WorkflowTriggered) GetType() EventType {
	return WorkflowTriggeredEvent
}

// ExecutionStarted records a run entering the running state.
type ExecutionStarted struct {
	BaseEvent

	WorkflowID  string             `json:"workflow_id"`
	ExecutionID string             `json:"execution_id"`
	Trigger     models.TriggerKind `json:"trigger"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

// ExecutionFinished records a run reaching a terminal state.
type ExecutionFinished struct {
	BaseEvent

	WorkflowID  string                 `json:"workflow_id"`
	ExecutionID string                 `json:"execution_id"`
	Status      models.ExecutionStatus `json:"status"`
	DurationMs  int64                  `json:"duration_ms"`
}

func (e ExecutionFinished) GetType() EventType {
	return ExecutionFinishedEvent
}
