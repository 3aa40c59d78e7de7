// Package persistence provides the data storage abstraction layer for
// workflows, executions, webhooks, and the records touched by action handlers.
package persistence

import (
	"context"

	"github.com/flowline/flowline/pkg/models"
)

// WorkflowFilter narrows workflow listings.
type WorkflowFilter struct {
	Active    *bool
	CreatedBy string
}

type WorkflowRepository interface {
	GetAll(ctx context.Context, filter WorkflowFilter) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	// GetByTrigger returns the active workflows whose trigger kind matches.
	GetByTrigger(ctx context.Context, kind models.TriggerKind) ([]*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	// Delete removes the workflow and cascades its executions.
	Delete(ctx context.Context, id string) error
	// RecordExecution atomically bumps the workflow's counters for one
	// finished run. The increments ride on the store's per-row atomicity;
	// no application lock is taken.
	RecordExecution(ctx context.Context, id string, status models.ExecutionStatus) error
}

type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.WorkflowExecution) error
	GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error)
	// ListByWorkflow returns the workflow's executions, newest first.
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowExecution, error)
}

type WebhookRepository interface {
	GetAll(ctx context.Context, active *bool) ([]*models.Webhook, error)
	GetByID(ctx context.Context, id string) (*models.Webhook, error)
	Save(ctx context.Context, webhook *models.Webhook) error
	Delete(ctx context.Context, id string) error
	// RecordDelivery atomically bumps the webhook's outbound counters.
	RecordDelivery(ctx context.Context, id string, success bool) error
}

type DeliveryRepository interface {
	Save(ctx context.Context, delivery *models.WebhookDelivery) error
	// ListByWebhook returns the webhook's delivery ledger, newest first.
	ListByWebhook(ctx context.Context, webhookID string) ([]*models.WebhookDelivery, error)
}

type RecordRepository interface {
	GetByID(ctx context.Context, kind, id string) (*models.Record, error)
	// UpdateAttributes merges the given attributes into the record in a
	// single store-level update.
	UpdateAttributes(ctx context.Context, kind, id string, attributes map[string]any) error
	Save(ctx context.Context, record *models.Record) error
}

// TemplateFilter narrows template listings. A zero Limit falls back to the
// store's default page size.
type TemplateFilter struct {
	Category   string
	Difficulty models.TemplateDifficulty
	Limit      int
}

type TemplateRepository interface {
	// List returns public templates, most popular first.
	List(ctx context.Context, filter TemplateFilter) ([]*models.AutomationTemplate, error)
	GetByID(ctx context.Context, id string) (*models.AutomationTemplate, error)
	Save(ctx context.Context, template *models.AutomationTemplate) error
	// RecordUse atomically bumps the template's popularity counter.
	RecordUse(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Save(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]*models.Notification, error)
}

// Persistence aggregates the repositories backing the service.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	WebhookRepository() WebhookRepository
	DeliveryRepository() DeliveryRepository
	RecordRepository() RecordRepository
	NotificationRepository() NotificationRepository
	TemplateRepository() TemplateRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
