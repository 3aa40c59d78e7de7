// Package memory provides an in-memory persistence implementation used by
// tests and local development. Counter updates are serialized by the store
// mutex, mirroring the per-row atomicity the SQL implementation gets from
// single-statement updates.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence"
	"github.com/google/uuid"
)

type Persistence struct {
	mu            sync.RWMutex
	workflows     map[string]*models.Workflow
	executions    map[string]*models.WorkflowExecution
	webhooks      map[string]*models.Webhook
	deliveries    map[string][]*models.WebhookDelivery
	records       map[string]*models.Record
	notifications map[string][]*models.Notification
	templates     map[string]*models.AutomationTemplate
}

func NewPersistence() *Persistence {
	return &Persistence{
		workflows:     make(map[string]*models.Workflow),
		executions:    make(map[string]*models.WorkflowExecution),
		webhooks:      make(map[string]*models.Webhook),
		deliveries:    make(map[string][]*models.WebhookDelivery),
		records:       make(map[string]*models.Record),
		notifications: make(map[string][]*models.Notification),
		templates:     make(map[string]*models.AutomationTemplate),
	}
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository { return &workflowRepo{p} }

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return &executionRepo{p}
}

func (p *Persistence) WebhookRepository() persistence.WebhookRepository { return &webhookRepo{p} }

func (p *Persistence) DeliveryRepository() persistence.DeliveryRepository { return &deliveryRepo{p} }

func (p *Persistence) RecordRepository() persistence.RecordRepository { return &recordRepo{p} }

func (p *Persistence) NotificationRepository() persistence.NotificationRepository {
	return &notificationRepo{p}
}

func (p *Persistence) TemplateRepository() persistence.TemplateRepository {
	return &templateRepo{p}
}

func (p *Persistence) HealthCheck(_ context.Context) error { return nil }

func (p *Persistence) Close(_ context.Context) error { return nil }

type workflowRepo struct {
	store *Persistence
}

func (r *workflowRepo) GetAll(_ context.Context, filter persistence.WorkflowFilter) ([]*models.Workflow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	workflows := make([]*models.Workflow, 0, len(r.store.workflows))

	for _, workflow := range r.store.workflows {
		if filter.Active != nil && workflow.Active != *filter.Active {
			continue
		}

		if filter.CreatedBy != "" && workflow.CreatedBy != filter.CreatedBy {
			continue
		}

		workflows = append(workflows, cloneWorkflow(workflow))
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (r *workflowRepo) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	workflow, ok := r.store.workflows[id]
	if !ok {
		return nil, persistence.ErrWorkflowNotFound
	}

	return cloneWorkflow(workflow), nil
}

func (r *workflowRepo) GetByTrigger(_ context.Context, kind models.TriggerKind) ([]*models.Workflow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*models.Workflow

	for _, workflow := range r.store.workflows {
		if workflow.Active && workflow.Trigger == kind {
			matched = append(matched, cloneWorkflow(workflow))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	return matched, nil
}

func (r *workflowRepo) Save(_ context.Context, workflow *models.Workflow) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow ID: %w", err)
		}

		workflow.ID = id.String()
	}

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now
	clone := cloneWorkflow(workflow)

	// Counters belong to RecordExecution; a caller saving a stale copy must
	// not roll them back. The SQL upsert likewise excludes counter columns.
	if existing, ok := r.store.workflows[clone.ID]; ok {
		clone.ExecutionCount = existing.ExecutionCount
		clone.SuccessCount = existing.SuccessCount
		clone.FailureCount = existing.FailureCount
		clone.PartialCount = existing.PartialCount
		clone.LastExecutedAt = existing.LastExecutedAt
	}

	r.store.workflows[clone.ID] = clone

	return nil
}

func (r *workflowRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.workflows[id]; !ok {
		return persistence.ErrWorkflowNotFound
	}

	delete(r.store.workflows, id)

	// Cascade executions.
	for executionID, execution := range r.store.executions {
		if execution.WorkflowID == id {
			delete(r.store.executions, executionID)
		}
	}

	return nil
}

func (r *workflowRepo) RecordExecution(_ context.Context, id string, status models.ExecutionStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	workflow, ok := r.store.workflows[id]
	if !ok {
		return persistence.ErrWorkflowNotFound
	}

	now := time.Now().UTC()
	workflow.ExecutionCount++
	workflow.LastExecutedAt = &now

	switch status {
	case models.ExecutionStatusSucceeded:
		workflow.SuccessCount++
	case models.ExecutionStatusFailed:
		workflow.FailureCount++
	case models.ExecutionStatusPartial:
		workflow.PartialCount++
	case models.ExecutionStatusPending, models.ExecutionStatusRunning:
		return fmt.Errorf("cannot record non-terminal status %q", status)
	}

	return nil
}

type executionRepo struct {
	store *Persistence
}

func (r *executionRepo) Save(_ context.Context, execution *models.WorkflowExecution) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if execution.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate execution ID: %w", err)
		}

		execution.ID = id.String()
	}

	if existing, ok := r.store.executions[execution.ID]; ok && existing.Status.Terminal() {
		return persistence.ErrExecutionImmutable
	}

	r.store.executions[execution.ID] = cloneExecution(execution)

	return nil
}

func (r *executionRepo) GetByID(_ context.Context, id string) (*models.WorkflowExecution, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	execution, ok := r.store.executions[id]
	if !ok {
		return nil, persistence.ErrExecutionNotFound
	}

	return cloneExecution(execution), nil
}

func (r *executionRepo) ListByWorkflow(_ context.Context, workflowID string) ([]*models.WorkflowExecution, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	executions := make([]*models.WorkflowExecution, 0)

	for _, execution := range r.store.executions {
		if execution.WorkflowID == workflowID {
			executions = append(executions, cloneExecution(execution))
		}
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	return executions, nil
}

type webhookRepo struct {
	store *Persistence
}

func (r *webhookRepo) GetAll(_ context.Context, active *bool) ([]*models.Webhook, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	webhooks := make([]*models.Webhook, 0, len(r.store.webhooks))

	for _, webhook := range r.store.webhooks {
		if active != nil && webhook.Active != *active {
			continue
		}

		webhooks = append(webhooks, cloneWebhook(webhook))
	}

	sort.Slice(webhooks, func(i, j int) bool {
		return webhooks[i].CreatedAt.After(webhooks[j].CreatedAt)
	})

	return webhooks, nil
}

func (r *webhookRepo) GetByID(_ context.Context, id string) (*models.Webhook, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	webhook, ok := r.store.webhooks[id]
	if !ok {
		return nil, persistence.ErrWebhookNotFound
	}

	return cloneWebhook(webhook), nil
}

func (r *webhookRepo) Save(_ context.Context, webhook *models.Webhook) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()

	if webhook.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate webhook ID: %w", err)
		}

		webhook.ID = id.String()
	}

	if webhook.CreatedAt.IsZero() {
		webhook.CreatedAt = now
	}

	webhook.UpdatedAt = now
	clone := cloneWebhook(webhook)

	// Delivery counters belong to RecordDelivery, as in the SQL upsert.
	if existing, ok := r.store.webhooks[clone.ID]; ok {
		clone.SuccessCount = existing.SuccessCount
		clone.FailureCount = existing.FailureCount
		clone.LastTriggeredAt = existing.LastTriggeredAt
	}

	r.store.webhooks[clone.ID] = clone

	return nil
}

func (r *webhookRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.webhooks[id]; !ok {
		return persistence.ErrWebhookNotFound
	}

	delete(r.store.webhooks, id)
	delete(r.store.deliveries, id)

	return nil
}

func (r *webhookRepo) RecordDelivery(_ context.Context, id string, success bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	webhook, ok := r.store.webhooks[id]
	if !ok {
		return persistence.ErrWebhookNotFound
	}

	now := time.Now().UTC()

	if success {
		webhook.SuccessCount++
		webhook.LastTriggeredAt = &now
	} else {
		webhook.FailureCount++
	}

	return nil
}

type deliveryRepo struct {
	store *Persistence
}

func (r *deliveryRepo) Save(_ context.Context, delivery *models.WebhookDelivery) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if delivery.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate delivery ID: %w", err)
		}

		delivery.ID = id.String()
	}

	if delivery.CreatedAt.IsZero() {
		delivery.CreatedAt = time.Now().UTC()
	}

	saved := *delivery
	r.store.deliveries[delivery.WebhookID] = append(r.store.deliveries[delivery.WebhookID], &saved)

	return nil
}

func (r *deliveryRepo) ListByWebhook(_ context.Context, webhookID string) ([]*models.WebhookDelivery, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stored := r.store.deliveries[webhookID]
	deliveries := make([]*models.WebhookDelivery, 0, len(stored))

	// Newest first, matching the SQL implementation.
	for i := len(stored) - 1; i >= 0; i-- {
		copied := *stored[i]
		deliveries = append(deliveries, &copied)
	}

	return deliveries, nil
}

type recordRepo struct {
	store *Persistence
}

func recordKey(kind, id string) string {
	return kind + "/" + id
}

func (r *recordRepo) GetByID(_ context.Context, kind, id string) (*models.Record, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	record, ok := r.store.records[recordKey(kind, id)]
	if !ok {
		return nil, persistence.ErrRecordNotFound
	}

	copied := *record
	copied.Attributes = cloneMap(record.Attributes)

	return &copied, nil
}

func (r *recordRepo) UpdateAttributes(_ context.Context, kind, id string, attributes map[string]any) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	record, ok := r.store.records[recordKey(kind, id)]
	if !ok {
		return persistence.ErrRecordNotFound
	}

	if record.Attributes == nil {
		record.Attributes = make(map[string]any, len(attributes))
	}

	for key, value := range attributes {
		record.Attributes[key] = value
	}

	record.UpdatedAt = time.Now().UTC()

	return nil
}

func (r *recordRepo) Save(_ context.Context, record *models.Record) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()

	if record.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate record ID: %w", err)
		}

		record.ID = id.String()
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	record.UpdatedAt = now

	copied := *record
	copied.Attributes = cloneMap(record.Attributes)
	r.store.records[recordKey(record.Kind, record.ID)] = &copied

	return nil
}

type notificationRepo struct {
	store *Persistence
}

func (r *notificationRepo) Save(_ context.Context, notification *models.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if notification.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate notification ID: %w", err)
		}

		notification.ID = id.String()
	}

	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	saved := *notification
	r.store.notifications[notification.UserID] = append(r.store.notifications[notification.UserID], &saved)

	return nil
}

func (r *notificationRepo) ListByUser(_ context.Context, userID string) ([]*models.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stored := r.store.notifications[userID]
	notifications := make([]*models.Notification, 0, len(stored))

	for _, notification := range stored {
		copied := *notification
		notifications = append(notifications, &copied)
	}

	return notifications, nil
}

// defaultTemplateLimit caps template listings when the caller does not ask
// for a page size.
const defaultTemplateLimit = 20

type templateRepo struct {
	store *Persistence
}

func (r *templateRepo) List(_ context.Context, filter persistence.TemplateFilter) ([]*models.AutomationTemplate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	templates := make([]*models.AutomationTemplate, 0, len(r.store.templates))

	for _, template := range r.store.templates {
		if !template.Public {
			continue
		}

		if filter.Category != "" && template.Category != filter.Category {
			continue
		}

		if filter.Difficulty != "" && template.Difficulty != filter.Difficulty {
			continue
		}

		templates = append(templates, cloneTemplate(template))
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Popularity > templates[j].Popularity
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultTemplateLimit
	}

	if len(templates) > limit {
		templates = templates[:limit]
	}

	return templates, nil
}

func (r *templateRepo) GetByID(_ context.Context, id string) (*models.AutomationTemplate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	template, ok := r.store.templates[id]
	if !ok {
		return nil, persistence.ErrTemplateNotFound
	}

	return cloneTemplate(template), nil
}

func (r *templateRepo) Save(_ context.Context, template *models.AutomationTemplate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if template.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate template ID: %w", err)
		}

		template.ID = id.String()
	}

	now := time.Now().UTC()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}

	template.UpdatedAt = now

	clone := cloneTemplate(template)

	// Popularity belongs to RecordUse; a caller saving a stale copy must
	// not roll it back.
	if existing, ok := r.store.templates[clone.ID]; ok {
		clone.Popularity = existing.Popularity
	}

	r.store.templates[clone.ID] = clone

	return nil
}

func (r *templateRepo) RecordUse(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	template, ok := r.store.templates[id]
	if !ok {
		return persistence.ErrTemplateNotFound
	}

	template.Popularity++

	return nil
}

func cloneWorkflow(workflow *models.Workflow) *models.Workflow {
	copied := *workflow
	copied.TriggerConfig = cloneMap(workflow.TriggerConfig)
	copied.Variables = cloneMap(workflow.Variables)
	copied.Actions = make([]models.ActionItem, len(workflow.Actions))

	for i, action := range workflow.Actions {
		copied.Actions[i] = action
		copied.Actions[i].Parameters = cloneMap(action.Parameters)
	}

	return &copied
}

func cloneExecution(execution *models.WorkflowExecution) *models.WorkflowExecution {
	copied := *execution
	copied.TriggerData = cloneMap(execution.TriggerData)
	copied.Results = make([]models.ActionResult, len(execution.Results))
	copy(copied.Results, execution.Results)

	return &copied
}

func cloneWebhook(webhook *models.Webhook) *models.Webhook {
	copied := *webhook
	copied.Events = append([]string(nil), webhook.Events...)

	if webhook.Headers != nil {
		copied.Headers = make(map[string]string, len(webhook.Headers))
		for key, value := range webhook.Headers {
			copied.Headers[key] = value
		}
	}

	return &copied
}

func cloneTemplate(template *models.AutomationTemplate) *models.AutomationTemplate {
	copied := *template
	copied.RequiredIntegrations = append([]string(nil), template.RequiredIntegrations...)
	copied.Workflow.TriggerConfig = cloneMap(template.Workflow.TriggerConfig)
	copied.Workflow.Variables = cloneMap(template.Workflow.Variables)
	copied.Workflow.Actions = make([]models.ActionItem, len(template.Workflow.Actions))

	for i, action := range template.Workflow.Actions {
		copied.Workflow.Actions[i] = action
		copied.Workflow.Actions[i].Parameters = cloneMap(action.Parameters)
	}

	return &copied
}

func cloneMap(source map[string]any) map[string]any {
	if source == nil {
		return nil
	}

	copied := make(map[string]any, len(source))
	for key, value := range source {
		copied[key] = value
	}

	return copied
}
