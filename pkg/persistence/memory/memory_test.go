package memory_test

import (
	"context"
	"testing"

	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkflow(trigger models.TriggerKind, active bool) *models.Workflow {
	return &models.Workflow{
		Name:      "Test Workflow",
		Trigger:   trigger,
		Actions:   []models.ActionItem{{Type: "log"}},
		Active:    active,
		CreatedBy: "tester",
	}
}

func TestWorkflowRepository_SaveAndGet(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	repo := store.WorkflowRepository()
	ctx := context.Background()

	workflow := newTestWorkflow(models.TriggerKindManual, true)
	require.NoError(t, repo.Save(ctx, workflow))
	require.NotEmpty(t, workflow.ID)
	require.False(t, workflow.CreatedAt.IsZero())

	fetched, err := repo.GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Name, fetched.Name)
	assert.Equal(t, models.TriggerKindManual, fetched.Trigger)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowRepository_GetByTrigger(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	repo := store.WorkflowRepository()
	ctx := context.Background()

	activeEvent := newTestWorkflow(models.TriggerKindEvent, true)
	inactiveEvent := newTestWorkflow(models.TriggerKindEvent, false)
	activeWebhook := newTestWorkflow(models.TriggerKindWebhook, true)

	require.NoError(t, repo.Save(ctx, activeEvent))
	require.NoError(t, repo.Save(ctx, inactiveEvent))
	require.NoError(t, repo.Save(ctx, activeWebhook))

	matched, err := repo.GetByTrigger(ctx, models.TriggerKindEvent)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, activeEvent.ID, matched[0].ID)
}

func TestWorkflowRepository_RecordExecution(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	repo := store.WorkflowRepository()
	ctx := context.Background()

	workflow := newTestWorkflow(models.TriggerKindManual, true)
	require.NoError(t, repo.Save(ctx, workflow))

	require.NoError(t, repo.RecordExecution(ctx, workflow.ID, models.ExecutionStatusSucceeded))
	require.NoError(t, repo.RecordExecution(ctx, workflow.ID, models.ExecutionStatusFailed))
	require.NoError(t, repo.RecordExecution(ctx, workflow.ID, models.ExecutionStatusPartial))

	fetched, err := repo.GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fetched.ExecutionCount)
	assert.Equal(t, int64(1), fetched.SuccessCount)
	assert.Equal(t, int64(1), fetched.FailureCount)
	assert.Equal(t, int64(1), fetched.PartialCount)
	assert.NotNil(t, fetched.LastExecutedAt)

	err = repo.RecordExecution(ctx, workflow.ID, models.ExecutionStatusRunning)
	require.Error(t, err)
}

func TestWorkflowRepository_SavePreservesCounters(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	repo := store.WorkflowRepository()
	ctx := context.Background()

	workflow := newTestWorkflow(models.TriggerKindManual, true)
	require.NoError(t, repo.Save(ctx, workflow))

	// Caller fetches a copy, then an execution finishes concurrently.
	stale, err := repo.GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	require.NoError(t, repo.RecordExecution(ctx, workflow.ID, models.ExecutionStatusSucceeded))

	stale.Name = "Renamed Workflow"
	require.NoError(t, repo.Save(ctx, stale))

	fetched, err := repo.GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Workflow", fetched.Name)
	assert.Equal(t, int64(1), fetched.ExecutionCount)
	assert.Equal(t, int64(1), fetched.SuccessCount)
	assert.NotNil(t, fetched.LastExecutedAt)
}

func TestWebhookRepository_SavePreservesCounters(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	repo := store.WebhookRepository()
	ctx := context.Background()

	webhook := &models.Webhook{
		Name:      "Endpoint",
		URL:       "https://example.com/hook",
		Events:    []string{"*"},
		Secret:    "secret",
		Active:    true,
		CreatedBy: "tester",
	}
	require.NoError(t, repo.Save(ctx, webhook))

	stale, err := repo.GetByID(ctx, webhook.ID)
	require.NoError(t, err)
	require.NoError(t, repo.RecordDelivery(ctx, webhook.ID, true))

	stale.Name = "Renamed Endpoint"
	require.NoError(t, repo.Save(ctx, stale))

	fetched, err := repo.GetByID(ctx, webhook.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Endpoint", fetched.Name)
	assert.Equal(t, int64(1), fetched.SuccessCount)
	assert.NotNil(t, fetched.LastTriggeredAt)
}

func TestWorkflowRepository_DeleteCascadesExecutions(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	ctx := context.Background()

	workflow := newTestWorkflow(models.TriggerKindManual, true)
	require.NoError(t, store.WorkflowRepository().Save(ctx, workflow))

	execution := &models.WorkflowExecution{
		WorkflowID: workflow.ID,
		Trigger:    models.TriggerKindManual,
		Status:     models.ExecutionStatusSucceeded,
	}
	require.NoError(t, store.ExecutionRepository().Save(ctx, execution))

	require.NoError(t, store.WorkflowRepository().Delete(ctx, workflow.ID))

	executions, err := store.ExecutionRepository().ListByWorkflow(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Empty(t, executions)
}

func TestExecutionRepository_TerminalImmutability(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	repo := store.ExecutionRepository()
	ctx := context.Background()

	execution := &models.WorkflowExecution{
		WorkflowID: "wf-1",
		Trigger:    models.TriggerKindManual,
		Status:     models.ExecutionStatusRunning,
	}
	require.NoError(t, repo.Save(ctx, execution))

	execution.Status = models.ExecutionStatusSucceeded
	require.NoError(t, repo.Save(ctx, execution))

	execution.Status = models.ExecutionStatusFailed
	err := repo.Save(ctx, execution)
	require.ErrorIs(t, err, persistence.ErrExecutionImmutable)
}

func TestWebhookRepository_CountersAndDeliveries(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	ctx := context.Background()

	webhook := &models.Webhook{
		Name:   "CRM sink",
		URL:    "https://crm.example.com/hooks",
		Events: []string{"*"},
		Secret: "s3cret",
		Active: true,
	}
	require.NoError(t, store.WebhookRepository().Save(ctx, webhook))

	require.NoError(t, store.WebhookRepository().RecordDelivery(ctx, webhook.ID, true))
	require.NoError(t, store.WebhookRepository().RecordDelivery(ctx, webhook.ID, false))

	fetched, err := store.WebhookRepository().GetByID(ctx, webhook.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fetched.SuccessCount)
	assert.Equal(t, int64(1), fetched.FailureCount)
	assert.NotNil(t, fetched.LastTriggeredAt)

	delivery := &models.WebhookDelivery{
		WebhookID: webhook.ID,
		Event:     "payment.received",
		Status:    models.DeliveryStatusSuccess,
		Attempt:   1,
	}
	require.NoError(t, store.DeliveryRepository().Save(ctx, delivery))

	deliveries, err := store.DeliveryRepository().ListByWebhook(ctx, webhook.ID)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, "payment.received", deliveries[0].Event)
}

func TestRecordRepository_UpdateAttributes(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	repo := store.RecordRepository()
	ctx := context.Background()

	record := &models.Record{
		Kind:       "distributor",
		Attributes: map[string]any{"status": "pending", "tier": "bronze"},
	}
	require.NoError(t, repo.Save(ctx, record))

	require.NoError(t, repo.UpdateAttributes(ctx, "distributor", record.ID, map[string]any{
		"status": "approved",
	}))

	fetched, err := repo.GetByID(ctx, "distributor", record.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", fetched.Attributes["status"])
	assert.Equal(t, "bronze", fetched.Attributes["tier"])

	err = repo.UpdateAttributes(ctx, "distributor", "missing", map[string]any{"x": 1})
	require.ErrorIs(t, err, persistence.ErrRecordNotFound)
}

func newTestTemplate(name, category string, difficulty models.TemplateDifficulty, public bool) *models.AutomationTemplate {
	return &models.AutomationTemplate{
		Name:       name,
		Category:   category,
		Difficulty: difficulty,
		Workflow: models.WorkflowTemplate{
			Trigger: models.TriggerKindManual,
			Actions: []models.ActionItem{{Type: "log", Parameters: map[string]any{"message": "hi"}}},
		},
		Public: public,
	}
}

func TestTemplateRepository_ListFiltersAndOrders(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	repo := store.TemplateRepository()
	ctx := context.Background()

	popular := newTestTemplate("Welcome series", "onboarding", models.DifficultyBeginner, true)
	niche := newTestTemplate("Churn alerts", "retention", models.DifficultyAdvanced, true)
	hidden := newTestTemplate("Internal draft", "onboarding", models.DifficultyBeginner, false)

	require.NoError(t, repo.Save(ctx, popular))
	require.NoError(t, repo.Save(ctx, niche))
	require.NoError(t, repo.Save(ctx, hidden))

	require.NoError(t, repo.RecordUse(ctx, popular.ID))
	require.NoError(t, repo.RecordUse(ctx, popular.ID))
	require.NoError(t, repo.RecordUse(ctx, niche.ID))

	listed, err := repo.List(ctx, persistence.TemplateFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, popular.ID, listed[0].ID)
	assert.Equal(t, int64(2), listed[0].Popularity)
	assert.Equal(t, niche.ID, listed[1].ID)

	onboarding, err := repo.List(ctx, persistence.TemplateFilter{Category: "onboarding"})
	require.NoError(t, err)
	require.Len(t, onboarding, 1)
	assert.Equal(t, popular.ID, onboarding[0].ID)

	advanced, err := repo.List(ctx, persistence.TemplateFilter{Difficulty: models.DifficultyAdvanced})
	require.NoError(t, err)
	require.Len(t, advanced, 1)
	assert.Equal(t, niche.ID, advanced[0].ID)

	limited, err := repo.List(ctx, persistence.TemplateFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, popular.ID, limited[0].ID)
}

func TestTemplateRepository_SavePreservesPopularity(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	repo := store.TemplateRepository()
	ctx := context.Background()

	template := newTestTemplate("Welcome series", "onboarding", models.DifficultyBeginner, true)
	require.NoError(t, repo.Save(ctx, template))
	require.NotEmpty(t, template.ID)

	stale, err := repo.GetByID(ctx, template.ID)
	require.NoError(t, err)
	require.NoError(t, repo.RecordUse(ctx, template.ID))

	stale.Description = "Updated copy"
	require.NoError(t, repo.Save(ctx, stale))

	fetched, err := repo.GetByID(ctx, template.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated copy", fetched.Description)
	assert.Equal(t, int64(1), fetched.Popularity)
}

func TestTemplateRepository_MissingTemplate(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	repo := store.TemplateRepository()
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrTemplateNotFound)
	assert.True(t, persistence.IsTemplateNotFound(err))

	err = repo.RecordUse(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrTemplateNotFound)
}

func TestNotificationRepository(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	repo := store.NotificationRepository()
	ctx := context.Background()

	notification := &models.Notification{
		UserID:  "user-1",
		Type:    "workflow",
		Title:   "Order shipped",
		Message: "Your order left the warehouse",
	}
	require.NoError(t, repo.Save(ctx, notification))
	require.NotEmpty(t, notification.ID)

	listed, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Order shipped", listed[0].Title)
}
