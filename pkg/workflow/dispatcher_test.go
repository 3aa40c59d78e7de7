package workflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowline/flowline/pkg/actions/callwebhook"
	"github.com/flowline/flowline/pkg/actions/createnotification"
	"github.com/flowline/flowline/pkg/actions/sendemail"
	"github.com/flowline/flowline/pkg/locker"
	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence/memory"
	"github.com/flowline/flowline/pkg/registry"
	"github.com/flowline/flowline/pkg/workflow"
)

func TestDispatcher_Dispatch_FansOutToMatchingKind(t *testing.T) {
	t.Parallel()

	store, executor := newTestHarness(t)
	dispatcher := workflow.NewDispatcher(testLogger(), store, executor)
	ctx := context.Background()

	matching := saveWorkflow(t, store, &models.Workflow{
		Name:      "On event",
		Trigger:   models.TriggerKindEvent,
		Actions:   []models.ActionItem{{Type: "log"}},
		Active:    true,
		CreatedBy: "tester",
	})

	saveWorkflow(t, store, &models.Workflow{
		Name:      "On webhook",
		Trigger:   models.TriggerKindWebhook,
		Actions:   []models.ActionItem{{Type: "log"}},
		Active:    true,
		CreatedBy: "tester",
	})

	saveWorkflow(t, store, &models.Workflow{
		Name:      "Inactive event",
		Trigger:   models.TriggerKindEvent,
		Actions:   []models.ActionItem{{Type: "log"}},
		Active:    false,
		CreatedBy: "tester",
	})

	executions, err := dispatcher.Dispatch(ctx, models.TriggerKindEvent, map[string]any{"event": "order.created"}, "bus")
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, matching.ID, executions[0].WorkflowID)
}

func TestDispatcher_Dispatch_ZeroMatchesIsNoOp(t *testing.T) {
	t.Parallel()

	store, executor := newTestHarness(t)
	dispatcher := workflow.NewDispatcher(testLogger(), store, executor)

	executions, err := dispatcher.Dispatch(context.Background(), models.TriggerKindSchedule, nil, "cron")
	require.NoError(t, err)
	assert.Empty(t, executions)
}

func TestDispatcher_Dispatch_InvalidKind(t *testing.T) {
	t.Parallel()

	store, executor := newTestHarness(t)
	dispatcher := workflow.NewDispatcher(testLogger(), store, executor)

	_, err := dispatcher.Dispatch(context.Background(), models.TriggerKind("bogus"), nil, "x")
	require.ErrorIs(t, err, models.ErrInvalidTriggerKind)
}

func TestDispatcher_Dispatch_FiltersOnTriggerConfig(t *testing.T) {
	t.Parallel()

	store, executor := newTestHarness(t)
	dispatcher := workflow.NewDispatcher(testLogger(), store, executor)
	ctx := context.Background()

	orderWorkflow := saveWorkflow(t, store, &models.Workflow{
		Name:          "Orders only",
		Trigger:       models.TriggerKindEvent,
		TriggerConfig: map[string]any{"event": "order.created"},
		Actions:       []models.ActionItem{{Type: "log"}},
		Active:        true,
		CreatedBy:     "tester",
	})

	saveWorkflow(t, store, &models.Workflow{
		Name:          "Payments only",
		Trigger:       models.TriggerKindEvent,
		TriggerConfig: map[string]any{"event": "payment.received"},
		Actions:       []models.ActionItem{{Type: "log"}},
		Active:        true,
		CreatedBy:     "tester",
	})

	executions, err := dispatcher.Dispatch(ctx, models.TriggerKindEvent, map[string]any{"event": "order.created"}, "bus")
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, orderWorkflow.ID, executions[0].WorkflowID)
}

func TestDispatcher_ExecuteWorkflow_BypassesKindMatching(t *testing.T) {
	t.Parallel()

	store, executor := newTestHarness(t)
	dispatcher := workflow.NewDispatcher(testLogger(), store, executor)
	ctx := context.Background()

	wf := saveWorkflow(t, store, &models.Workflow{
		Name:      "Webhook pipeline",
		Trigger:   models.TriggerKindWebhook,
		Actions:   []models.ActionItem{{Type: "log"}},
		Active:    true,
		CreatedBy: "tester",
	})

	execution, err := dispatcher.ExecuteWorkflow(ctx, wf.ID, models.TriggerKindManual, nil, "operator")
	require.NoError(t, err)
	assert.Equal(t, wf.ID, execution.WorkflowID)
	assert.Equal(t, models.TriggerKindManual, execution.Trigger)
}

// Mirrors the onboarding scenario: a working email step, an unreachable
// webhook endpoint, and a working notification step.
func TestDispatcher_Scenario_PartialPipeline(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	mailer := &fakeMailer{}

	reg := registry.NewRegistry(testLogger())
	reg.RegisterAction(sendemail.NewActionFactory(mailer))
	reg.RegisterAction(callwebhook.NewActionFactory())
	reg.RegisterAction(createnotification.NewActionFactory(store.NotificationRepository()))

	executor := workflow.NewExecutor(testLogger(), store, reg, nil, locker.NewMemoryLocker())
	ctx := context.Background()

	wf := saveWorkflow(t, store, &models.Workflow{
		Name:    "Distributor onboarding",
		Trigger: models.TriggerKindManual,
		Actions: []models.ActionItem{
			{Type: "send_email", Parameters: map[string]any{
				"to":      "{{.trigger_data.email}}",
				"subject": "Welcome aboard",
			}},
			{Type: "call_webhook", Parameters: map[string]any{
				// Reserved port, nothing listens here.
				"url":             "http://127.0.0.1:1/hook",
				"timeout_seconds": float64(1),
			}},
			{Type: "create_notification", Parameters: map[string]any{
				"user_id": "{{.trigger_data.user_id}}",
				"title":   "Onboarding started",
			}},
		},
		Active:    true,
		CreatedBy: "tester",
	})

	execution, err := executor.Execute(ctx, wf.ID, models.TriggerKindManual, map[string]any{
		"email":   "new@example.com",
		"user_id": "user-1",
	}, "operator")
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusPartial, execution.Status)
	require.Len(t, execution.Results, 3)

	assert.Equal(t, models.ActionStatusSucceeded, execution.Results[0].Status)
	assert.Equal(t, models.ActionStatusFailed, execution.Results[1].Status)
	assert.NotEmpty(t, execution.Results[1].Error)
	assert.Equal(t, models.ActionStatusSucceeded, execution.Results[2].Status)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "new@example.com", mailer.sent[0].To)

	notifications, err := store.NotificationRepository().ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
}
