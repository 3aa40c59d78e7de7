// Package workflow implements trigger dispatch and workflow execution.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowline/flowline/pkg/eventbus"
	"github.com/flowline/flowline/pkg/events"
	"github.com/flowline/flowline/pkg/locker"
	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/otelhelper"
	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/registry"
)

var (
	// ErrWorkflowInactive is returned when execution of a deactivated
	// workflow is requested. No execution row is created.
	ErrWorkflowInactive = errors.New("workflow is not active")

	// ErrExecutionInFlight is returned for exclusive workflows that already
	// have a run in progress.
	ErrExecutionInFlight = errors.New("workflow already has an execution in flight")
)

// exclusiveLockTTL bounds how long a crashed run can hold an exclusive lock.
const exclusiveLockTTL = 15 * time.Minute

// Executor runs workflows as strict sequential pipelines and records one
// ledger row per run.
type Executor struct {
	store    persistence.Persistence
	registry *registry.Registry
	eventBus eventbus.EventPublisher
	locks    locker.Locker
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewExecutor creates an executor. eventBus and locks may be nil; lifecycle
// events and exclusive execution are then disabled.
func NewExecutor(
	logger *slog.Logger,
	store persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventPublisher,
	locks locker.Locker,
) *Executor {
	return &Executor{
		store:    store,
		registry: reg,
		eventBus: eventBus,
		locks:    locks,
		tracer:   otel.Tracer("flowline/workflow"),
		logger:   logger.With("module", "workflow_executor"),
	}
}

// Execute runs one workflow to a terminal state and returns the full
// execution record. Action failures do not abort the run; they surface as
// failed entries in the result list and in the final status.
func (e *Executor) Execute(
	ctx context.Context,
	workflowID string,
	trigger models.TriggerKind,
	triggerData map[string]any,
	executedBy string,
) (*models.WorkflowExecution, error) {
	logger := e.logger.With("workflow_id", workflowID, "trigger", trigger)

	workflow, err := e.store.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	if !workflow.Active {
		return nil, ErrWorkflowInactive
	}

	if workflow.Exclusive && e.locks != nil {
		release, acquired, err := e.locks.TryAcquire(ctx, "workflow:"+workflowID, exclusiveLockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire execution lock: %w", err)
		}

		if !acquired {
			return nil, ErrExecutionInFlight
		}

		defer release()
	}

	e.publish(ctx, workflow.ID, events.WorkflowTriggered{
		BaseEvent:   events.NewBaseEvent(events.WorkflowTriggeredEvent),
		WorkflowID:  workflow.ID,
		Trigger:     trigger,
		TriggerData: triggerData,
		ExecutedBy:  executedBy,
	})

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
		attribute.String(otelhelper.WorkflowNameKey, workflow.Name),
		attribute.String(otelhelper.TriggerKindKey, string(trigger)),
	)
	defer span.End()

	execution := &models.WorkflowExecution{
		WorkflowID:  workflow.ID,
		Trigger:     trigger,
		TriggerData: triggerData,
		Status:      models.ExecutionStatusPending,
		Results:     []models.ActionResult{},
		ExecutedBy:  executedBy,
		StartedAt:   time.Now().UTC(),
	}

	err = e.store.ExecutionRepository().Save(ctx, execution)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to create execution: %w", err)
	}

	logger = logger.With("execution_id", execution.ID)
	span.SetAttributes(attribute.String(otelhelper.ExecutionIDKey, execution.ID))

	execution.Status = models.ExecutionStatusRunning

	err = e.store.ExecutionRepository().Save(ctx, execution)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to mark execution running: %w", err)
	}

	e.publish(ctx, workflow.ID, events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent),
		WorkflowID:  workflow.ID,
		ExecutionID: execution.ID,
		Trigger:     trigger,
	})

	logger.InfoContext(ctx, "Starting workflow execution", "actions", len(workflow.Actions))

	executionCtx := models.ExecutionContext{
		ID:            execution.ID,
		WorkflowID:    workflow.ID,
		Trigger:       trigger,
		TriggerData:   triggerData,
		Variables:     workflow.Variables,
		ActionResults: make(map[string]any),
	}

	for index, item := range workflow.Actions {
		result := e.runAction(ctx, item, index, &executionCtx, logger)
		execution.Results = append(execution.Results, result)

		if result.Status == models.ActionStatusSucceeded {
			executionCtx.ActionResults[item.Key(index)] = result.Output
		}
	}

	finishedAt := time.Now().UTC()
	execution.FinishedAt = &finishedAt
	execution.Status = models.FinalStatus(execution.Results)

	err = e.store.ExecutionRepository().Save(ctx, execution)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to save execution result: %w", err)
	}

	err = e.store.WorkflowRepository().RecordExecution(ctx, workflow.ID, execution.Status)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to record execution counters", "error", err)
	}

	duration := finishedAt.Sub(execution.StartedAt)

	e.publish(ctx, workflow.ID, events.ExecutionFinished{
		BaseEvent:   events.NewBaseEvent(events.ExecutionFinishedEvent),
		WorkflowID:  workflow.ID,
		ExecutionID: execution.ID,
		Status:      execution.Status,
		DurationMs:  duration.Milliseconds(),
	})

	span.SetAttributes(attribute.String("flowline.execution.status", string(execution.Status)))
	logger.InfoContext(ctx, "Workflow execution finished",
		"status", execution.Status,
		"duration_ms", duration.Milliseconds(),
	)

	return execution, nil
}

// runAction executes one action and folds any failure, including factory
// errors for unknown types, into a failed result entry.
func (e *Executor) runAction(
	ctx context.Context,
	item models.ActionItem,
	index int,
	executionCtx *models.ExecutionContext,
	logger *slog.Logger,
) models.ActionResult {
	startedAt := time.Now().UTC()

	result := models.ActionResult{
		Type:      item.Type,
		Name:      item.Name,
		Status:    models.ActionStatusSucceeded,
		StartedAt: startedAt,
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.action",
		attribute.String(otelhelper.ActionTypeKey, item.Type),
		attribute.String(otelhelper.ActionKeyKey, item.Key(index)),
	)
	defer span.End()

	logger = logger.With("action_type", item.Type, "action_key", item.Key(index))

	output, err := e.executeAction(ctx, item, executionCtx, logger)

	result.DurationMs = time.Since(startedAt).Milliseconds()

	if err != nil {
		result.Status = models.ActionStatusFailed
		result.Error = err.Error()

		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "Action failed", "error", err)

		return result
	}

	result.Output = output

	logger.InfoContext(ctx, "Action completed", "duration_ms", result.DurationMs)

	return result
}

func (e *Executor) executeAction(
	ctx context.Context,
	item models.ActionItem,
	executionCtx *models.ExecutionContext,
	logger *slog.Logger,
) (any, error) {
	action, err := e.registry.CreateAction(item.Type, item.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to create action: %w", err)
	}

	return action.Execute(ctx, *executionCtx, logger)
}

func (e *Executor) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.eventBus == nil {
		return
	}

	err := e.eventBus.Publish(ctx, key, event)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
