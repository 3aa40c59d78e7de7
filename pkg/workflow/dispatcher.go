package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowline/flowline/pkg/eventbus"
	"github.com/flowline/flowline/pkg/events"
	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence"
)

// Dispatcher routes incoming triggers to workflows. An explicit workflow ID
// bypasses kind matching; otherwise every active workflow with the matching
// trigger kind runs.
type Dispatcher struct {
	store    persistence.Persistence
	executor *Executor
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger, store persistence.Persistence, executor *Executor) *Dispatcher {
	return &Dispatcher{
		store:    store,
		executor: executor,
		logger:   logger.With("module", "trigger_dispatcher"),
	}
}

// ExecuteWorkflow runs one workflow directly, bypassing kind matching.
func (d *Dispatcher) ExecuteWorkflow(
	ctx context.Context,
	workflowID string,
	trigger models.TriggerKind,
	triggerData map[string]any,
	executedBy string,
) (*models.WorkflowExecution, error) {
	return d.executor.Execute(ctx, workflowID, trigger, triggerData, executedBy)
}

// Dispatch fans the trigger out to every matching active workflow. Zero
// matches is a no-op, not an error. Individual execution failures are logged
// and do not stop the fan-out.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	kind models.TriggerKind,
	triggerData map[string]any,
	executedBy string,
) ([]*models.WorkflowExecution, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("trigger %q: %w", kind, models.ErrInvalidTriggerKind)
	}

	workflows, err := d.store.WorkflowRepository().GetByTrigger(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to match workflows: %w", err)
	}

	executions := make([]*models.WorkflowExecution, 0, len(workflows))

	for _, workflow := range workflows {
		if !matchesTriggerConfig(workflow, triggerData) {
			continue
		}

		execution, err := d.executor.Execute(ctx, workflow.ID, kind, triggerData, executedBy)
		if err != nil {
			d.logger.ErrorContext(ctx, "Failed to execute matched workflow",
				"workflow_id", workflow.ID,
				"trigger", kind,
				"error", err,
			)

			continue
		}

		executions = append(executions, execution)
	}

	d.logger.InfoContext(ctx, "Trigger dispatched",
		"trigger", kind,
		"matched", len(workflows),
		"executed", len(executions),
	)

	return executions, nil
}

// SubscribeEvents wires the dispatcher to the bus: incoming domain events
// become "event" triggers.
func (d *Dispatcher) SubscribeEvents(ctx context.Context, bus eventbus.EventBus) error {
	err := bus.Handle(events.DomainEventType, func(ctx context.Context, event any) error {
		domainEvent, ok := event.(*events.DomainEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}

		_, err := d.Dispatch(ctx, models.TriggerKindEvent, map[string]any{
			"event": domainEvent.Name,
			"data":  domainEvent.Data,
		}, "event-bus")

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to register event handler: %w", err)
	}

	return bus.Subscribe(ctx)
}

// matchesTriggerConfig applies the workflow's optional trigger filter: an
// "event" key in trigger_config restricts event workflows to that event
// name, a "schedule" key restricts schedule workflows to that schedule name.
func matchesTriggerConfig(workflow *models.Workflow, triggerData map[string]any) bool {
	for _, key := range []string{"event", "schedule"} {
		want, ok := workflow.TriggerConfig[key].(string)
		if !ok || want == "" {
			continue
		}

		got, _ := triggerData[key].(string)
		if got != want {
			return false
		}
	}

	return true
}
