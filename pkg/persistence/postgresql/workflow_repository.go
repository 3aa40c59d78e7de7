package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence"
)

// WorkflowRepository persists workflow definitions and their counters.
type WorkflowRepository struct {
	db *sql.DB
}

const workflowColumns = `
	id,
	name,
	description,
	trigger,
	trigger_config,
	actions,
	variables,
	active,
	exclusive,
	created_by,
	execution_count,
	success_count,
	failure_count,
	partial_count,
	last_executed_at,
	created_at,
	updated_at
`

func (r *WorkflowRepository) GetAll(ctx context.Context, filter persistence.WorkflowFilter) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + `
		FROM workflows
		WHERE ($1::boolean IS NULL OR active = $1)
		  AND ($2 = '' OR created_by = $2)
		ORDER BY created_at DESC`

	var active sql.NullBool
	if filter.Active != nil {
		active = sql.NullBool{Bool: *filter.Active, Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, query, active, filter.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*models.Workflow

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE id = $1`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, err
	}

	return workflow, nil
}

func (r *WorkflowRepository) GetByTrigger(ctx context.Context, kind models.TriggerKind) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + `
		FROM workflows
		WHERE trigger = $1 AND active = true
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows by trigger: %w", err)
	}
	defer rows.Close()

	var workflows []*models.Workflow

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow id: %w", err)
		}

		workflow.ID = id.String()
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	triggerConfigJSON, err := json.Marshal(workflow.TriggerConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger config: %w", err)
	}

	actionsJSON, err := json.Marshal(workflow.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	variablesJSON, err := json.Marshal(workflow.Variables)
	if err != nil {
		return fmt.Errorf("failed to marshal variables: %w", err)
	}

	query := `
		INSERT INTO workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			trigger = EXCLUDED.trigger,
			trigger_config = EXCLUDED.trigger_config,
			actions = EXCLUDED.actions,
			variables = EXCLUDED.variables,
			active = EXCLUDED.active,
			exclusive = EXCLUDED.exclusive,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		string(workflow.Trigger),
		triggerConfigJSON,
		actionsJSON,
		variablesJSON,
		workflow.Active,
		workflow.Exclusive,
		workflow.CreatedBy,
		workflow.ExecutionCount,
		workflow.SuccessCount,
		workflow.FailureCount,
		workflow.PartialCount,
		workflow.LastExecutedAt,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if affected == 0 {
		return persistence.ErrWorkflowNotFound
	}

	return nil
}

// RecordExecution bumps the counters for one finished run in a single UPDATE
// so concurrent executions never lose increments.
func (r *WorkflowRepository) RecordExecution(ctx context.Context, id string, status models.ExecutionStatus) error {
	if !status.Terminal() {
		return fmt.Errorf("cannot record execution with non-terminal status %q", status)
	}

	query := `
		UPDATE workflows SET
			execution_count = execution_count + 1,
			success_count = success_count + CASE WHEN $2 = 'succeeded' THEN 1 ELSE 0 END,
			failure_count = failure_count + CASE WHEN $2 = 'failed' THEN 1 ELSE 0 END,
			partial_count = partial_count + CASE WHEN $2 = 'partial' THEN 1 ELSE 0 END,
			last_executed_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to record execution: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if affected == 0 {
		return persistence.ErrWorkflowNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow          models.Workflow
		trigger           string
		triggerConfigJSON []byte
		actionsJSON       []byte
		variablesJSON     []byte
		lastExecutedAt    sql.NullTime
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&trigger,
		&triggerConfigJSON,
		&actionsJSON,
		&variablesJSON,
		&workflow.Active,
		&workflow.Exclusive,
		&workflow.CreatedBy,
		&workflow.ExecutionCount,
		&workflow.SuccessCount,
		&workflow.FailureCount,
		&workflow.PartialCount,
		&lastExecutedAt,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	workflow.Trigger = models.TriggerKind(trigger)

	if lastExecutedAt.Valid {
		workflow.LastExecutedAt = &lastExecutedAt.Time
	}

	if len(triggerConfigJSON) > 0 {
		err = json.Unmarshal(triggerConfigJSON, &workflow.TriggerConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger config: %w", err)
		}
	}

	err = json.Unmarshal(actionsJSON, &workflow.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
	}

	if len(variablesJSON) > 0 {
		err = json.Unmarshal(variablesJSON, &workflow.Variables)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal variables: %w", err)
		}
	}

	return &workflow, nil
}
