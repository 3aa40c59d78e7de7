package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence"
)

// ExecutionRepository persists the execution ledger.
type ExecutionRepository struct {
	db *sql.DB
}

const executionColumns = `
	id,
	workflow_id,
	trigger,
	trigger_data,
	status,
	results,
	executed_by,
	started_at,
	finished_at
`

func (r *ExecutionRepository) Save(ctx context.Context, execution *models.WorkflowExecution) error {
	if execution.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate execution id: %w", err)
		}

		execution.ID = id.String()
	} else {
		// Terminal executions are immutable ledger rows.
		existing, err := r.GetByID(ctx, execution.ID)
		if err != nil && !persistence.IsExecutionNotFound(err) {
			return err
		}

		if existing != nil && existing.Status.Terminal() {
			return persistence.ErrExecutionImmutable
		}
	}

	triggerDataJSON, err := json.Marshal(execution.TriggerData)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	resultsJSON, err := json.Marshal(execution.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	query := `
		INSERT INTO workflow_executions (` + executionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			results = EXCLUDED.results,
			finished_at = EXCLUDED.finished_at`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		string(execution.Trigger),
		triggerDataJSON,
		string(execution.Status),
		resultsJSON,
		execution.ExecutedBy,
		execution.StartedAt,
		execution.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM workflow_executions WHERE id = $1`

	execution, err := scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, err
	}

	return execution, nil
}

func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowExecution, error) {
	query := `SELECT ` + executionColumns + `
		FROM workflow_executions
		WHERE workflow_id = $1
		ORDER BY started_at DESC`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer rows.Close()

	var executions []*models.WorkflowExecution

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate executions: %w", err)
	}

	return executions, nil
}

func scanExecution(row rowScanner) (*models.WorkflowExecution, error) {
	var (
		execution       models.WorkflowExecution
		trigger         string
		status          string
		triggerDataJSON []byte
		resultsJSON     []byte
		executedBy      sql.NullString
		finishedAt      sql.NullTime
	)

	err := row.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&trigger,
		&triggerDataJSON,
		&status,
		&resultsJSON,
		&executedBy,
		&execution.StartedAt,
		&finishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	execution.Trigger = models.TriggerKind(trigger)
	execution.Status = models.ExecutionStatus(status)
	execution.ExecutedBy = executedBy.String

	if finishedAt.Valid {
		execution.FinishedAt = &finishedAt.Time
	}

	if len(triggerDataJSON) > 0 {
		err = json.Unmarshal(triggerDataJSON, &execution.TriggerData)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
		}
	}

	err = json.Unmarshal(resultsJSON, &execution.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}

	return &execution, nil
}
