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

// TemplateRepository persists the automation template catalog.
type TemplateRepository struct {
	db *sql.DB
}

const templateColumns = `
	id,
	name,
	description,
	category,
	difficulty,
	workflow,
	required_integrations,
	public,
	popularity,
	created_at,
	updated_at
`

const defaultTemplateLimit = 20

func (r *TemplateRepository) List(ctx context.Context, filter persistence.TemplateFilter) ([]*models.AutomationTemplate, error) {
	query := `SELECT ` + templateColumns + `
		FROM automation_templates
		WHERE public = true
			AND ($1 = '' OR category = $1)
			AND ($2 = '' OR difficulty = $2)
		ORDER BY popularity DESC, created_at DESC
		LIMIT $3`

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultTemplateLimit
	}

	rows, err := r.db.QueryContext(ctx, query, filter.Category, string(filter.Difficulty), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.AutomationTemplate

	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}

		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}

	return templates, nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.AutomationTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM automation_templates WHERE id = $1`

	template, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrTemplateNotFound
		}

		return nil, err
	}

	return template, nil
}

func (r *TemplateRepository) Save(ctx context.Context, template *models.AutomationTemplate) error {
	now := time.Now().UTC()

	if template.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate template id: %w", err)
		}

		template.ID = id.String()
		template.CreatedAt = now
	}

	template.UpdatedAt = now

	workflowJSON, err := json.Marshal(template.Workflow)
	if err != nil {
		return fmt.Errorf("failed to marshal template workflow: %w", err)
	}

	integrationsJSON, err := json.Marshal(template.RequiredIntegrations)
	if err != nil {
		return fmt.Errorf("failed to marshal required integrations: %w", err)
	}

	// Popularity is excluded from the upsert; RecordUse owns that column.
	query := `
		INSERT INTO automation_templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			difficulty = EXCLUDED.difficulty,
			workflow = EXCLUDED.workflow,
			required_integrations = EXCLUDED.required_integrations,
			public = EXCLUDED.public,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		template.ID,
		template.Name,
		template.Description,
		template.Category,
		string(template.Difficulty),
		workflowJSON,
		integrationsJSON,
		template.Public,
		template.Popularity,
		template.CreatedAt,
		template.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}

	return nil
}

// RecordUse bumps the popularity counter in a single UPDATE.
func (r *TemplateRepository) RecordUse(ctx context.Context, id string) error {
	query := `UPDATE automation_templates SET popularity = popularity + 1 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to record template use: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if affected == 0 {
		return persistence.ErrTemplateNotFound
	}

	return nil
}

func scanTemplate(row rowScanner) (*models.AutomationTemplate, error) {
	var (
		template         models.AutomationTemplate
		workflowJSON     []byte
		integrationsJSON []byte
	)

	err := row.Scan(
		&template.ID,
		&template.Name,
		&template.Description,
		&template.Category,
		&template.Difficulty,
		&workflowJSON,
		&integrationsJSON,
		&template.Public,
		&template.Popularity,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	err = json.Unmarshal(workflowJSON, &template.Workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal template workflow: %w", err)
	}

	if len(integrationsJSON) > 0 {
		err = json.Unmarshal(integrationsJSON, &template.RequiredIntegrations)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal required integrations: %w", err)
		}
	}

	return &template, nil
}
