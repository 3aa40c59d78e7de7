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

// WebhookRepository persists webhook endpoint registrations.
type WebhookRepository struct {
	db *sql.DB
}

const webhookColumns = `
	id,
	name,
	url,
	events,
	secret,
	headers,
	retry,
	allow_unsigned,
	active,
	created_by,
	success_count,
	failure_count,
	last_triggered_at,
	created_at,
	updated_at
`

func (r *WebhookRepository) GetAll(ctx context.Context, active *bool) ([]*models.Webhook, error) {
	query := `SELECT ` + webhookColumns + `
		FROM webhooks
		WHERE ($1::boolean IS NULL OR active = $1)
		ORDER BY created_at DESC`

	var activeFilter sql.NullBool
	if active != nil {
		activeFilter = sql.NullBool{Bool: *active, Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, query, activeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to query webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []*models.Webhook

	for rows.Next() {
		webhook, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}

		webhooks = append(webhooks, webhook)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate webhooks: %w", err)
	}

	return webhooks, nil
}

func (r *WebhookRepository) GetByID(ctx context.Context, id string) (*models.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE id = $1`

	webhook, err := scanWebhook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrWebhookNotFound
		}

		return nil, err
	}

	return webhook, nil
}

func (r *WebhookRepository) Save(ctx context.Context, webhook *models.Webhook) error {
	now := time.Now().UTC()

	if webhook.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate webhook id: %w", err)
		}

		webhook.ID = id.String()
		webhook.CreatedAt = now
	}

	webhook.UpdatedAt = now

	eventsJSON, err := json.Marshal(webhook.Events)
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	headersJSON, err := json.Marshal(webhook.Headers)
	if err != nil {
		return fmt.Errorf("failed to marshal headers: %w", err)
	}

	retryJSON, err := json.Marshal(webhook.Retry)
	if err != nil {
		return fmt.Errorf("failed to marshal retry config: %w", err)
	}

	query := `
		INSERT INTO webhooks (` + webhookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			events = EXCLUDED.events,
			secret = EXCLUDED.secret,
			headers = EXCLUDED.headers,
			retry = EXCLUDED.retry,
			allow_unsigned = EXCLUDED.allow_unsigned,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		webhook.ID,
		webhook.Name,
		webhook.URL,
		eventsJSON,
		webhook.Secret,
		headersJSON,
		retryJSON,
		webhook.AllowUnsigned,
		webhook.Active,
		webhook.CreatedBy,
		webhook.SuccessCount,
		webhook.FailureCount,
		webhook.LastTriggeredAt,
		webhook.CreatedAt,
		webhook.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save webhook: %w", err)
	}

	return nil
}

func (r *WebhookRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM webhooks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if affected == 0 {
		return persistence.ErrWebhookNotFound
	}

	return nil
}

// RecordDelivery bumps the outbound counters in a single UPDATE.
func (r *WebhookRepository) RecordDelivery(ctx context.Context, id string, success bool) error {
	query := `
		UPDATE webhooks SET
			success_count = success_count + CASE WHEN $2 THEN 1 ELSE 0 END,
			failure_count = failure_count + CASE WHEN $2 THEN 0 ELSE 1 END,
			last_triggered_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, success)
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if affected == 0 {
		return persistence.ErrWebhookNotFound
	}

	return nil
}

func scanWebhook(row rowScanner) (*models.Webhook, error) {
	var (
		webhook         models.Webhook
		eventsJSON      []byte
		headersJSON     []byte
		retryJSON       []byte
		lastTriggeredAt sql.NullTime
	)

	err := row.Scan(
		&webhook.ID,
		&webhook.Name,
		&webhook.URL,
		&eventsJSON,
		&webhook.Secret,
		&headersJSON,
		&retryJSON,
		&webhook.AllowUnsigned,
		&webhook.Active,
		&webhook.CreatedBy,
		&webhook.SuccessCount,
		&webhook.FailureCount,
		&lastTriggeredAt,
		&webhook.CreatedAt,
		&webhook.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to scan webhook: %w", err)
	}

	if lastTriggeredAt.Valid {
		webhook.LastTriggeredAt = &lastTriggeredAt.Time
	}

	err = json.Unmarshal(eventsJSON, &webhook.Events)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal events: %w", err)
	}

	if len(headersJSON) > 0 {
		err = json.Unmarshal(headersJSON, &webhook.Headers)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal headers: %w", err)
		}
	}

	if len(retryJSON) > 0 {
		err = json.Unmarshal(retryJSON, &webhook.Retry)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal retry config: %w", err)
		}
	}

	return &webhook, nil
}
