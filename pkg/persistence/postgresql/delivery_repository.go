package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowline/flowline/pkg/models"
)

// DeliveryRepository persists the outbound delivery ledger.
type DeliveryRepository struct {
	db *sql.DB
}

func (r *DeliveryRepository) Save(ctx context.Context, delivery *models.WebhookDelivery) error {
	if delivery.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate delivery id: %w", err)
		}

		delivery.ID = id.String()
	}

	if delivery.CreatedAt.IsZero() {
		delivery.CreatedAt = time.Now().UTC()
	}

	payloadJSON, err := json.Marshal(delivery.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO webhook_deliveries (
			id,
			webhook_id,
			event,
			payload,
			status,
			response_code,
			response_body,
			attempt,
			error,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		delivery.ID,
		delivery.WebhookID,
		delivery.Event,
		payloadJSON,
		string(delivery.Status),
		delivery.ResponseCode,
		delivery.ResponseBody,
		delivery.Attempt,
		delivery.Error,
		delivery.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save delivery: %w", err)
	}

	return nil
}

func (r *DeliveryRepository) ListByWebhook(ctx context.Context, webhookID string) ([]*models.WebhookDelivery, error) {
	query := `
		SELECT
			id,
			webhook_id,
			event,
			payload,
			status,
			response_code,
			response_body,
			attempt,
			error,
			created_at
		FROM webhook_deliveries
		WHERE webhook_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, webhookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*models.WebhookDelivery

	for rows.Next() {
		var (
			delivery     models.WebhookDelivery
			status       string
			payloadJSON  []byte
			responseCode sql.NullInt64
			responseBody sql.NullString
			deliveryErr  sql.NullString
		)

		err := rows.Scan(
			&delivery.ID,
			&delivery.WebhookID,
			&delivery.Event,
			&payloadJSON,
			&status,
			&responseCode,
			&responseBody,
			&delivery.Attempt,
			&deliveryErr,
			&delivery.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}

		delivery.Status = models.DeliveryStatus(status)
		delivery.ResponseCode = int(responseCode.Int64)
		delivery.ResponseBody = responseBody.String
		delivery.Error = deliveryErr.String

		if len(payloadJSON) > 0 {
			err = json.Unmarshal(payloadJSON, &delivery.Payload)
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		deliveries = append(deliveries, &delivery)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deliveries: %w", err)
	}

	return deliveries, nil
}
