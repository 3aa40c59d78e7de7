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

// RecordRepository persists generic records addressed by kind and ID.
type RecordRepository struct {
	db *sql.DB
}

func (r *RecordRepository) GetByID(ctx context.Context, kind, id string) (*models.Record, error) {
	query := `
		SELECT
			id,
			kind,
			attributes,
			created_at,
			updated_at
		FROM records
		WHERE kind = $1 AND id = $2`

	var (
		record         models.Record
		attributesJSON []byte
	)

	err := r.db.QueryRowContext(ctx, query, kind, id).Scan(
		&record.ID,
		&record.Kind,
		&attributesJSON,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrRecordNotFound
		}

		return nil, fmt.Errorf("failed to query record: %w", err)
	}

	err = json.Unmarshal(attributesJSON, &record.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal attributes: %w", err)
	}

	return &record, nil
}

// UpdateAttributes merges the given attributes into the stored JSONB document
// in a single UPDATE, so concurrent merges on different keys both land.
func (r *RecordRepository) UpdateAttributes(ctx context.Context, kind, id string, attributes map[string]any) error {
	attributesJSON, err := json.Marshal(attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}

	query := `
		UPDATE records SET
			attributes = attributes || $3::jsonb,
			updated_at = NOW()
		WHERE kind = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, kind, id, attributesJSON)
	if err != nil {
		return fmt.Errorf("failed to update record attributes: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if affected == 0 {
		return persistence.ErrRecordNotFound
	}

	return nil
}

func (r *RecordRepository) Save(ctx context.Context, record *models.Record) error {
	now := time.Now().UTC()

	if record.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate record id: %w", err)
		}

		record.ID = id.String()
		record.CreatedAt = now
	}

	record.UpdatedAt = now

	attributesJSON, err := json.Marshal(record.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}

	query := `
		INSERT INTO records (id, kind, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (kind, id) DO UPDATE SET
			attributes = EXCLUDED.attributes,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.Kind,
		attributesJSON,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return nil
}
