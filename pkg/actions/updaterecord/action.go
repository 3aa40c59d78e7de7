// Package updaterecord provides the update_record action: an atomic
// attribute merge on a stored record.
package updaterecord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/template"
)

var (
	// ErrKindRequired is returned when the configuration has no record kind.
	ErrKindRequired = errors.New("missing or invalid 'kind' in configuration")

	// ErrRecordIDRequired is returned when the configuration has no record id.
	ErrRecordIDRequired = errors.New("missing or invalid 'record_id' in configuration")

	// ErrAttributesRequired is returned when there are no attributes to merge.
	ErrAttributesRequired = errors.New("missing or invalid 'attributes' in configuration")
)

// Action merges attributes into one record.
type Action struct {
	Kind       string
	RecordID   string
	Attributes map[string]any

	records persistence.RecordRepository
}

// NewAction creates an update_record action from configuration.
func NewAction(config map[string]any, records persistence.RecordRepository) (*Action, error) {
	kind, ok := config["kind"].(string)
	if !ok || kind == "" {
		return nil, ErrKindRequired
	}

	recordID, ok := config["record_id"].(string)
	if !ok || recordID == "" {
		return nil, ErrRecordIDRequired
	}

	attributes, ok := config["attributes"].(map[string]any)
	if !ok || len(attributes) == 0 {
		return nil, ErrAttributesRequired
	}

	return &Action{
		Kind:       kind,
		RecordID:   recordID,
		Attributes: attributes,
		records:    records,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", "update_record")

	recordID, err := template.RenderString(a.RecordID, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render record id template: %w", err)
	}

	attributes, err := template.RenderMap(a.Attributes, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render attributes: %w", err)
	}

	logger.InfoContext(ctx, "Updating record", "kind", a.Kind, "record_id", recordID)

	err = a.records.UpdateAttributes(ctx, a.Kind, recordID, attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	return map[string]any{
		"kind":       a.Kind,
		"record_id":  recordID,
		"attributes": attributes,
	}, nil
}
