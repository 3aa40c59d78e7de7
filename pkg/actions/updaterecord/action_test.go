package updaterecord_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowline/flowline/pkg/actions/updaterecord"
	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/persistence/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestNewAction_Validation(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()

	tests := []struct {
		name     string
		config   map[string]any
		expected error
	}{
		{
			name:     "missing kind",
			config:   map[string]any{"record_id": "r-1", "attributes": map[string]any{"a": 1}},
			expected: updaterecord.ErrKindRequired,
		},
		{
			name:     "missing record id",
			config:   map[string]any{"kind": "order", "attributes": map[string]any{"a": 1}},
			expected: updaterecord.ErrRecordIDRequired,
		},
		{
			name:     "missing attributes",
			config:   map[string]any{"kind": "order", "record_id": "r-1"},
			expected: updaterecord.ErrAttributesRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := updaterecord.NewAction(tt.config, store.RecordRepository())
			require.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestAction_Execute(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	ctx := context.Background()

	record := &models.Record{
		Kind:       "distributor",
		Attributes: map[string]any{"status": "pending"},
	}
	require.NoError(t, store.RecordRepository().Save(ctx, record))

	action, err := updaterecord.NewAction(map[string]any{
		"kind":      "distributor",
		"record_id": "{{.trigger_data.distributor_id}}",
		"attributes": map[string]any{
			"status":      "approved",
			"approved_by": "{{.trigger_data.reviewer}}",
		},
	}, store.RecordRepository())
	require.NoError(t, err)

	executionCtx := models.ExecutionContext{
		TriggerData: map[string]any{
			"distributor_id": record.ID,
			"reviewer":       "ops@example.com",
		},
	}

	_, err = action.Execute(ctx, executionCtx, testLogger())
	require.NoError(t, err)

	updated, err := store.RecordRepository().GetByID(ctx, "distributor", record.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", updated.Attributes["status"])
	assert.Equal(t, "ops@example.com", updated.Attributes["approved_by"])
}

func TestAction_Execute_MissingRecord(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()

	action, err := updaterecord.NewAction(map[string]any{
		"kind":       "order",
		"record_id":  "missing",
		"attributes": map[string]any{"status": "done"},
	}, store.RecordRepository())
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), models.ExecutionContext{}, testLogger())
	require.ErrorIs(t, err, persistence.ErrRecordNotFound)
}
