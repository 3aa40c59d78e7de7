package logaction_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowline/flowline/pkg/actions/logaction"
	"github.com/flowline/flowline/pkg/models"
)

func TestActionFactory(t *testing.T) {
	t.Parallel()

	factory := logaction.NewActionFactory()
	assert.Equal(t, "log", factory.ID())

	action, err := factory.Create(nil)
	require.NoError(t, err)
	assert.NotNil(t, action)
}

func TestAction_Execute(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	action := logaction.NewAction(map[string]any{
		"message": "processing {{.trigger_data.order_id}}",
		"level":   "debug",
	})

	result, err := action.Execute(context.Background(), models.ExecutionContext{
		TriggerData: map[string]any{"order_id": "ord-1"},
	}, logger)
	require.NoError(t, err)

	resultMap, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "processing ord-1", resultMap["message"])
	assert.Equal(t, "debug", resultMap["level"])
}
