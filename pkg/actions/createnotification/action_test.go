package createnotification_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowline/flowline/pkg/actions/createnotification"
	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestNewAction_Validation(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()

	_, err := createnotification.NewAction(map[string]any{"title": "hi"}, store.NotificationRepository())
	require.ErrorIs(t, err, createnotification.ErrUserIDRequired)

	_, err = createnotification.NewAction(map[string]any{"user_id": "u-1"}, store.NotificationRepository())
	require.ErrorIs(t, err, createnotification.ErrTitleRequired)
}

func TestAction_Execute(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	ctx := context.Background()

	action, err := createnotification.NewAction(map[string]any{
		"user_id": "{{.trigger_data.user_id}}",
		"title":   "Order {{.trigger_data.order_id}} shipped",
		"message": "Your order is on its way.",
	}, store.NotificationRepository())
	require.NoError(t, err)

	executionCtx := models.ExecutionContext{
		TriggerData: map[string]any{
			"user_id":  "user-42",
			"order_id": "ord-5",
		},
	}

	result, err := action.Execute(ctx, executionCtx, testLogger())
	require.NoError(t, err)

	resultMap, ok := result.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, resultMap["notification_id"])

	listed, err := store.NotificationRepository().ListByUser(ctx, "user-42")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Order ord-5 shipped", listed[0].Title)
	assert.Equal(t, "workflow", listed[0].Type)
	assert.False(t, listed[0].Read)
}
