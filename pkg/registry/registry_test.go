package registry_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowline/flowline/pkg/actions/callwebhook"
	"github.com/flowline/flowline/pkg/actions/delay"
	"github.com/flowline/flowline/pkg/actions/logaction"
	"github.com/flowline/flowline/pkg/registry"
)

func newTestRegistry() *registry.Registry {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	r := registry.NewRegistry(logger)
	r.RegisterAction(delay.NewActionFactory())
	r.RegisterAction(logaction.NewActionFactory())
	r.RegisterAction(callwebhook.NewActionFactory())

	return r
}

func TestRegistry_CreateAction(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()

	action, err := r.CreateAction("delay", map[string]any{"seconds": float64(1)})
	require.NoError(t, err)
	assert.NotNil(t, action)

	_, err = r.CreateAction("unknown_type", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistry_ValidateConfig(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()

	require.NoError(t, r.ValidateConfig("delay", map[string]any{"seconds": float64(5)}))

	err := r.ValidateConfig("delay", map[string]any{})
	require.Error(t, err)

	// Zero and over-cap durations fail at config time, matching what
	// NewAction accepts at run time.
	err = r.ValidateConfig("delay", map[string]any{"seconds": float64(0)})
	require.Error(t, err)

	err = r.ValidateConfig("delay", map[string]any{"seconds": float64(7200)})
	require.Error(t, err)

	err = r.ValidateConfig("delay", map[string]any{"seconds": float64(5), "extra": true})
	require.Error(t, err)

	err = r.ValidateConfig("call_webhook", map[string]any{"payload": map[string]any{}})
	require.Error(t, err)

	err = r.ValidateConfig("unknown_type", map[string]any{})
	require.Error(t, err)
}

func TestRegistry_AvailableActions(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()

	assert.Equal(t, []string{"call_webhook", "delay", "log"}, r.AvailableActions())
}
