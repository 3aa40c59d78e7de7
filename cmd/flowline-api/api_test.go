package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowline/flowline/pkg/locker"
	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence/memory"
	"github.com/flowline/flowline/pkg/registry"
	"github.com/flowline/flowline/pkg/workflow"
)

func setupTestApp() *fiber.App {
	logger := slog.Default()
	store := memory.NewPersistence()
	reg := registry.NewRegistry(logger)

	api := NewAPI(
		logger,
		store,
		reg,
		nil,
		locker.NewMemoryLocker(),
	)

	executor := workflow.NewExecutor(logger, store, reg, nil, locker.NewMemoryLocker())
	dispatcher := workflow.NewDispatcher(logger, store, executor)

	return api.App(dispatcher)
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Flowline API", string(body))
}

func TestAPI_Liveness(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_ListWorkflows_Empty(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/workflows", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var workflows []models.Workflow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&workflows))
	assert.Empty(t, workflows)
}
