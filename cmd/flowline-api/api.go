// Package main provides the Flowline API server implementation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/flowline/flowline/pkg/eventbus"
	"github.com/flowline/flowline/pkg/events"
	"github.com/flowline/flowline/pkg/locker"
	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/registry"
	"github.com/flowline/flowline/pkg/web"
	"github.com/flowline/flowline/pkg/webhook"
	"github.com/flowline/flowline/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	locks       locker.Locker
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
	locks locker.Locker,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		locks:       locks,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App(dispatcher *workflow.Dispatcher) *fiber.App {
	handlers := web.NewAPIHandlers(a.logger, a.persistence, dispatcher, a.registry, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowline API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.ListWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Post("/from-template", handlers.CreateWorkflowFromTemplate)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)
	w.Get("/:id/executions", handlers.ListExecutions)

	app.Get("/templates", handlers.ListTemplates)

	app.Post("/triggers/:kind", handlers.Trigger)

	wh := app.Group("/webhooks")
	wh.Get("/", handlers.ListWebhooks)
	wh.Post("/", handlers.CreateWebhook)
	wh.Get("/:id", handlers.GetWebhook)
	wh.Patch("/:id", handlers.UpdateWebhook)
	wh.Delete("/:id", handlers.DeleteWebhook)
	wh.Get("/:id/deliveries", handlers.ListDeliveries)
	wh.Post("/:id/receive", handlers.ReceiveWebhook)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(ctx context.Context, port int) error {
	executor := workflow.NewExecutor(a.logger, a.persistence, a.registry, a.eventBus, a.locks)
	dispatcher := workflow.NewDispatcher(a.logger, a.persistence, executor)
	deliverer := webhook.NewDeliverer(a.logger, a.persistence)

	// Execution lifecycle exhaust fans out to subscribed webhooks.
	err := a.eventBus.Handle(events.ExecutionFinishedEvent, func(ctx context.Context, event any) error {
		finished, ok := event.(*events.ExecutionFinished)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}

		return deliverer.Trigger(ctx, string(events.ExecutionFinishedEvent), map[string]any{
			"workflow_id":  finished.WorkflowID,
			"execution_id": finished.ExecutionID,
			"status":       finished.Status,
			"duration_ms":  finished.DurationMs,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to register delivery handler: %w", err)
	}

	// Domain events become "event" triggers; this also starts the bus
	// subscription, so it must come after every Handle registration.
	if err := dispatcher.SubscribeEvents(ctx, a.eventBus); err != nil {
		return fmt.Errorf("failed to subscribe dispatcher: %w", err)
	}

	app := a.App(dispatcher)

	return app.Listen(":" + strconv.Itoa(port))
}
