package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/registry"
	"github.com/flowline/flowline/pkg/signature"
	"github.com/flowline/flowline/pkg/workflow"
)

// APIHandlers contains the HTTP handlers for the workflow API.
type APIHandlers struct {
	store      persistence.Persistence
	dispatcher *workflow.Dispatcher
	registry   *registry.Registry
	validator  *validator.Validate
	logger     *slog.Logger
}

func NewAPIHandlers(
	logger *slog.Logger,
	store persistence.Persistence,
	dispatcher *workflow.Dispatcher,
	reg *registry.Registry,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		store:      store,
		dispatcher: dispatcher,
		registry:   reg,
		validator:  validate,
		logger:     logger.With("module", "api"),
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Flowline API is healthy"
	httpStatus := http.StatusOK

	persistenceCheck := "ok"
	if err := h.store.HealthCheck(c.Context()); err != nil {
		persistenceCheck = err.Error()
		status = "unhealthy"
		message = "Flowline API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"persistence": persistenceCheck,
			"registry":    h.registry.AvailableActions(),
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	filter := persistence.WorkflowFilter{
		CreatedBy: c.Query("created_by"),
	}

	if activeStr := c.Query("active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			return badRequest(c, "Invalid active filter")
		}

		filter.Active = &active
	}

	workflows, err := h.store.WorkflowRepository().GetAll(c.Context(), filter)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	wf := &models.Workflow{
		Name:          req.Name,
		Description:   req.Description,
		Trigger:       req.Trigger,
		TriggerConfig: req.TriggerConfig,
		Actions:       req.Actions,
		Variables:     req.Variables,
		Active:        active,
		Exclusive:     req.Exclusive,
		CreatedBy:     req.CreatedBy,
	}

	if err := wf.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.validateActionConfigs(wf.Actions); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.store.WorkflowRepository().Save(c.Context(), wf); err != nil {
		return handleStoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(wf)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.store.WorkflowRepository().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.store.WorkflowRepository().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.TriggerConfig != nil {
		existing.TriggerConfig = req.TriggerConfig
	}

	if req.Actions != nil {
		existing.Actions = req.Actions
	}

	if req.Variables != nil {
		existing.Variables = req.Variables
	}

	if req.Active != nil {
		existing.Active = *req.Active
	}

	if req.Exclusive != nil {
		existing.Exclusive = *req.Exclusive
	}

	if err := existing.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.validateActionConfigs(existing.Actions); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.store.WorkflowRepository().Save(c.Context(), existing); err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(existing)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.store.WorkflowRepository().Delete(c.Context(), id); err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ExecuteWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	executedBy := req.ExecutedBy
	if executedBy == "" {
		executedBy = "api"
	}

	execution, err := h.dispatcher.ExecuteWorkflow(
		c.Context(), id, models.TriggerKindManual, req.TriggerData, executedBy)
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrWorkflowInactive):
			return conflict(c, "Workflow is not active")
		case errors.Is(err, workflow.ErrExecutionInFlight):
			return conflict(c, "Workflow already has an execution in flight")
		default:
			return handleStoreError(c, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(execution)
}

func (h *APIHandlers) ListExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if _, err := h.store.WorkflowRepository().GetByID(c.Context(), id); err != nil {
		return handleStoreError(c, err)
	}

	executions, err := h.store.ExecutionRepository().ListByWorkflow(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(executions)
}

// Trigger is the ingress for external trigger sources. Manual runs go through
// the execute endpoint and webhook payloads through the receive endpoint, so
// only schedule and event triggers are accepted here.
func (h *APIHandlers) Trigger(c fiber.Ctx) error {
	kind := models.TriggerKind(c.Params("kind"))
	if kind != models.TriggerKindSchedule && kind != models.TriggerKindEvent {
		return badRequest(c, "Trigger kind must be 'schedule' or 'event'")
	}

	var req TriggerRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	executedBy := req.ExecutedBy
	if executedBy == "" {
		executedBy = string(kind)
	}

	executions, err := h.dispatcher.Dispatch(c.Context(), kind, req.Data, executedBy)
	if err != nil {
		if errors.Is(err, models.ErrInvalidTriggerKind) {
			return badRequest(c, err.Error())
		}

		return handleStoreError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(executions)
}

func (h *APIHandlers) ListTemplates(c fiber.Ctx) error {
	filter := persistence.TemplateFilter{
		Category:   c.Query("category"),
		Difficulty: models.TemplateDifficulty(c.Query("difficulty")),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return badRequest(c, "Invalid limit")
		}

		filter.Limit = limit
	}

	templates, err := h.store.TemplateRepository().List(c.Context(), filter)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(templates)
}

// CreateWorkflowFromTemplate stamps a workflow out of a cataloged template.
// The new workflow starts inactive so the caller can finish configuring it
// before the first run.
func (h *APIHandlers) CreateWorkflowFromTemplate(c fiber.Ctx) error {
	var req CreateFromTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	template, err := h.store.TemplateRepository().GetByID(c.Context(), req.TemplateID)
	if err != nil {
		return handleStoreError(c, err)
	}

	triggerConfig := template.Workflow.TriggerConfig
	if req.TriggerConfig != nil {
		triggerConfig = req.TriggerConfig
	}

	variables := template.Workflow.Variables
	if req.Variables != nil {
		variables = req.Variables
	}

	wf := &models.Workflow{
		Name:          req.Name,
		Description:   template.Description,
		Trigger:       template.Workflow.Trigger,
		TriggerConfig: triggerConfig,
		Actions:       template.Workflow.Actions,
		Variables:     variables,
		Active:        false,
		CreatedBy:     req.CreatedBy,
	}

	if err := wf.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.validateActionConfigs(wf.Actions); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.store.WorkflowRepository().Save(c.Context(), wf); err != nil {
		return handleStoreError(c, err)
	}

	if err := h.store.TemplateRepository().RecordUse(c.Context(), template.ID); err != nil {
		h.logger.ErrorContext(c.Context(), "Failed to record template use",
			"template_id", template.ID,
			"error", err,
		)
	}

	return c.Status(fiber.StatusCreated).JSON(wf)
}

func (h *APIHandlers) ListWebhooks(c fiber.Ctx) error {
	var active *bool

	if activeStr := c.Query("active"); activeStr != "" {
		parsed, err := strconv.ParseBool(activeStr)
		if err != nil {
			return badRequest(c, "Invalid active filter")
		}

		active = &parsed
	}

	webhooks, err := h.store.WebhookRepository().GetAll(c.Context(), active)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(webhooks)
}

func (h *APIHandlers) CreateWebhook(c fiber.Ctx) error {
	var req CreateWebhookRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	secret, err := signature.NewSecret()
	if err != nil {
		return internalError(c, err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	hook := &models.Webhook{
		Name:          req.Name,
		URL:           req.URL,
		Events:        req.Events,
		Secret:        secret,
		Headers:       req.Headers,
		Retry:         req.Retry,
		AllowUnsigned: req.AllowUnsigned,
		Active:        active,
		CreatedBy:     req.CreatedBy,
	}

	if hook.AllowUnsigned {
		h.logger.WarnContext(c.Context(), "Webhook created with unsigned payloads allowed",
			"webhook_name", hook.Name,
			"created_by", hook.CreatedBy,
		)
	}

	if err := h.store.WebhookRepository().Save(c.Context(), hook); err != nil {
		return handleStoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(hook)
}

func (h *APIHandlers) GetWebhook(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Webhook ID is required")
	}

	hook, err := h.store.WebhookRepository().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(hook)
}

func (h *APIHandlers) UpdateWebhook(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Webhook ID is required")
	}

	var req UpdateWebhookRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.store.WebhookRepository().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.URL != nil {
		existing.URL = *req.URL
	}

	if req.Events != nil {
		existing.Events = req.Events
	}

	if req.Headers != nil {
		existing.Headers = req.Headers
	}

	if req.Retry != nil {
		existing.Retry = *req.Retry
	}

	if req.AllowUnsigned != nil {
		existing.AllowUnsigned = *req.AllowUnsigned

		if existing.AllowUnsigned {
			h.logger.WarnContext(c.Context(), "Webhook updated to allow unsigned payloads",
				"webhook_id", existing.ID,
			)
		}
	}

	if req.Active != nil {
		existing.Active = *req.Active
	}

	if err := h.store.WebhookRepository().Save(c.Context(), existing); err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(existing)
}

func (h *APIHandlers) DeleteWebhook(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Webhook ID is required")
	}

	if err := h.store.WebhookRepository().Delete(c.Context(), id); err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ListDeliveries(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Webhook ID is required")
	}

	if _, err := h.store.WebhookRepository().GetByID(c.Context(), id); err != nil {
		return handleStoreError(c, err)
	}

	deliveries, err := h.store.DeliveryRepository().ListByWebhook(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(deliveries)
}

// ReceiveWebhook verifies an inbound payload against the webhook's shared
// secret before dispatching it. Verification runs on the raw request body;
// the payload is only parsed after the signature is accepted.
func (h *APIHandlers) ReceiveWebhook(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Webhook ID is required")
	}

	hook, err := h.store.WebhookRepository().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	if !hook.Active {
		return notFound(c, "Webhook not found")
	}

	body := c.Body()

	provided := c.Get(signature.Header)
	if provided == "" {
		if !hook.AllowUnsigned {
			return unauthorized(c, "Missing payload signature")
		}

		h.logger.WarnContext(c.Context(), "Accepted unsigned webhook payload",
			"webhook_id", hook.ID,
		)
	} else if !signature.Verify(hook.Secret, body, provided) {
		return unauthorized(c, "Invalid payload signature")
	}

	var payload map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return badRequest(c, "Invalid JSON payload")
		}
	}

	triggerData := map[string]any{
		"webhook_id": hook.ID,
		"event":      c.Get(signature.EventHeader),
		"payload":    payload,
	}

	executions, err := h.dispatcher.Dispatch(
		c.Context(), models.TriggerKindWebhook, triggerData, "webhook:"+hook.ID)
	if err != nil {
		return handleStoreError(c, err)
	}

	response := ReceiveResponse{
		Received:   true,
		Executions: make([]string, 0, len(executions)),
	}
	for _, execution := range executions {
		response.Executions = append(response.Executions, execution.ID)
	}

	return c.JSON(response)
}

func (h *APIHandlers) validateActionConfigs(actions []models.ActionItem) error {
	for _, action := range actions {
		if err := h.registry.ValidateConfig(action.Type, action.Parameters); err != nil {
			return err
		}
	}

	return nil
}
