// Package web provides HTTP request and response types for the workflow API.
package web

import "github.com/flowline/flowline/pkg/models"

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name          string              `json:"name"                     validate:"required,min=3"`
	Description   string              `json:"description"`
	Trigger       models.TriggerKind  `json:"trigger"                  validate:"required"`
	TriggerConfig map[string]any      `json:"trigger_config,omitempty"`
	Actions       []models.ActionItem `json:"actions"                  validate:"required,min=1,dive"`
	Variables     map[string]any      `json:"variables,omitempty"`
	Active        *bool               `json:"active,omitempty"`
	Exclusive     bool                `json:"exclusive"`
	CreatedBy     string              `json:"created_by"               validate:"required"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// workflow. All fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Name          *string             `json:"name,omitempty"           validate:"omitempty,min=3"`
	Description   *string             `json:"description,omitempty"`
	TriggerConfig map[string]any      `json:"trigger_config,omitempty"`
	Actions       []models.ActionItem `json:"actions,omitempty"        validate:"omitempty,min=1,dive"`
	Variables     map[string]any      `json:"variables,omitempty"`
	Active        *bool               `json:"active,omitempty"`
	Exclusive     *bool               `json:"exclusive,omitempty"`
}

// ExecuteWorkflowRequest represents the request body for manual execution.
type ExecuteWorkflowRequest struct {
	TriggerData map[string]any `json:"trigger_data,omitempty"`
	ExecutedBy  string         `json:"executed_by,omitempty"`
}

// TriggerRequest represents the request body for the dispatcher ingress.
type TriggerRequest struct {
	Data       map[string]any `json:"data,omitempty"`
	ExecutedBy string         `json:"executed_by,omitempty"`
}

// CreateWebhookRequest represents the request body for registering a webhook.
type CreateWebhookRequest struct {
	Name          string              `json:"name"                validate:"required,min=3"`
	URL           string              `json:"url"                 validate:"required,url"`
	Events        []string            `json:"events"              validate:"required,min=1"`
	Headers       map[string]string   `json:"headers,omitempty"`
	Retry         models.WebhookRetry `json:"retry"`
	AllowUnsigned bool                `json:"allow_unsigned"`
	Active        *bool               `json:"active,omitempty"`
	CreatedBy     string              `json:"created_by"          validate:"required"`
}

// UpdateWebhookRequest represents the request body for updating a webhook.
type UpdateWebhookRequest struct {
	Name          *string              `json:"name,omitempty"           validate:"omitempty,min=3"`
	URL           *string              `json:"url,omitempty"            validate:"omitempty,url"`
	Events        []string             `json:"events,omitempty"         validate:"omitempty,min=1"`
	Headers       map[string]string    `json:"headers,omitempty"`
	Retry         *models.WebhookRetry `json:"retry,omitempty"`
	AllowUnsigned *bool                `json:"allow_unsigned,omitempty"`
	Active        *bool                `json:"active,omitempty"`
}

// CreateFromTemplateRequest represents the request body for stamping a
// workflow out of an automation template.
type CreateFromTemplateRequest struct {
	TemplateID    string         `json:"template_id"              validate:"required"`
	Name          string         `json:"name"                     validate:"required,min=3"`
	TriggerConfig map[string]any `json:"trigger_config,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	CreatedBy     string         `json:"created_by"               validate:"required"`
}

// ReceiveResponse acknowledges a verified inbound webhook.
type ReceiveResponse struct {
	Received   bool     `json:"received"`
	Executions []string `json:"executions"`
}
