// Package protocol defines the contracts action handlers implement.
package protocol

import (
	"context"
	"log/slog"

	"github.com/flowline/flowline/pkg/models"
)

// Action is one executable workflow step. Execute returns the output exposed
// to later actions under the action's key.
type Action interface {
	Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error)
}

// ActionFactory builds actions of one type from raw configuration.
type ActionFactory interface {
	// ID returns the action type identifier used in workflow definitions.
	ID() string

	// Name returns a human-readable name for the action type.
	Name() string

	// Description returns a brief description of what the action does.
	Description() string

	// Schema returns the JSON schema describing valid configuration.
	Schema() map[string]any

	Create(config map[string]any) (Action, error)
}
