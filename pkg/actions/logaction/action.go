// Package logaction provides the log action, mainly useful for wiring and
// debugging workflows.
package logaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/template"
)

// Action emits one structured log line from the run.
type Action struct {
	Message string
	Level   string
}

// NewAction creates a log action from configuration.
func NewAction(config map[string]any) *Action {
	message, _ := config["message"].(string)

	level, _ := config["level"].(string)
	if level == "" {
		level = "info"
	}

	return &Action{
		Message: message,
		Level:   level,
	}
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", "log")

	message, err := template.RenderString(a.Message, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render message template: %w", err)
	}

	switch a.Level {
	case "debug":
		logger.DebugContext(ctx, message)
	case "warn":
		logger.WarnContext(ctx, message)
	case "error":
		logger.ErrorContext(ctx, message)
	default:
		logger.InfoContext(ctx, message)
	}

	return map[string]any{
		"message": message,
		"level":   a.Level,
	}, nil
}
