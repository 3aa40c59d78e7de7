// Package delay provides the delay action: a context-aware pause between
// workflow steps.
package delay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowline/flowline/pkg/models"
)

const maxDelaySeconds = 3600

var (
	// ErrDurationRequired is returned when the configuration has no duration.
	ErrDurationRequired = errors.New("missing or invalid 'seconds' in configuration")

	// ErrDurationTooLong is returned when the delay exceeds the allowed maximum.
	ErrDurationTooLong = errors.New("delay exceeds maximum allowed duration")
)

// Action pauses the run for a fixed duration. Cancellation of the run's
// context ends the pause early with an error.
type Action struct {
	Duration time.Duration
}

// NewAction creates a delay action from configuration.
func NewAction(config map[string]any) (*Action, error) {
	seconds, ok := config["seconds"].(float64)
	if !ok || seconds <= 0 {
		return nil, ErrDurationRequired
	}

	if seconds > maxDelaySeconds {
		return nil, ErrDurationTooLong
	}

	return &Action{
		Duration: time.Duration(seconds * float64(time.Second)),
	}, nil
}

func (a *Action) Execute(ctx context.Context, _ models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", "delay")
	logger.InfoContext(ctx, "Delaying workflow", "duration", a.Duration)

	timer := time.NewTimer(a.Duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("delay interrupted: %w", ctx.Err())
	case <-timer.C:
	}

	return map[string]any{
		"delayed_ms": a.Duration.Milliseconds(),
	}, nil
}
