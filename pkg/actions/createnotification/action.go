// Package createnotification provides the create_notification action.
package createnotification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/template"
)

var (
	// ErrUserIDRequired is returned when the configuration has no user id.
	ErrUserIDRequired = errors.New("missing or invalid 'user_id' in configuration")

	// ErrTitleRequired is returned when the configuration has no title.
	ErrTitleRequired = errors.New("missing or invalid 'title' in configuration")
)

// Action creates one in-app notification.
type Action struct {
	UserID  string
	Type    string
	Title   string
	Message string

	notifications persistence.NotificationRepository
}

// NewAction creates a create_notification action from configuration.
func NewAction(config map[string]any, notifications persistence.NotificationRepository) (*Action, error) {
	userID, ok := config["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrUserIDRequired
	}

	title, ok := config["title"].(string)
	if !ok || title == "" {
		return nil, ErrTitleRequired
	}

	notificationType, _ := config["type"].(string)
	if notificationType == "" {
		notificationType = "workflow"
	}

	message, _ := config["message"].(string)

	return &Action{
		UserID:        userID,
		Type:          notificationType,
		Title:         title,
		Message:       message,
		notifications: notifications,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", "create_notification")

	userID, err := template.RenderString(a.UserID, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render user id template: %w", err)
	}

	title, err := template.RenderString(a.Title, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render title template: %w", err)
	}

	message, err := template.RenderString(a.Message, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render message template: %w", err)
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    a.Type,
		Title:   title,
		Message: message,
	}

	logger.InfoContext(ctx, "Creating notification", "user_id", userID, "type", a.Type)

	err = a.notifications.Save(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return map[string]any{
		"notification_id": notification.ID,
		"user_id":         userID,
	}, nil
}
