// Package sendemail provides the send_email action.
package sendemail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/template"
)

var (
	// ErrRecipientRequired is returned when the configuration has no recipient.
	ErrRecipientRequired = errors.New("missing or invalid 'to' in configuration")

	// ErrSubjectRequired is returned when the configuration has no subject.
	ErrSubjectRequired = errors.New("missing or invalid 'subject' in configuration")
)

// Action sends an email through the configured mailer. Recipient, subject,
// and body support templating.
type Action struct {
	To      string
	Subject string
	Body    string

	mailer Mailer
}

// NewAction creates a send_email action from configuration.
func NewAction(config map[string]any, mailer Mailer) (*Action, error) {
	to, ok := config["to"].(string)
	if !ok || to == "" {
		return nil, ErrRecipientRequired
	}

	subject, ok := config["subject"].(string)
	if !ok || subject == "" {
		return nil, ErrSubjectRequired
	}

	body, _ := config["body"].(string)

	return &Action{
		To:      to,
		Subject: subject,
		Body:    body,
		mailer:  mailer,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", "send_email")

	to, err := template.RenderString(a.To, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render recipient template: %w", err)
	}

	subject, err := template.RenderString(a.Subject, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render subject template: %w", err)
	}

	body, err := template.RenderString(a.Body, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render body template: %w", err)
	}

	logger.InfoContext(ctx, "Sending email", "to", to, "subject", subject)

	err = a.mailer.Send(ctx, Message{To: to, Subject: subject, Body: body})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"to":      to,
		"subject": subject,
		"sent":    true,
	}, nil
}
