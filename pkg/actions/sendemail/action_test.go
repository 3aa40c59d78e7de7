package sendemail_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowline/flowline/pkg/actions/sendemail"
	"github.com/flowline/flowline/pkg/models"
)

type fakeMailer struct {
	sent []sendemail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg sendemail.Message) error {
	if m.err != nil {
		return m.err
	}

	m.sent = append(m.sent, msg)

	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestNewAction_Validation(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}

	_, err := sendemail.NewAction(map[string]any{"subject": "hi"}, mailer)
	require.ErrorIs(t, err, sendemail.ErrRecipientRequired)

	_, err = sendemail.NewAction(map[string]any{"to": "a@b.com"}, mailer)
	require.ErrorIs(t, err, sendemail.ErrSubjectRequired)
}

func TestAction_Execute_RendersTemplates(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}

	action, err := sendemail.NewAction(map[string]any{
		"to":      "{{.trigger_data.email}}",
		"subject": "Order {{.trigger_data.order_id}} confirmed",
		"body":    "Thanks, {{.variables.brand}} has received your order.",
	}, mailer)
	require.NoError(t, err)

	executionCtx := models.ExecutionContext{
		TriggerData: map[string]any{
			"email":    "buyer@example.com",
			"order_id": "ord-9",
		},
		Variables: map[string]any{"brand": "Acme"},
	}

	result, err := action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "buyer@example.com", mailer.sent[0].To)
	assert.Equal(t, "Order ord-9 confirmed", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Body, "Acme")

	resultMap, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, resultMap["sent"])
}

func TestAction_Execute_MailerError(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{err: errors.New("relay unavailable")}

	action, err := sendemail.NewAction(map[string]any{
		"to":      "a@b.com",
		"subject": "hi",
	}, mailer)
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), models.ExecutionContext{}, testLogger())
	require.Error(t, err)
}

func TestActionFactory(t *testing.T) {
	t.Parallel()

	factory := sendemail.NewActionFactory(&fakeMailer{})
	assert.Equal(t, "send_email", factory.ID())

	action, err := factory.Create(map[string]any{"to": "a@b.com", "subject": "hi"})
	require.NoError(t, err)
	assert.NotNil(t, action)
}
