package models

import "time"

// WebhookRetry configures outbound delivery retries for one webhook.
type WebhookRetry struct {
	MaxAttempts int    `json:"max_attempts"`
	Backoff     string `json:"backoff"` // "exponential" or "fixed"
}

// Webhook is an external HTTP endpoint registered to receive outbound event
// notifications, and the shared-secret source for inbound verification.
type Webhook struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"             validate:"required,min=3"`
	URL             string            `json:"url"              validate:"required,url"`
	Events          []string          `json:"events"           validate:"required,min=1"`
	Secret          string            `json:"-"`
	Headers         map[string]string `json:"headers,omitempty"`
	Retry           WebhookRetry      `json:"retry"`
	AllowUnsigned   bool              `json:"allow_unsigned"` // Opt-out from mandatory inbound signatures
	Active          bool              `json:"active"`
	CreatedBy       string            `json:"created_by"`
	SuccessCount    int64             `json:"success_count"`
	FailureCount    int64             `json:"failure_count"`
	LastTriggeredAt *time.Time        `json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// SubscribedTo reports whether the webhook should receive the named event.
// A "*" subscription matches every event.
func (w *Webhook) SubscribedTo(event string) bool {
	for _, e := range w.Events {
		if e == event || e == "*" {
			return true
		}
	}

	return false
}

// DeliveryStatus is the outcome of one outbound delivery attempt.
type DeliveryStatus string

const (
	DeliveryStatusSuccess  DeliveryStatus = "success"
	DeliveryStatusRetrying DeliveryStatus = "retrying"
	DeliveryStatusFailed   DeliveryStatus = "failed"
)

// WebhookDelivery is one row of the outbound delivery ledger.
type WebhookDelivery struct {
	ID           string         `json:"id"`
	WebhookID    string         `json:"webhook_id"`
	Event        string         `json:"event"`
	Payload      map[string]any `json:"payload,omitempty"`
	Status       DeliveryStatus `json:"status"`
	ResponseCode int            `json:"response_code,omitempty"`
	ResponseBody string         `json:"response_body,omitempty"`
	Attempt      int            `json:"attempt"`
	Error        string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
