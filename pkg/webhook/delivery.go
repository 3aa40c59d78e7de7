// Package webhook implements outbound delivery: fanning domain events to the
// registered webhook endpoints with signed payloads and bounded retries.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/signature"
)

const (
	defaultMaxAttempts = 3
	defaultTimeout     = 30 * time.Second

	// maxResponseBodyBytes caps the response body kept in the delivery ledger.
	maxResponseBodyBytes = 1000
)

// Deliverer fans one event out to every active webhook subscribed to it.
// Every attempt lands in the delivery ledger; per-webhook counters are
// bumped once per delivery.
type Deliverer struct {
	store  persistence.Persistence
	client *http.Client
	logger *slog.Logger

	// BackoffBase scales retry waits. Exponential backoff waits
	// BackoffBase * 2^attempt between tries.
	BackoffBase time.Duration
}

func NewDeliverer(logger *slog.Logger, store persistence.Persistence) *Deliverer {
	return &Deliverer{
		store:       store,
		client:      &http.Client{Timeout: defaultTimeout},
		logger:      logger.With("module", "webhook_deliverer"),
		BackoffBase: time.Second,
	}
}

// Trigger delivers the event to all subscribed active webhooks. Individual
// endpoint failures are recorded, not returned; only listing failures error.
func (d *Deliverer) Trigger(ctx context.Context, event string, payload map[string]any) error {
	active := true

	webhooks, err := d.store.WebhookRepository().GetAll(ctx, &active)
	if err != nil {
		return fmt.Errorf("failed to list webhooks: %w", err)
	}

	delivered := 0

	for _, webhook := range webhooks {
		if !webhook.SubscribedTo(event) {
			continue
		}

		delivered++

		d.deliver(ctx, webhook, event, payload)
	}

	d.logger.InfoContext(ctx, "Event fan-out complete", "event", event, "webhooks", delivered)

	return nil
}

// deliver runs the retry loop for one webhook and records the outcome.
func (d *Deliverer) deliver(ctx context.Context, webhook *models.Webhook, event string, payload map[string]any) {
	logger := d.logger.With("webhook_id", webhook.ID, "event", event)

	maxAttempts := webhook.Retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	body, err := json.Marshal(map[string]any{
		"event":     event,
		"data":      payload,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to marshal delivery payload", "error", err)

		return
	}

	success := false

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := d.wait(ctx, webhook.Retry.Backoff, attempt); err != nil {
				break
			}
		}

		delivery := &models.WebhookDelivery{
			WebhookID: webhook.ID,
			Event:     event,
			Payload:   payload,
			Attempt:   attempt,
		}

		responseCode, responseBody, err := d.attempt(ctx, webhook, event, body)

		delivery.ResponseCode = responseCode
		delivery.ResponseBody = responseBody

		switch {
		case err == nil:
			delivery.Status = models.DeliveryStatusSuccess
			success = true
		case attempt < maxAttempts:
			delivery.Status = models.DeliveryStatusRetrying
			delivery.Error = err.Error()
		default:
			delivery.Status = models.DeliveryStatusFailed
			delivery.Error = err.Error()
		}

		saveErr := d.store.DeliveryRepository().Save(ctx, delivery)
		if saveErr != nil {
			logger.ErrorContext(ctx, "Failed to record delivery attempt", "error", saveErr)
		}

		if success {
			break
		}

		logger.WarnContext(ctx, "Delivery attempt failed",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err,
		)
	}

	err = d.store.WebhookRepository().RecordDelivery(ctx, webhook.ID, success)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to record delivery counters", "error", err)
	}
}

// attempt performs one POST. Non-2xx responses count as failures.
func (d *Deliverer) attempt(ctx context.Context, webhook *models.Webhook, event string, body []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signature.EventHeader, event)
	req.Header.Set(signature.Header, signature.Sign(webhook.Secret, body))

	for key, value := range webhook.Headers {
		req.Header.Set(key, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, string(responseBody), fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}

	return resp.StatusCode, string(responseBody), nil
}

// wait sleeps between attempts: exponential (base * 2^attempt) unless the
// webhook asks for fixed backoff.
func (d *Deliverer) wait(ctx context.Context, backoff string, attempt int) error {
	delay := d.BackoffBase
	if backoff != "fixed" {
		delay = d.BackoffBase * (1 << attempt)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
