// Package callwebhook provides the call_webhook action: a signed HTTP POST
// to an external endpoint.
package callwebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/flowline/flowline/pkg/models"
	"github.com/flowline/flowline/pkg/signature"
	"github.com/flowline/flowline/pkg/template"
)

const (
	defaultTimeoutSeconds = 30

	// maxResponseBodyBytes caps the response body kept in action output.
	maxResponseBodyBytes = 1000
)

var (
	// ErrURLRequired is returned when the configuration has no URL.
	ErrURLRequired = errors.New("missing or invalid 'url' in configuration")

	// ErrEndpointFailure is returned on non-2xx responses.
	ErrEndpointFailure = errors.New("webhook endpoint returned an error status")
)

// Action posts a JSON payload to a URL, optionally signed with a shared secret.
type Action struct {
	URL     string
	Event   string
	Payload map[string]any
	Headers map[string]string
	Secret  string
	Timeout time.Duration

	client *http.Client
}

// NewAction creates a call_webhook action from configuration.
func NewAction(config map[string]any) (*Action, error) {
	url, ok := config["url"].(string)
	if !ok || url == "" {
		return nil, ErrURLRequired
	}

	event, _ := config["event"].(string)
	secret, _ := config["secret"].(string)

	payload, _ := config["payload"].(map[string]any)

	headers := make(map[string]string)

	if headersConfig, ok := config["headers"].(map[string]any); ok {
		for k, v := range headersConfig {
			if strVal, ok := v.(string); ok {
				headers[k] = strVal
			}
		}
	}

	timeout := defaultTimeoutSeconds * time.Second
	if seconds, ok := config["timeout_seconds"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	return &Action{
		URL:     url,
		Event:   event,
		Payload: payload,
		Headers: headers,
		Secret:  secret,
		Timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Execute posts the rendered payload and returns the endpoint's response.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", "call_webhook")

	url, err := template.RenderString(a.URL, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render url template: %w", err)
	}

	payload, err := template.RenderMap(a.Payload, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render payload: %w", err)
	}

	if payload == nil {
		payload = map[string]any{}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if a.Event != "" {
		req.Header.Set(signature.EventHeader, a.Event)
	}

	if a.Secret != "" {
		req.Header.Set(signature.Header, signature.Sign(a.Secret, body))
	}

	for key, value := range a.Headers {
		rendered, err := template.RenderString(value, &executionCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to render header '%s' template: %w", key, err)
		}

		req.Header.Set(key, rendered)
	}

	logger.InfoContext(ctx, "Calling webhook", "url", url, "event", a.Event)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	result := map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(responseBody),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, fmt.Errorf("status %d: %w", resp.StatusCode, ErrEndpointFailure)
	}

	return result, nil
}
