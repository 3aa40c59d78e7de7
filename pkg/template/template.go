// Package template provides templating functionality for dynamic action configuration.
package template

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/flowline/flowline/pkg/models"
)

// RenderWithContext renders the input against the run's visible data: trigger
// payload, workflow variables, and previously completed action outputs.
func RenderWithContext(input string, executionCtx *models.ExecutionContext) (any, error) {
	data := map[string]any{
		"action_results": executionCtx.ActionResults,
		"variables":      executionCtx.Variables,
		"trigger_data":   executionCtx.TriggerData,
		"env":            getEnvVars(),
		"execution": map[string]any{
			"id":          executionCtx.ID,
			"workflow_id": executionCtx.WorkflowID,
			"trigger":     string(executionCtx.Trigger),
		},
	}

	return Render(input, data)
}

// Render executes the template string against data and coerces the result
// back into JSON, number, or boolean when the rendered text parses as one.
func Render(templateStr string, data any) (any, error) {
	tmpl, err := template.
		New("transform").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
		}).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return nil, fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	result := strings.TrimSpace(buf.String())

	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any

		err := json.Unmarshal([]byte(result), &jsonResult)
		if err == nil {
			return jsonResult, nil
		}

		return nil, fmt.Errorf("failed to parse json '%s': %w", templateStr, err)
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		return num, nil
	}

	if b, err := strconv.ParseBool(result); err == nil {
		return b, nil
	}

	return result, nil
}

// RenderString renders the input and returns it as a string regardless of
// what the rendered text parses as.
func RenderString(input string, executionCtx *models.ExecutionContext) (string, error) {
	rendered, err := RenderWithContext(input, executionCtx)
	if err != nil {
		return "", err
	}

	switch v := rendered.(type) {
	case string:
		return v, nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode rendered value: %w", err)
		}

		return string(encoded), nil
	}
}

// RenderMap renders every string value in the map, recursing into nested maps.
func RenderMap(input map[string]any, executionCtx *models.ExecutionContext) (map[string]any, error) {
	if input == nil {
		return nil, nil
	}

	rendered := make(map[string]any, len(input))

	for key, value := range input {
		switch v := value.(type) {
		case string:
			out, err := RenderWithContext(v, executionCtx)
			if err != nil {
				return nil, err
			}

			rendered[key] = out
		case map[string]any:
			out, err := RenderMap(v, executionCtx)
			if err != nil {
				return nil, err
			}

			rendered[key] = out
		default:
			rendered[key] = value
		}
	}

	return rendered, nil
}

// getEnvVars returns environment variables as a map.
func getEnvVars() map[string]any {
	envMap := make(map[string]any)

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	return envMap
}
