// Package persistence provides standardized error types for persistence operations.
package persistence

import "errors"

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrExecutionNotFound indicates an execution was not found by the given identifier.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrWebhookNotFound indicates a webhook was not found by the given identifier.
	ErrWebhookNotFound = errors.New("webhook not found")

	// ErrRecordNotFound indicates a record was not found by kind and identifier.
	ErrRecordNotFound = errors.New("record not found")

	// ErrTemplateNotFound indicates an automation template was not found by
	// the given identifier.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrExecutionImmutable indicates a write against an execution already in
	// a terminal status.
	ErrExecutionImmutable = errors.New("execution is terminal and immutable")
)

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsExecutionNotFound checks if an error indicates an execution was not found.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsWebhookNotFound checks if an error indicates a webhook was not found.
func IsWebhookNotFound(err error) bool {
	return errors.Is(err, ErrWebhookNotFound)
}

// IsRecordNotFound checks if an error indicates a record was not found.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsTemplateNotFound checks if an error indicates a template was not found.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}
