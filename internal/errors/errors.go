// Package errors provides shared error types for the volcano MCP server.
package errors

import (
	"errors"
	"fmt"
)

// Kinds of named entities that can be looked up through the MCP surface.
const (
	KindTool     = "tool"
	KindPrompt   = "prompt"
	KindResource = "resource"
)

// NotFoundError indicates a tool, prompt or resource name that is not served.
type NotFoundError struct {
	Kind string // "tool", "prompt", "resource"
	Name string // tool name, prompt name or resource URI
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case KindTool:
		return "Unknown tool: " + e.Name
	case KindPrompt:
		return "Prompt not found: " + e.Name
	case KindResource:
		return "Unknown schema: " + e.Name
	default:
		return "not found: " + e.Name
	}
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// UpstreamError is returned when the feature service answers with an HTTP error status.
type UpstreamError struct {
	StatusCode int
	Body       string // truncated response body
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("feature service returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("feature service returned HTTP %d: %s", e.StatusCode, e.Body)
}

// IsNotFound returns true if err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsUpstream returns true if err is or wraps an UpstreamError.
func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}
