package operations

import (
	"fmt"
)

// ErrorType represents the type of run error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeExecution  ErrorType = "execution"
	ErrorTypeCancelled  ErrorType = "cancelled"
)

// RunError represents a step-scoped pipeline error
type RunError struct {
	Type    ErrorType `json:"type"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *RunError) Error() string {
	if e == nil {
		return "unknown run error"
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError creates a new validation error for a step
func NewValidationError(step, message string) *RunError {
	return &RunError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Message: message,
	}
}

// NewExecutionError wraps a step failure
func NewExecutionError(step string, cause error) *RunError {
	return &RunError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// NewCancelledError reports a run aborted by context cancellation
func NewCancelledError(step string) *RunError {
	return &RunError{
		Type:    ErrorTypeCancelled,
		Step:    step,
		Message: "run cancelled",
	}
}
