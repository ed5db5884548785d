package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMalformedInput  ErrorType = "MALFORMED_INPUT"
	ErrTypeInvalidStrategy ErrorType = "INVALID_STRATEGY"
	ErrTypeValidation      ErrorType = "VALIDATION"
	ErrTypeNotFound        ErrorType = "NOT_FOUND"
	ErrTypeStorage         ErrorType = "STORAGE"
	ErrTypeConfig          ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewMalformedInputError creates an error for CSV input that cannot be
// parsed into a table (missing header, ragged rows, invalid quoting).
func NewMalformedInputError(message string, cause error) *AppError {
	return NewAppError(ErrTypeMalformedInput, message, cause)
}

// NewInvalidStrategyError creates an error for an unrecognized fill strategy
func NewInvalidStrategyError(strategy string) *AppError {
	return NewAppError(ErrTypeInvalidStrategy,
		fmt.Sprintf("unknown fill strategy %q", strategy), nil).
		WithContext("strategy", strategy)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err is (or wraps) an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsMalformedInput reports whether err is a malformed-input error
func IsMalformedInput(err error) bool {
	return IsType(err, ErrTypeMalformedInput)
}

// IsInvalidStrategy reports whether err is an invalid-strategy error
func IsInvalidStrategy(err error) bool {
	return IsType(err, ErrTypeInvalidStrategy)
}
