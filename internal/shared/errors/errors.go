package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error types for different domains
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrorTypeInfrastructure ErrorType = "INFRASTRUCTURE_ERROR"
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION_ERROR"
	ErrorTypeAuthorization  ErrorType = "AUTHORIZATION_ERROR"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeConflict       ErrorType = "CONFLICT_ERROR"
	ErrorTypeInternal       ErrorType = "INTERNAL_ERROR"
)

// Common application errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Session and backend errors
var (
	ErrNoSession          = errors.New("no active session")
	ErrCorruptSession     = errors.New("persisted session is corrupt")
	ErrBackendUnavailable = errors.New("lms backend unavailable")
	ErrStorageUnavailable = errors.New("session storage unavailable")
)

// AppError represents a custom application error with context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	HTTPCode  int                    `json:"-"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, httpCode int) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		HTTPCode: httpCode,
		Details:  make(map[string]interface{}),
	}
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithComponent adds the component name
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// WithDetail adds a detail field
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, message, http.StatusBadRequest)
}

// NewInfrastructureError creates an infrastructure error
func NewInfrastructureError(message string) *AppError {
	return NewAppError(ErrorTypeInfrastructure, message, http.StatusBadGateway)
}

// NewAuthenticationError creates an authentication error
func NewAuthenticationError(message string) *AppError {
	return NewAppError(ErrorTypeAuthentication, message, http.StatusUnauthorized)
}

// NewAuthorizationError creates an authorization error
func NewAuthorizationError(message string) *AppError {
	return NewAppError(ErrorTypeAuthorization, message, http.StatusForbidden)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return NewAppError(ErrorTypeConflict, message, http.StatusConflict)
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, message, http.StatusInternalServerError)
}

// FromHTTPStatus classifies a non-2xx backend response.
func FromHTTPStatus(status int, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	var appErr *AppError
	switch {
	case status == http.StatusUnauthorized:
		appErr = NewAuthenticationError(message)
	case status == http.StatusForbidden:
		appErr = NewAuthorizationError(message)
	case status == http.StatusNotFound:
		appErr = NewAppError(ErrorTypeNotFound, message, http.StatusNotFound)
	case status == http.StatusConflict:
		appErr = NewConflictError(message)
	case status >= 400 && status < 500:
		appErr = NewValidationError(message)
	default:
		appErr = NewInfrastructureError(message).WithCause(ErrBackendUnavailable)
	}
	return appErr.WithDetail("status", status)
}

// ValidationError names one rejected form field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects the rejected fields of one form.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error implements the error interface
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// NewValidationErrors creates a new validation errors instance
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]ValidationError, 0),
	}
}

// Add records a rejected field
func (ve *ValidationErrors) Add(field, message string) *ValidationErrors {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
	return ve
}

// Require records field as missing when value is blank.
func (ve *ValidationErrors) Require(field, value string) *ValidationErrors {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
	}
	return ve
}

// HasErrors returns true if there are validation errors
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError converts the collected fields into a validation AppError shown
// under message. It returns nil when nothing was rejected.
func (ve *ValidationErrors) ToAppError(message string) *AppError {
	if !ve.HasErrors() {
		return nil
	}
	return NewValidationError(message).
		WithCause(fmt.Errorf("%w: %w", ErrInvalidInput, ve)).
		WithDetail(validationDetailKey, ve.Errors)
}

const validationDetailKey = "validation_errors"

// InvalidFields returns the rejected fields carried by err, if any.
func InvalidFields(err error) []ValidationError {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return nil
	}
	fields, _ := appErr.Details[validationDetailKey].([]ValidationError)
	return fields
}

func typeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	if t, ok := typeOf(err); ok {
		return t == ErrorTypeNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	if t, ok := typeOf(err); ok {
		return t == ErrorTypeValidation
	}
	return errors.Is(err, ErrInvalidInput)
}

// IsAuthentication checks if an error is an authentication error
func IsAuthentication(err error) bool {
	if t, ok := typeOf(err); ok {
		return t == ErrorTypeAuthentication
	}
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrInvalidCredentials)
}

// IsAuthorization checks if an error is an authorization error
func IsAuthorization(err error) bool {
	if t, ok := typeOf(err); ok {
		return t == ErrorTypeAuthorization
	}
	return errors.Is(err, ErrForbidden)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	if t, ok := typeOf(err); ok {
		return t == ErrorTypeConflict
	}
	return false
}

// IsInfrastructure checks if an error comes from an unreachable or failing dependency
func IsInfrastructure(err error) bool {
	if t, ok := typeOf(err); ok {
		return t == ErrorTypeInfrastructure
	}
	return errors.Is(err, ErrBackendUnavailable) || errors.Is(err, ErrStorageUnavailable)
}

// HTTPStatus returns the status an error should be answered with.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPCode != 0 {
		return appErr.HTTPCode
	}
	return http.StatusInternalServerError
}
