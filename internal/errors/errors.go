// Package errors provides the categorized error taxonomy for the refresh
// coordination layer and its API surface.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/seo-dashboard/internal/types"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryUserInput represents user input errors (4xx)
	CategoryUserInput ErrorCategory = "user_input"
	// CategorySystem represents system errors (5xx)
	CategorySystem ErrorCategory = "system"
	// CategoryStaleCheck represents freshness lookup failures against the store
	CategoryStaleCheck ErrorCategory = "stale_check"
	// CategoryProvider represents external data provider failures
	CategoryProvider ErrorCategory = "provider"
	// CategoryPersist represents failures writing normalized provider data
	CategoryPersist ErrorCategory = "persist"
	// CategoryNotFound represents not found errors
	CategoryNotFound ErrorCategory = "not_found"
	// CategoryValidation represents validation errors
	CategoryValidation ErrorCategory = "validation"
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// ToServiceError converts to a ServiceError
func (e *CategorizedError) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// CategoryOf returns the category of err if it is categorized, or CategorySystem
func CategoryOf(err error) ErrorCategory {
	var ce *CategorizedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return CategorySystem
}

// Refresh coordination errors

// NewStaleCheckError reports that the persistent store could not be queried
// for freshness. No refresh is attempted on this error: a billable provider
// call is never spent when staleness is unknown.
func NewStaleCheckError(resource string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryStaleCheck,
		StatusCode: http.StatusServiceUnavailable,
		Code:       "STALE_CHECK_FAILED",
		Message:    fmt.Sprintf("could not determine freshness for %s", resource),
		Cause:      cause,
		Details: map[string]interface{}{
			"resource": resource,
		},
	}
}

// NewProviderFetchError reports a failed external provider call. The pending
// lease for the key fails and prior persisted data is left untouched.
func NewProviderFetchError(provider string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryProvider,
		StatusCode: http.StatusBadGateway,
		Code:       "PROVIDER_FETCH_FAILED",
		Message:    fmt.Sprintf("data provider call failed: %s", provider),
		Cause:      cause,
		Details: map[string]interface{}{
			"provider": provider,
		},
	}
}

// NewProviderTimeoutError reports a provider call that exceeded its bounded timeout
func NewProviderTimeoutError(provider string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryProvider,
		StatusCode: http.StatusGatewayTimeout,
		Code:       "PROVIDER_TIMEOUT",
		Message:    fmt.Sprintf("data provider timeout: %s", provider),
		Details: map[string]interface{}{
			"provider": provider,
		},
	}
}

// NewPersistError reports that normalized provider data could not be written.
// The operation is failed even when the provider call succeeded; there is no
// automatic retry.
func NewPersistError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryPersist,
		StatusCode: http.StatusInternalServerError,
		Code:       "PERSIST_FAILED",
		Message:    fmt.Sprintf("failed to persist refreshed data during %s", operation),
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// User input errors (4xx)

// NewInvalidParameterError creates an invalid parameter error
func NewInvalidParameterError(param string, reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       "INVALID_PARAMETER",
		Message:    fmt.Sprintf("invalid parameter '%s': %s", param, reason),
		Details: map[string]interface{}{
			"parameter": param,
			"reason":    reason,
		},
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, id string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryNotFound,
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found: %s", resource, id),
		Details: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

// System errors (5xx)

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Cause:      cause,
	}
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       "DATABASE_ERROR",
		Message:    fmt.Sprintf("database error during %s", operation),
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}
