// LOCATION: internal/errors/errors.go
// VERSION: 2.0 - Consolidated error definitions for the entire project
//
// This file provides:
// - Sentinel errors for all error conditions
// - Error category checking functions
// - HTTP status mapping for the REST surface
// - Error wrapping utilities
// - ValidationErrors collection for per-entity checks

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ============================================================================
// Sentinel errors for common conditions
// ============================================================================

var (
	// Not found errors
	ErrNotFound      = errors.New("not found")
	ErrDriveNotFound = errors.New("drive not found")
	ErrFileNotFound  = errors.New("file not found")
	ErrAlertNotFound = errors.New("alert not found")
	ErrRunNotFound   = errors.New("run not found")

	// Validation errors - reject the offending entity, never the batch
	ErrValidation          = errors.New("validation failed")
	ErrMissingField        = errors.New("missing required field")
	ErrNegativeCounter     = errors.New("counter must not be negative")
	ErrUsedExceedsCapacity = errors.New("used bytes exceed capacity")
	ErrTimestampInFuture   = errors.New("timestamp is in the future")

	// Configuration errors - fatal to the run that needs the value
	ErrConfiguration  = errors.New("invalid configuration")
	ErrMissingPrice   = errors.New("price table has no entry for provider/tier")
	ErrThresholdOrder = errors.New("thresholds must be strictly ordered")
	ErrWeightSum      = errors.New("weights do not sum to the required total")
	ErrLifecycleOrder = errors.New("lifecycle rules must increase in age and coldness")

	// State errors
	ErrClosed         = errors.New("already closed")
	ErrAlreadyRunning = errors.New("already running")
	ErrNotRunning     = errors.New("not running")

	// Internal errors
	ErrInternal = errors.New("internal error")
	ErrDatabase = errors.New("database error")
	ErrTimeout  = errors.New("timeout")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// Join is a convenience wrapper for errors.Join
var Join = errors.Join

// New is a convenience wrapper for errors.New
var New = errors.New

// IsNotFound returns true if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDriveNotFound) ||
		errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrAlertNotFound) ||
		errors.Is(err, ErrRunNotFound)
}

// IsValidation returns true if err is a validation error.
// Validation errors reject a single entity and permit partial success.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrNegativeCounter) ||
		errors.Is(err, ErrUsedExceedsCapacity) ||
		errors.Is(err, ErrTimestampInFuture)
}

// IsConfiguration returns true if err is a configuration error.
// Configuration errors are fatal to the run that requires the value.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrMissingPrice) ||
		errors.Is(err, ErrThresholdOrder) ||
		errors.Is(err, ErrWeightSum) ||
		errors.Is(err, ErrLifecycleOrder)
}

// IsStateError returns true if err is a lifecycle state error.
func IsStateError(err error) bool {
	return errors.Is(err, ErrClosed) ||
		errors.Is(err, ErrAlreadyRunning) ||
		errors.Is(err, ErrNotRunning)
}

// IsRetriable returns true if the error is potentially retriable.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrDatabase)
}

// ============================================================================
// Error to HTTP status mapping
// ============================================================================

// HTTPStatus maps an error to the REST status code the server should return.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case IsValidation(err):
		return http.StatusBadRequest
	case IsConfiguration(err):
		return http.StatusUnprocessableEntity
	case Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewNotFound creates a not-found error with context.
func NewNotFound(entityType, identifier string) error {
	return fmt.Errorf("%s '%s': %w", entityType, identifier, ErrNotFound)
}

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrValidation)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// NewInvalidValue creates an invalid value error.
func NewInvalidValue(field string, value interface{}, reason string) error {
	return fmt.Errorf("invalid %s '%v': %s: %w", field, value, reason, ErrValidation)
}

// NewConfiguration creates a configuration error with context.
func NewConfiguration(setting, reason string) error {
	return fmt.Errorf("%s: %s: %w", setting, reason, ErrConfiguration)
}

// NewMissingPrice creates a missing price-table entry error.
func NewMissingPrice(provider, tier string) error {
	return fmt.Errorf("%s/%s: %w", provider, tier, ErrMissingPrice)
}

// ============================================================================
// Validation Errors Collection
// ============================================================================

// ValidationErrors collects multiple validation errors for one entity.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddField adds a field validation error.
func (v *ValidationErrors) AddField(field, reason string) {
	v.Errors = append(v.Errors, NewValidation(field, reason))
}

// AddMissing adds a missing field error.
func (v *ValidationErrors) AddMissing(field string) {
	v.Errors = append(v.Errors, NewMissingField(field))
}

// HasErrors returns true if there are any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Unwrap returns the collected errors for errors.Is/As support.
func (v *ValidationErrors) Unwrap() []error {
	return v.Errors
}
