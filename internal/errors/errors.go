// Package errors provides centralized error definitions and error handling
// utilities for the Agora coordination engine. It defines sentinel errors for
// name-resolution failures, semantic error types for common conditions, and
// constructors with context wrapping.
//
// # Error Types
//
// Sentinel errors cover the engine's not-found conditions: unknown channels,
// distributors, aggregators, patterns, agents, tasks, and roles. These are
// returned (wrapped) by the Coordinator and Team convenience methods; the
// lower-level registry and channel lookups return (zero, false) instead and
// let the caller decide.
//
// Semantic errors represent common conditions:
//   - NotFoundError: a named resource could not be resolved
//   - ValidationError: invalid input or configuration (caller bug, fail fast)
//   - TimeoutError: an operation exceeded its deadline
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewNotFoundError("channel", "direct")
//	err := errors.NewValidationError("workflow step 2", "send_message step requires a recipient")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrChannelNotFound) { ... }
//
//	var nf *errors.NotFoundError
//	if errors.As(err, &nf) { ... }
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Name-resolution sentinel errors. The Coordinator and Team wrap these with
// the name that failed to resolve.
var (
	// ErrChannelNotFound indicates an unknown channel name.
	ErrChannelNotFound = New("channel not found")
	// ErrDistributorNotFound indicates an unknown distributor name.
	ErrDistributorNotFound = New("distributor not found")
	// ErrAggregatorNotFound indicates an unknown aggregator name.
	ErrAggregatorNotFound = New("aggregator not found")
	// ErrPatternNotFound indicates an unknown coordination pattern name.
	ErrPatternNotFound = New("pattern not found")
	// ErrAgentNotFound indicates an unknown agent ID.
	ErrAgentNotFound = New("agent not found")
	// ErrTaskNotFound indicates an unknown task ID.
	ErrTaskNotFound = New("task not found")
	// ErrRoleNotFound indicates an unknown team role name.
	ErrRoleNotFound = New("role not found")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Semantic Error Types
// -----------------------------------------------------------------------------

// NotFoundError indicates that a named resource could not be resolved.
type NotFoundError struct {
	// Resource is the kind of resource (e.g., "channel", "agent", "role").
	Resource string
	// Name is the identifier or name that was looked up.
	Name string
	// cause is the matching sentinel error, if any.
	cause error
}

// NewNotFoundError creates a NotFoundError for the given resource kind and
// name. The returned error matches the corresponding sentinel error (for
// example errors.Is(err, ErrChannelNotFound) for resource "channel").
func NewNotFoundError(resource, name string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Name:     name,
		cause:    sentinelFor(resource),
	}
}

// Error returns the error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}

// Unwrap returns the matching sentinel error, if any.
func (e *NotFoundError) Unwrap() error {
	return e.cause
}

// sentinelFor maps a resource kind to its sentinel error.
func sentinelFor(resource string) error {
	switch resource {
	case "channel":
		return ErrChannelNotFound
	case "distributor":
		return ErrDistributorNotFound
	case "aggregator":
		return ErrAggregatorNotFound
	case "pattern":
		return ErrPatternNotFound
	case "agent":
		return ErrAgentNotFound
	case "task":
		return ErrTaskNotFound
	case "role":
		return ErrRoleNotFound
	default:
		return nil
	}
}

// ValidationError indicates invalid input or configuration. This class of
// error is a caller bug, not a runtime condition to recover from; it is
// returned immediately without partial work.
type ValidationError struct {
	// Field identifies what was invalid (e.g., "workflow step 2").
	Field string
	// Reason describes why validation failed.
	Reason string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidInput so callers can classify with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// TimeoutError indicates that an operation exceeded its deadline.
type TimeoutError struct {
	// Operation describes what timed out.
	Operation string
	// Duration is how long the operation waited.
	Duration time.Duration
}

// NewTimeoutError creates a TimeoutError.
func NewTimeoutError(operation string, d time.Duration) *TimeoutError {
	return &TimeoutError{Operation: operation, Duration: d}
}

// Error returns the error message.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Operation, e.Duration)
}

// Unwrap returns ErrTimeout so callers can classify with errors.Is.
func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}
