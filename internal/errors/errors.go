// Package errors provides centralized error definitions and error handling
// utilities for the uibridge codebase. It defines domain-specific errors,
// error constructors with context wrapping, and classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - ExecutionError: a dispatched command signaled failure
//   - OwnerError: errors tied to an owner's lifecycle or exclusive queue
//
// Sentinel errors represent the bridge's failure taxonomy:
//   - ErrNoOwnerContext: the calling goroutine carries no owner binding
//   - ErrOwnerGone: the owner ended before the result could be applied
//   - ErrInterrupted: a blocking wait was interrupted
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewExecutionError("greeting failed", cause).WithCommand("greeting")
//	err := errors.NewOwnerError("submit refused", errors.ErrOwnerGone).WithOwnerID(id)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrOwnerGone) { ... }
//
//	var execErr *errors.ExecutionError
//	if errors.As(err, &execErr) { ... }
//
//	if errors.IsRetryable(err) { ... }
//	if errors.IsUserFacing(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
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

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Context and lifecycle sentinel errors
var (
	// ErrNoOwnerContext indicates that the calling goroutine has no owner bound
	// to its context. This is a programming error, not a runtime condition.
	ErrNoOwnerContext = New("no owner bound to calling context")
	// ErrOwnerGone indicates that the owner ended before the delivery applied.
	ErrOwnerGone = New("owner is gone")
	// ErrOwnerDetaching indicates that the owner is tearing down.
	ErrOwnerDetaching = New("owner is detaching")
	// ErrQueueClosed indicates that the owner's exclusive queue no longer
	// accepts work.
	ErrQueueClosed = New("exclusive queue closed")
)

// Dispatch sentinel errors
var (
	// ErrInterrupted indicates that a blocking wait was interrupted before a
	// result arrived.
	ErrInterrupted = New("wait interrupted")
	// ErrBridgeClosed indicates that the bridge has been closed.
	ErrBridgeClosed = New("bridge closed")
	// ErrDeliveryCancelled indicates that a scheduled delivery was cancelled
	// before it could run.
	ErrDeliveryCancelled = New("delivery cancelled")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// BridgeError is the base interface for all uibridge errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type BridgeError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ExecutionError represents a command that signaled failure through its
// failure callback. It wraps the command's own error as the cause.
//
// Example:
//
//	err := errors.NewExecutionError("command failed", cause).WithCommand("greeting")
//	fmt.Println(err) // "execution error [command=greeting]: command failed: <cause>"
type ExecutionError struct {
	baseError
	Command string
}

// NewExecutionError creates a new ExecutionError.
func NewExecutionError(message string, cause error) *ExecutionError {
	return &ExecutionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithCommand adds the command name to the error context.
func (e *ExecutionError) WithCommand(name string) *ExecutionError {
	e.Command = name
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *ExecutionError) WithRetryable(r bool) *ExecutionError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *ExecutionError) Error() string {
	prefix := "execution error"
	if e.Command != "" {
		prefix = fmt.Sprintf("execution error [command=%s]", e.Command)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ExecutionError) Is(target error) bool {
	if _, ok := target.(*ExecutionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// OwnerError represents errors tied to an owner's lifecycle or its
// exclusive-access queue.
//
// Example:
//
//	err := errors.NewOwnerError("delivery dropped", errors.ErrOwnerGone).WithOwnerID("o-42")
//	fmt.Println(err) // "owner error [owner=o-42]: delivery dropped: owner is gone"
type OwnerError struct {
	baseError
	OwnerID string
}

// NewOwnerError creates a new OwnerError.
func NewOwnerError(message string, cause error) *OwnerError {
	return &OwnerError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithOwnerID adds the owner ID to the error context.
func (e *OwnerError) WithOwnerID(id string) *OwnerError {
	e.OwnerID = id
	return e
}

// WithSeverity sets the error severity.
func (e *OwnerError) WithSeverity(s Severity) *OwnerError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *OwnerError) Error() string {
	var parts []string
	if e.OwnerID != "" {
		parts = append(parts, fmt.Sprintf("owner=%s", e.OwnerID))
	}

	prefix := "owner error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("owner error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *OwnerError) Is(target error) bool {
	if _, ok := target.(*OwnerError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable reports whether err (or any error in its chain) is marked
// retryable. Errors that don't implement BridgeError are not retryable.
func IsRetryable(err error) bool {
	var be BridgeError
	if errors.As(err, &be) {
		return be.IsRetryable()
	}
	return false
}

// IsUserFacing reports whether err (or any error in its chain) is safe to
// display to end users. Errors that don't implement BridgeError are
// considered internal.
func IsUserFacing(err error) bool {
	var be BridgeError
	if errors.As(err, &be) {
		return be.IsUserFacing()
	}
	return false
}

// SeverityOf returns the severity of err, or SeverityError if err does not
// implement BridgeError.
func SeverityOf(err error) Severity {
	var be BridgeError
	if errors.As(err, &be) {
		return be.Severity()
	}
	return SeverityError
}
