// Package errors provides the error taxonomy of the task client.
//
// Every failure a caller can observe is a distinct type carrying its
// payload, so callers match on the variant instead of parsing messages:
//
//   - DispatchError: a start/stop/list/query call to the task server failed
//   - UnknownTaskError: a waited task never appeared in the status store
//   - TaskFailedError: a waited task finished with a failure status
//   - ConditionTerminatedError: a caller condition cut the wait short
//   - AbortedError: the wait was abandoned because the host is shutting down
//
// Semantic errors for local misuse are also provided:
//   - NotFoundError: unknown task definition and similar lookups
//   - ValidationError: invalid arguments
//
// # Usage
//
//	err := c.Wait(ctx, id)
//
//	var failed *errors.TaskFailedError
//	switch {
//	case errors.As(err, &failed):
//	    log.Printf("task %d failed with %s", failed.TaskID, failed.Status)
//	case errors.Is(err, errors.ErrConditionTerminated):
//	    // react to the condition
//	case errors.Is(err, errors.ErrAbortedByShutdown):
//	    return err
//	}
//
// No error in this package is retried by the client itself. [IsRetryable]
// only classifies, it is up to the caller to act on it.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/taskclient/internal/condition"
	"github.com/Iron-Ham/taskclient/internal/lifecycle"
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
	// SeverityInfo is for outcomes reported as errors that are not problems,
	// such as a wait stopped by a caller condition.
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

// Wait and dispatch sentinels. Every typed error below matches exactly one
// of them through errors.Is.
var (
	// ErrDispatch indicates a call to the task server failed.
	ErrDispatch = New("task server call failed")
	// ErrUnknownTask indicates a task id never appeared in the status store.
	ErrUnknownTask = New("task did not appear in task status")
	// ErrTaskFailed indicates a task finished with a failure status.
	ErrTaskFailed = New("task failed")
	// ErrConditionTerminated indicates a wait was stopped by a condition.
	ErrConditionTerminated = New("terminated on condition")
	// ErrAbortedByShutdown indicates the host is shutting down.
	ErrAbortedByShutdown = New("aborting due to shutdown")
)

// General sentinel errors
var (
	// ErrNotFound indicates a lookup found nothing.
	ErrNotFound = New("not found")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// ClientError is implemented by every error type in this package.
type ClientError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the operation may succeed when the caller
	// tries again.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to an operator.
	IsUserFacing() bool

	// Summary returns the error's own message without its cause.
	Summary() string
}

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

// Is checks if the cause matches the target.
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

// Summary returns the message without the wrapped cause.
func (e *baseError) Summary() string {
	return e.message
}

// -----------------------------------------------------------------------------
// Dispatch Errors
// -----------------------------------------------------------------------------

// DispatchError represents a failed call to the task server.
//
// Example:
//
//	err := errors.NewDispatchError("start", rpcErr).WithTaskName("GoTo")
//	fmt.Println(err) // "dispatch error [op=start, task=GoTo]: task server call failed: connection refused"
type DispatchError struct {
	baseError
	Op       string
	TaskID   int64
	TaskName string
	hasID    bool
}

// NewDispatchError creates a DispatchError for operation op.
func NewDispatchError(op string, cause error) *DispatchError {
	return &DispatchError{
		baseError: baseError{
			message:    ErrDispatch.Error(),
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
		Op: op,
	}
}

// WithTaskID adds the task id the call targeted.
func (e *DispatchError) WithTaskID(id int64) *DispatchError {
	e.TaskID = id
	e.hasID = true
	return e
}

// WithTaskName adds the task definition name the call targeted.
func (e *DispatchError) WithTaskName(name string) *DispatchError {
	e.TaskName = name
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *DispatchError) WithRetryable(r bool) *DispatchError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *DispatchError) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.hasID {
		parts = append(parts, fmt.Sprintf("id=%d", e.TaskID))
	}
	if e.TaskName != "" {
		parts = append(parts, fmt.Sprintf("task=%s", e.TaskName))
	}

	prefix := "dispatch error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("dispatch error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *DispatchError) Is(target error) bool {
	if _, ok := target.(*DispatchError); ok {
		return true
	}
	if target == ErrDispatch {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Wait Errors
// -----------------------------------------------------------------------------

// UnknownTaskError reports a task that never showed up in the status store
// within the grace period. It usually means the start failed or the id is
// wrong.
type UnknownTaskError struct {
	baseError
	TaskID int64
	Grace  time.Duration
}

// NewUnknownTaskError creates an UnknownTaskError.
func NewUnknownTaskError(id int64, grace time.Duration) *UnknownTaskError {
	return &UnknownTaskError{
		baseError: baseError{
			message:    ErrUnknownTask.Error(),
			severity:   SeverityError,
			userFacing: true,
		},
		TaskID: id,
		Grace:  grace,
	}
}

// Error returns the formatted error message.
func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("task %d did not appear in task status within %s", e.TaskID, e.Grace)
}

// Is checks if this error matches the target.
func (e *UnknownTaskError) Is(target error) bool {
	if _, ok := target.(*UnknownTaskError); ok {
		return true
	}
	return target == ErrUnknownTask
}

// TaskFailedError reports a task that finished with a status past
// TERMINATED.
type TaskFailedError struct {
	baseError
	TaskID  int64
	Status  lifecycle.Status
	Message string
}

// NewTaskFailedError creates a TaskFailedError. message is the server's
// diagnostic string and may be empty.
func NewTaskFailedError(id int64, st lifecycle.Status, message string) *TaskFailedError {
	return &TaskFailedError{
		baseError: baseError{
			message:    ErrTaskFailed.Error(),
			severity:   SeverityError,
			userFacing: true,
		},
		TaskID:  id,
		Status:  st,
		Message: message,
	}
}

// StatusName returns the human-readable status name.
func (e *TaskFailedError) StatusName() string {
	return e.Status.String()
}

// Error returns the formatted error message.
func (e *TaskFailedError) Error() string {
	base := fmt.Sprintf("task %d failed: %s", e.TaskID, e.Status)
	if e.Message != "" {
		return fmt.Sprintf("%s (%s)", base, e.Message)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TaskFailedError) Is(target error) bool {
	if _, ok := target.(*TaskFailedError); ok {
		return true
	}
	return target == ErrTaskFailed
}

// ConditionTerminatedError reports a wait stopped because at least one
// caller condition became true. Conditions holds those that were true at
// that instant, in the order they were added.
type ConditionTerminatedError struct {
	baseError
	TaskIDs    []int64
	Conditions []condition.Condition
}

// NewConditionTerminatedError creates a ConditionTerminatedError.
func NewConditionTerminatedError(ids []int64, verified []condition.Condition) *ConditionTerminatedError {
	return &ConditionTerminatedError{
		baseError: baseError{
			message:    ErrConditionTerminated.Error(),
			severity:   SeverityInfo,
			userFacing: true,
		},
		TaskIDs:    ids,
		Conditions: verified,
	}
}

// ConditionNames returns the names of the verified conditions.
func (e *ConditionTerminatedError) ConditionNames() []string {
	return condition.Names(e.Conditions)
}

// Error returns the formatted error message.
func (e *ConditionTerminatedError) Error() string {
	ids := make([]string, len(e.TaskIDs))
	for i, id := range e.TaskIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("task %s terminated on condition [%s]",
		strings.Join(ids, ","), strings.Join(e.ConditionNames(), "; "))
}

// Is checks if this error matches the target.
func (e *ConditionTerminatedError) Is(target error) bool {
	if _, ok := target.(*ConditionTerminatedError); ok {
		return true
	}
	return target == ErrConditionTerminated
}

// AbortedError reports a wait abandoned because the host is shutting down.
// The cause is the context error that signalled it.
type AbortedError struct {
	baseError
}

// NewAbortedError creates an AbortedError.
func NewAbortedError(cause error) *AbortedError {
	return &AbortedError{
		baseError: baseError{
			message:  ErrAbortedByShutdown.Error(),
			cause:    cause,
			severity: SeverityWarning,
		},
	}
}

// Is checks if this error matches the target.
func (e *AbortedError) Is(target error) bool {
	if _, ok := target.(*AbortedError); ok {
		return true
	}
	if target == ErrAbortedByShutdown {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("task definition", "GoTo")
//	fmt.Println(err) // "task definition not found: GoTo"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s not found", resourceType),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.ResourceID != "" {
		return fmt.Sprintf("%s: %s", e.message, e.ResourceID)
	}
	return e.message
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return target == ErrNotFound
}

// ValidationError represents invalid input.
//
// Example:
//
//	err := errors.NewValidationError("no task ids to wait for").WithField("ids")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return target == ErrInvalidInput
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// the caller may choose to retry. Only dispatch errors qualify by default.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var clientErr ClientError
	if As(err, &clientErr) {
		return clientErr.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is safe to display to an
// operator.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var clientErr ClientError
	if As(err, &clientErr) {
		return clientErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement ClientError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var clientErr ClientError
	if As(err, &clientErr) {
		return clientErr.Severity()
	}
	return SeverityError
}

// Summary returns the message to show an operator for an error whose
// details are not user-facing. A ClientError at the top of the chain
// contributes its own message without the cause; other errors are returned
// whole.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	if clientErr, ok := err.(ClientError); ok {
		return clientErr.Summary()
	}
	return err.Error()
}

// IsWaitOutcome reports whether err is one of the wait-path variants
// (unknown task, task failed, condition, shutdown).
func IsWaitOutcome(err error) bool {
	return Is(err, ErrUnknownTask) || Is(err, ErrTaskFailed) ||
		Is(err, ErrConditionTerminated) || Is(err, ErrAbortedByShutdown)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike building a new error, this preserves errors.Is/As matching.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
