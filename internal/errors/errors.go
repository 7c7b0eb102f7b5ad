// Package errors provides centralized error definitions and error handling
// utilities for the rostra codebase. It defines domain-specific errors,
// semantic error types, error constructors with context wrapping, and error
// classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - DebateError: errors related to debate session state
//   - APIError: errors from the backend HTTP API
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//   - TimeoutError: operation timed out
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewDebateError("cannot send message", errors.ErrDebateCompleted)
//	err = err.WithDebateID("d-42")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrDebateCompleted) { ... }
//	if errors.IsRetryable(err) { ... }
//	if errors.IsUserFacing(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
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

// Debate-related sentinel errors
var (
	// ErrDebateNotFound indicates that a debate session could not be found.
	ErrDebateNotFound = New("debate not found")
	// ErrDebateCompleted indicates an operation on a completed (frozen) debate.
	ErrDebateCompleted = New("debate already completed")
	// ErrMaxRoundsReached indicates the round limit has been reached.
	ErrMaxRoundsReached = New("maximum rounds reached")
	// ErrSendInFlight indicates a send was attempted while one is unresolved.
	ErrSendInFlight = New("a message send is already in flight")
	// ErrInvalidTransition indicates an operation illegal in the current state.
	ErrInvalidTransition = New("operation not allowed in current state")
	// ErrSessionClosed indicates the session machine has been torn down.
	ErrSessionClosed = New("debate session closed")
)

// Polling-related sentinel errors
var (
	// ErrPollBudgetExhausted indicates the poller gave up waiting for a reply.
	ErrPollBudgetExhausted = New("max polling attempts reached; try refreshing")
	// ErrPollCancelled indicates polling was cancelled before completion.
	ErrPollCancelled = New("polling cancelled")
)

// Authorization-related sentinel errors
var (
	// ErrNotOwner indicates the debate belongs to a different user.
	ErrNotOwner = New("debate is owned by another user")
	// ErrUnauthenticated indicates no valid credentials are available.
	ErrUnauthenticated = New("not authenticated")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// RostraError is the base interface for all rostra errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type RostraError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
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

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) IsRetryable() bool  { return e.retryable }
func (e *baseError) IsUserFacing() bool { return e.userFacing }

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// DebateError represents errors related to debate session state.
//
// Example:
//
//	err := errors.NewDebateError("cannot send message", errors.ErrDebateCompleted)
//	err = err.WithDebateID("d-42")
//	fmt.Println(err) // "debate error [debate=d-42]: cannot send message: debate already completed"
type DebateError struct {
	baseError
	DebateID string
	Status   string
}

// NewDebateError creates a new DebateError.
func NewDebateError(message string, cause error) *DebateError {
	return &DebateError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithDebateID adds a debate ID to the error context.
func (e *DebateError) WithDebateID(id string) *DebateError {
	e.DebateID = id
	return e
}

// WithStatus adds the session status at failure time to the error context.
func (e *DebateError) WithStatus(status string) *DebateError {
	e.Status = status
	return e
}

// WithSeverity sets the error severity.
func (e *DebateError) WithSeverity(s Severity) *DebateError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *DebateError) WithRetryable(r bool) *DebateError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *DebateError) Error() string {
	var parts []string
	if e.DebateID != "" {
		parts = append(parts, fmt.Sprintf("debate=%s", e.DebateID))
	}
	if e.Status != "" {
		parts = append(parts, fmt.Sprintf("status=%s", e.Status))
	}

	prefix := "debate error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("debate error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *DebateError) Is(target error) bool {
	if _, ok := target.(*DebateError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// APIError represents errors from the backend HTTP API.
//
// Example:
//
//	err := errors.NewAPIError("send message failed", cause).
//		WithEndpoint("POST /debates/42/messages").
//		WithStatusCode(503)
type APIError struct {
	baseError
	Endpoint   string
	StatusCode int
}

// NewAPIError creates a new APIError. API errors default to retryable since
// most failures at this layer are transient network or server conditions;
// WithStatusCode downgrades 4xx responses.
func NewAPIError(message string, cause error) *APIError {
	return &APIError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithEndpoint adds the request endpoint to the error context.
func (e *APIError) WithEndpoint(endpoint string) *APIError {
	e.Endpoint = endpoint
	return e
}

// WithStatusCode adds the HTTP status code and adjusts retryability:
// 4xx responses other than 429 are not retryable.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	if code >= 400 && code < 500 && code != 429 {
		e.retryable = false
	}
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *APIError) WithRetryable(r bool) *APIError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *APIError) Error() string {
	var parts []string
	if e.Endpoint != "" {
		parts = append(parts, fmt.Sprintf("endpoint=%s", e.Endpoint))
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	prefix := "api error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("api error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *APIError) Is(target error) bool {
	if _, ok := target.(*APIError); ok {
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
//	err := errors.NewNotFoundError("debate", "d-42")
//	fmt.Println(err) // "debate 'd-42' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if errors.Is(target, ErrDebateNotFound) {
		return e.ResourceType == "debate"
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
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
			retryable:  false,
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

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true, // Timeouts are generally retryable
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. Poll exhaustion and network failures are
// retryable (the user can re-send or refresh); ownership and invariant
// violations are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var rostraErr RostraError
	if As(err, &rostraErr) {
		return rostraErr.IsRetryable()
	}

	if Is(err, ErrTimeout) || Is(err, ErrPollBudgetExhausted) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to
// end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var rostraErr RostraError
	if As(err, &rostraErr) {
		return rostraErr.IsUserFacing()
	}

	var notFound *NotFoundError
	var validation *ValidationError
	var timeout *TimeoutError
	if As(err, &notFound) || As(err, &validation) || As(err, &timeout) {
		return true
	}

	return false
}

// IsAuthorization returns true if the error indicates the current user may
// not operate on the debate. Authorization failures are never retryable;
// the caller should navigate away rather than offer a retry.
func IsAuthorization(err error) bool {
	if err == nil {
		return false
	}
	if Is(err, ErrNotOwner) || Is(err, ErrUnauthenticated) {
		return true
	}
	var apiErr *APIError
	if As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement RostraError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var rostraErr RostraError
	if As(err, &rostraErr) {
		return rostraErr.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
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
