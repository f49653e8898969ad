// Package errors provides standardized error handling for the semquery
// pipeline. It includes error classification, the domain error taxonomy for
// planning and execution failures, and helper functions for consistent error
// wrapping across pipeline stages.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for the pipeline taxonomy.
//
// The planning-time errors (unknown entity, unknown field, ambiguous intent,
// invalid parameter) are user-facing and non-retryable: validation is
// front-loaded so none of them ever reach the graph service. Execution and
// transport errors are transient; the executor retries the transport once.
// QUERY_SINGLE with zero rows is not an error at all, it formats as a normal
// empty answer.
var (
	// Planning-time errors
	ErrUnknownEntity    = errors.New("unknown entity")
	ErrUnknownField     = errors.New("unknown field")
	ErrAmbiguousIntent  = errors.New("ambiguous intent")
	ErrInvalidParameter = errors.New("invalid parameter")

	// Execution errors
	ErrQueryExecution = errors.New("query execution failed")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")

	// Transport errors
	ErrNoConnection      = errors.New("no connection available")
	ErrConnectionTimeout = errors.New("connection timeout")
	ErrPoolExhausted     = errors.New("connection pool exhausted")
)

// Stage identifies the pipeline stage where an error originated.
type Stage string

const (
	StageExtract  Stage = "extract"
	StagePlan     Stage = "plan"
	StageGenerate Stage = "generate"
	StageExecute  Stage = "execute"
	StageFormat   Stage = "format"
)

// StageError carries structured context for a pipeline failure: the stage it
// occurred in and, where known, the entity and field involved. The context is
// what lets the formatter render a precise clarifying message per language
// instead of a stack trace.
type StageError struct {
	Stage  Stage
	Entity string
	Field  string
	Err    error
}

// Error implements the error interface
func (se *StageError) Error() string {
	switch {
	case se.Entity != "" && se.Field != "":
		return fmt.Sprintf("%s: %v: entity %q field %q", se.Stage, se.Err, se.Entity, se.Field)
	case se.Entity != "":
		return fmt.Sprintf("%s: %v: entity %q", se.Stage, se.Err, se.Entity)
	default:
		return fmt.Sprintf("%s: %v", se.Stage, se.Err)
	}
}

// Unwrap returns the underlying sentinel error
func (se *StageError) Unwrap() error {
	return se.Err
}

// NewStageError creates a StageError for the given stage and sentinel.
func NewStageError(stage Stage, sentinel error, entity, field string) *StageError {
	return &StageError{Stage: stage, Entity: entity, Field: field, Err: sentinel}
}

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient checks if an error is transient and should be retried
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	return errors.Is(err, ErrQueryExecution) ||
		errors.Is(err, ErrNoConnection) ||
		errors.Is(err, ErrConnectionTimeout) ||
		errors.Is(err, ErrPoolExhausted)
}

// IsInvalid checks if an error is due to invalid input. All planning-time
// taxonomy errors are invalid: they need a clarified question, not a retry.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrUnknownEntity) ||
		errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrAmbiguousIntent) ||
		errors.Is(err, ErrInvalidParameter)
}

// IsFatal checks if an error is fatal and should stop processing
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	return errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrMissingConfig)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if IsInvalid(err) {
		return ErrorInvalid
	}
	if IsFatal(err) {
		return ErrorFatal
	}
	return ErrorTransient
}

// newClassified creates a new classified error
// This is an internal helper - use WrapTransient(), WrapFatal(), or WrapInvalid() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// Is, As and New re-export the standard library so callers only import one
// errors package.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// New returns an error with the supplied text.
func New(text string) error { return errors.New(text) }
