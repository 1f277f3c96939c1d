// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyProcessed = errors.New("already processed")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// Storage errors
	ErrStorage            = errors.New("storage error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "assessment", "achievement", "cohort"
	Op      string // Operation that failed, e.g., "Submit", "Grant"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Learner domain errors
var (
	ErrLearnerNotFound      = NewDomainError("learner", "Find", ErrNotFound, "learner not found")
	ErrLearnerAlreadyExists = NewDomainError("learner", "Register", ErrAlreadyExists, "email already registered")
	ErrInvalidEmail         = NewDomainError("learner", "Validate", ErrInvalidFormat, "invalid email address")
	ErrInvalidRole          = NewDomainError("learner", "Validate", ErrInvalidInput, "invalid role")
)

// Course domain errors
var (
	ErrCourseNotFound     = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrModuleNotFound     = NewDomainError("course", "FindModule", ErrNotFound, "module not found")
	ErrNotInstructorOwned = NewDomainError("course", "Authorize", ErrForbidden, "course is not owned by this instructor")
	ErrAlreadyEnrolled    = NewDomainError("course", "Enroll", ErrAlreadyExists, "learner already enrolled")
)

// Assessment domain errors
var (
	ErrResultNotFound  = NewDomainError("assessment", "Find", ErrNotFound, "quiz result not found")
	ErrNegativeScore   = NewDomainError("assessment", "Validate", ErrNegativeValue, "score cannot be negative")
	ErrScoreOutOfRange = NewDomainError("assessment", "Validate", ErrValueOutOfRange, "score exceeds total questions")
	ErrNoQuestions     = NewDomainError("assessment", "Validate", ErrInvalidInput, "total questions must be positive")
)

// Achievement domain errors
var (
	ErrBadgeNotFound  = NewDomainError("achievement", "Find", ErrNotFound, "badge not found")
	ErrAlreadyGranted = NewDomainError("achievement", "Grant", ErrAlreadyExists, "badge already granted")
)

// Cohort domain errors
var (
	ErrBatchNotFound = NewDomainError("cohort", "Find", ErrNotFound, "batch not found")
	ErrAlreadyMember = NewDomainError("cohort", "Join", ErrAlreadyExists, "learner already in batch")
	ErrInvalidTier   = NewDomainError("cohort", "Validate", ErrInvalidInput, "invalid performance tier")
)

// Notification domain errors
var (
	ErrNotificationNotFound = NewDomainError("notification", "Find", ErrNotFound, "notification not found")
	ErrNotRecipient         = NewDomainError("notification", "MarkRead", ErrForbidden, "notification belongs to another user")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
