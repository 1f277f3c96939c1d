// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// LearnerID represents a unique learner identifier (UUID format).
type LearnerID string

// IsValid checks if the learner ID is a valid UUID.
func (id LearnerID) IsValid() bool {
	return uuidRegex.MatchString(string(id))
}

// String returns the string representation.
func (id LearnerID) String() string {
	return string(id)
}

// CourseID represents a unique course identifier (UUID format).
type CourseID string

// IsValid checks if the course ID is a valid UUID.
func (id CourseID) IsValid() bool {
	return uuidRegex.MatchString(string(id))
}

// String returns the string representation.
func (id CourseID) String() string {
	return string(id)
}

// ModuleID represents a unique module identifier (UUID format).
type ModuleID string

// IsValid checks if the module ID is a valid UUID.
func (id ModuleID) IsValid() bool {
	return uuidRegex.MatchString(string(id))
}

// String returns the string representation.
func (id ModuleID) String() string {
	return string(id)
}

// ═══════════════════════════════════════════════════════════════════════════
// Email
// ═══════════════════════════════════════════════════════════════════════════

// Simple email format check; full RFC validation is not the goal here.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email represents a validated email address.
type Email string

// IsValid checks the email format.
func (e Email) IsValid() bool {
	return emailRegex.MatchString(string(e))
}

// String returns the string representation.
func (e Email) String() string {
	return string(e)
}

// Normalize returns a lowercased, trimmed version of the email.
func (e Email) Normalize() Email {
	return Email(strings.ToLower(strings.TrimSpace(string(e))))
}

// NewEmail creates a normalized Email with validation.
func NewEmail(raw string) (Email, error) {
	e := Email(raw).Normalize()
	if !e.IsValid() {
		return "", ErrInvalidEmail
	}
	return e, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Percent
// ═══════════════════════════════════════════════════════════════════════════

// Percent represents an integer completion percentage in [0, 100].
// Derived by truncation, never rounding: 1 of 3 modules is 33%, not 34%.
type Percent int

// IsValid checks that the percent is within [0, 100].
func (p Percent) IsValid() bool {
	return p >= 0 && p <= 100
}

// Int returns the underlying int value.
func (p Percent) Int() int {
	return int(p)
}

// IsComplete reports whether the percentage represents full completion.
func (p Percent) IsComplete() bool {
	return p == 100
}

// TruncatedPercent computes floor(part/total*100) using integer division.
// Returns 0 when total is zero.
func TruncatedPercent(part, total int) Percent {
	if total <= 0 {
		return 0
	}
	return Percent(part * 100 / total)
}
