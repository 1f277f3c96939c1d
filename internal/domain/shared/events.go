// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"context"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Learner events
	EventLearnerRegistered EventType = "learner.registered"
	EventLearnerEnrolled   EventType = "learner.enrolled"

	// Submission events
	EventSubmissionRecorded EventType = "submission.recorded"
	EventCourseCompleted    EventType = "submission.course_completed"

	// Achievement events
	EventBadgeGranted EventType = "achievement.badge_granted"

	// Cohort events
	EventCohortJoined EventType = "cohort.joined"
	EventCohortLeft   EventType = "cohort.left"

	// Notification events
	EventNotificationCreated EventType = "notification.created"

	// System events
	EventReconcileCompleted EventType = "system.reconcile_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a single domain event.
type EventHandler interface {
	// Handle processes the event. Returning an error does not stop other handlers.
	Handle(ctx context.Context, event Event) error

	// Name returns a human-readable handler name for logging.
	Name() string
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc struct {
	HandlerName string
	Fn          func(ctx context.Context, event Event) error
}

// Handle implements EventHandler.
func (f EventHandlerFunc) Handle(ctx context.Context, event Event) error {
	return f.Fn(ctx, event)
}

// Name implements EventHandler.
func (f EventHandlerFunc) Name() string {
	return f.HandlerName
}

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	// Publish delivers the event to all subscribed handlers.
	Publish(event Event) error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Submission Events
// ═══════════════════════════════════════════════════════════════════════════

// SubmissionRecordedEvent is emitted for every persisted quiz attempt.
type SubmissionRecordedEvent struct {
	BaseEvent
	LearnerID      string `json:"learner_id"`
	CourseID       string `json:"course_id"`
	ModuleID       string `json:"module_id"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
}

// Payload implements Event interface.
func (e SubmissionRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":      e.LearnerID,
		"course_id":       e.CourseID,
		"module_id":       e.ModuleID,
		"score":           e.Score,
		"total_questions": e.TotalQuestions,
	}
}

// NewSubmissionRecordedEvent creates a new SubmissionRecordedEvent.
func NewSubmissionRecordedEvent(resultID, learnerID, courseID, moduleID string, score, totalQuestions int) SubmissionRecordedEvent {
	return SubmissionRecordedEvent{
		BaseEvent:      NewBaseEvent(EventSubmissionRecorded, resultID),
		LearnerID:      learnerID,
		CourseID:       courseID,
		ModuleID:       moduleID,
		Score:          score,
		TotalQuestions: totalQuestions,
	}
}

// CourseCompletedEvent is emitted when a submission brings a learner to 100%
// completion of a course. Emitted on every completing submission, including
// repeats; downstream effects are idempotent.
type CourseCompletedEvent struct {
	BaseEvent
	LearnerID        string `json:"learner_id"`
	CourseID         string `json:"course_id"`
	CompletedModules int    `json:"completed_modules"`
	TotalModules     int    `json:"total_modules"`
}

// Payload implements Event interface.
func (e CourseCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":        e.LearnerID,
		"course_id":         e.CourseID,
		"completed_modules": e.CompletedModules,
		"total_modules":     e.TotalModules,
	}
}

// NewCourseCompletedEvent creates a new CourseCompletedEvent.
func NewCourseCompletedEvent(learnerID, courseID string, completed, total int) CourseCompletedEvent {
	return CourseCompletedEvent{
		BaseEvent:        NewBaseEvent(EventCourseCompleted, learnerID),
		LearnerID:        learnerID,
		CourseID:         courseID,
		CompletedModules: completed,
		TotalModules:     total,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievement Events
// ═══════════════════════════════════════════════════════════════════════════

// BadgeGrantedEvent is emitted exactly once per (learner, badge) when the
// grant ledger records a new membership.
type BadgeGrantedEvent struct {
	BaseEvent
	LearnerID string `json:"learner_id"`
	CourseID  string `json:"course_id"`
	BadgeID   string `json:"badge_id"`
	BadgeName string `json:"badge_name"`
}

// Payload implements Event interface.
func (e BadgeGrantedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"course_id":  e.CourseID,
		"badge_id":   e.BadgeID,
		"badge_name": e.BadgeName,
	}
}

// NewBadgeGrantedEvent creates a new BadgeGrantedEvent.
func NewBadgeGrantedEvent(learnerID, courseID, badgeID, badgeName string) BadgeGrantedEvent {
	return BadgeGrantedEvent{
		BaseEvent: NewBaseEvent(EventBadgeGranted, learnerID),
		LearnerID: learnerID,
		CourseID:  courseID,
		BadgeID:   badgeID,
		BadgeName: badgeName,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Cohort Events
// ═══════════════════════════════════════════════════════════════════════════

// CohortJoinedEvent is emitted when a learner newly joins a tier batch.
type CohortJoinedEvent struct {
	BaseEvent
	LearnerID    string  `json:"learner_id"`
	CourseID     string  `json:"course_id"`
	BatchID      string  `json:"batch_id"`
	Tier         string  `json:"tier"`
	AverageScore float64 `json:"average_score"`
}

// Payload implements Event interface.
func (e CohortJoinedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":    e.LearnerID,
		"course_id":     e.CourseID,
		"batch_id":      e.BatchID,
		"tier":          e.Tier,
		"average_score": e.AverageScore,
	}
}

// NewCohortJoinedEvent creates a new CohortJoinedEvent.
func NewCohortJoinedEvent(learnerID, courseID, batchID, tier string, avg float64) CohortJoinedEvent {
	return CohortJoinedEvent{
		BaseEvent:    NewBaseEvent(EventCohortJoined, learnerID),
		LearnerID:    learnerID,
		CourseID:     courseID,
		BatchID:      batchID,
		Tier:         tier,
		AverageScore: avg,
	}
}

// CohortLeftEvent is emitted when exclusive reassignment removes a learner
// from a previously held batch of the same course.
type CohortLeftEvent struct {
	BaseEvent
	LearnerID string `json:"learner_id"`
	CourseID  string `json:"course_id"`
	BatchID   string `json:"batch_id"`
	Tier      string `json:"tier"`
}

// Payload implements Event interface.
func (e CohortLeftEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"course_id":  e.CourseID,
		"batch_id":   e.BatchID,
		"tier":       e.Tier,
	}
}

// NewCohortLeftEvent creates a new CohortLeftEvent.
func NewCohortLeftEvent(learnerID, courseID, batchID, tier string) CohortLeftEvent {
	return CohortLeftEvent{
		BaseEvent: NewBaseEvent(EventCohortLeft, learnerID),
		LearnerID: learnerID,
		CourseID:  courseID,
		BatchID:   batchID,
		Tier:      tier,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Learner Events
// ═══════════════════════════════════════════════════════════════════════════

// LearnerRegisteredEvent is emitted when a new learner account is created.
type LearnerRegisteredEvent struct {
	BaseEvent
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Payload implements Event interface.
func (e LearnerRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"email": e.Email,
		"name":  e.Name,
		"role":  e.Role,
	}
}

// NewLearnerRegisteredEvent creates a new LearnerRegisteredEvent.
func NewLearnerRegisteredEvent(learnerID, email, name, role string) LearnerRegisteredEvent {
	return LearnerRegisteredEvent{
		BaseEvent: NewBaseEvent(EventLearnerRegistered, learnerID),
		Email:     email,
		Name:      name,
		Role:      role,
	}
}

// LearnerEnrolledEvent is emitted when a learner enrolls in a course.
type LearnerEnrolledEvent struct {
	BaseEvent
	LearnerID string `json:"learner_id"`
	CourseID  string `json:"course_id"`
}

// Payload implements Event interface.
func (e LearnerEnrolledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"course_id":  e.CourseID,
	}
}

// NewLearnerEnrolledEvent creates a new LearnerEnrolledEvent.
func NewLearnerEnrolledEvent(learnerID, courseID string) LearnerEnrolledEvent {
	return LearnerEnrolledEvent{
		BaseEvent: NewBaseEvent(EventLearnerEnrolled, learnerID),
		LearnerID: learnerID,
		CourseID:  courseID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// ReconcileCompletedEvent is emitted when a reconciliation pass finishes.
type ReconcileCompletedEvent struct {
	BaseEvent
	CoursesScanned int `json:"courses_scanned"`
	GrantsRepaired int `json:"grants_repaired"`
	JoinsRepaired  int `json:"joins_repaired"`
}

// Payload implements Event interface.
func (e ReconcileCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"courses_scanned": e.CoursesScanned,
		"grants_repaired": e.GrantsRepaired,
		"joins_repaired":  e.JoinsRepaired,
	}
}

// NewReconcileCompletedEvent creates a new ReconcileCompletedEvent.
func NewReconcileCompletedEvent(coursesScanned, grantsRepaired, joinsRepaired int) ReconcileCompletedEvent {
	return ReconcileCompletedEvent{
		BaseEvent:      NewBaseEvent(EventReconcileCompleted, "reconciler"),
		CoursesScanned: coursesScanned,
		GrantsRepaired: grantsRepaired,
		JoinsRepaired:  joinsRepaired,
	}
}
