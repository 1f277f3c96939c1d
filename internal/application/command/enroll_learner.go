package command

import (
	"context"
	"time"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/course"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
	"github.com/edweb-hub/edweb-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL LEARNER COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// EnrollLearnerCommand enrolls a learner into a course.
type EnrollLearnerCommand struct {
	LearnerID string
	CourseID  string
}

// Validate validates the command.
func (c EnrollLearnerCommand) Validate() error {
	if c.LearnerID == "" {
		return shared.WrapError("course", "Enroll", shared.ErrInvalidInput, "learner_id is required", nil)
	}
	if c.CourseID == "" {
		return shared.WrapError("course", "Enroll", shared.ErrInvalidInput, "course_id is required", nil)
	}
	return nil
}

// EnrollLearnerResult contains the enrollment outcome.
type EnrollLearnerResult struct {
	// Enrolled is true if the enrollment was created by this call.
	// A repeat enrollment returns shared.ErrAlreadyEnrolled instead.
	Enrolled bool

	Course *course.Course
}

// EnrollLearnerHandler handles the EnrollLearnerCommand.
type EnrollLearnerHandler struct {
	courseRepo     course.Repository
	enrollmentRepo course.EnrollmentRepository
	publisher      shared.EventPublisher
	log            *logger.Logger
}

// NewEnrollLearnerHandler creates a new EnrollLearnerHandler.
func NewEnrollLearnerHandler(
	courseRepo course.Repository,
	enrollmentRepo course.EnrollmentRepository,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *EnrollLearnerHandler {
	if log == nil {
		log = logger.Default()
	}

	return &EnrollLearnerHandler{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		publisher:      publisher,
		log:            log.With(logger.Component("enroll_learner")),
	}
}

// Handle enrolls the learner. The course must exist and be published.
func (h *EnrollLearnerHandler) Handle(ctx context.Context, cmd EnrollLearnerCommand) (*EnrollLearnerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	crs, err := h.courseRepo.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, err
	}
	if !crs.IsPublished() {
		return nil, shared.WrapError("course", "Enroll", shared.ErrInvalidState, "course is not published", nil)
	}

	joined, err := h.enrollmentRepo.Add(ctx, course.Enrollment{
		LearnerID:  cmd.LearnerID,
		CourseID:   cmd.CourseID,
		EnrolledAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, shared.ErrAlreadyEnrolled
	}

	h.log.Info("learner enrolled",
		logger.LearnerID(cmd.LearnerID),
		logger.CourseID(cmd.CourseID),
	)

	if h.publisher != nil {
		if err := h.publisher.Publish(shared.NewLearnerEnrolledEvent(cmd.LearnerID, cmd.CourseID)); err != nil {
			h.log.Warn("event publish failed", logger.Err(err))
		}
	}

	return &EnrollLearnerResult{Enrolled: true, Course: crs}, nil
}
