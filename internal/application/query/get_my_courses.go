package query

import (
	"context"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/assessment"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/course"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
	"github.com/edweb-hub/edweb-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET MY COURSES QUERY
// The learner's own dashboard: enrolled courses with live progress.
// ══════════════════════════════════════════════════════════════════════════════

// GetMyCoursesQuery requests the enrolled courses of one learner.
type GetMyCoursesQuery struct {
	LearnerID string
}

// Validate validates the query.
func (q GetMyCoursesQuery) Validate() error {
	if q.LearnerID == "" {
		return shared.WrapError("course", "MyCourses", shared.ErrInvalidInput, "learner_id is required", nil)
	}
	return nil
}

// EnrolledCourse is one course with the learner's progress in it.
type EnrolledCourse struct {
	Course   *course.Course      `json:"course"`
	Progress assessment.Progress `json:"progress"`
}

// ProgressCache caches per-(learner, course) progress. Invalidated by
// the submission event handler, so a stale read window is bounded by
// event delivery, not TTL alone.
type ProgressCache interface {
	// GetProgress returns the cached progress, or found=false on a miss.
	GetProgress(ctx context.Context, learnerID, courseID string) (progress assessment.Progress, found bool, err error)

	// SetProgress stores the progress.
	SetProgress(ctx context.Context, learnerID, courseID string, progress assessment.Progress) error

	// InvalidateProgress drops the cached entry.
	InvalidateProgress(ctx context.Context, learnerID, courseID string) error
}

// GetMyCoursesHandler handles the GetMyCoursesQuery.
type GetMyCoursesHandler struct {
	courseRepo     course.Repository
	enrollmentRepo course.EnrollmentRepository
	resultRepo     assessment.Repository

	aggregator *assessment.ProgressAggregator

	// cache is optional; nil disables caching.
	cache ProgressCache

	log *logger.Logger
}

// NewGetMyCoursesHandler creates a new GetMyCoursesHandler.
func NewGetMyCoursesHandler(
	courseRepo course.Repository,
	enrollmentRepo course.EnrollmentRepository,
	resultRepo assessment.Repository,
	cache ProgressCache,
	log *logger.Logger,
) *GetMyCoursesHandler {
	if log == nil {
		log = logger.Default()
	}

	return &GetMyCoursesHandler{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		resultRepo:     resultRepo,
		aggregator:     assessment.NewProgressAggregator(),
		cache:          cache,
		log:            log.With(logger.Component("my_courses")),
	}
}

// Handle returns the learner's enrolled courses with progress.
func (h *GetMyCoursesHandler) Handle(ctx context.Context, q GetMyCoursesQuery) ([]EnrolledCourse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	courseIDs, err := h.enrollmentRepo.CoursesOf(ctx, q.LearnerID)
	if err != nil {
		return nil, err
	}

	out := make([]EnrolledCourse, 0, len(courseIDs))
	for _, courseID := range courseIDs {
		crs, err := h.courseRepo.GetByID(ctx, courseID)
		if err != nil {
			// An enrollment pointing at a removed course is skipped,
			// not fatal for the whole dashboard.
			if shared.IsNotFound(err) {
				h.log.Warn("enrollment references missing course",
					logger.LearnerID(q.LearnerID), logger.CourseID(courseID))
				continue
			}
			return nil, err
		}

		progress, err := h.progressOf(ctx, q.LearnerID, crs.ID)
		if err != nil {
			return nil, err
		}

		out = append(out, EnrolledCourse{Course: crs, Progress: progress})
	}

	return out, nil
}

// progressOf computes the learner's progress for one course, consulting
// the cache first. Cache failures degrade to a fresh computation.
func (h *GetMyCoursesHandler) progressOf(ctx context.Context, learnerID, courseID string) (assessment.Progress, error) {
	if h.cache != nil {
		cached, found, err := h.cache.GetProgress(ctx, learnerID, courseID)
		if err != nil {
			h.log.Warn("progress cache read failed", logger.Err(err))
		} else if found {
			return cached, nil
		}
	}

	modules, err := h.courseRepo.ModulesOf(ctx, courseID)
	if err != nil {
		return assessment.Progress{}, err
	}
	moduleIDs := course.ModuleIDs(modules)

	results, err := h.resultRepo.ResultsFor(ctx, learnerID, moduleIDs)
	if err != nil {
		return assessment.Progress{}, err
	}

	progress := h.aggregator.Compute(moduleIDs, results)

	if h.cache != nil {
		if err := h.cache.SetProgress(ctx, learnerID, courseID, progress); err != nil {
			h.log.Warn("progress cache write failed", logger.Err(err))
		}
	}

	return progress, nil
}
