// Package query contains read operations (CQRS - Queries).
// Queries never mutate state; every report is derived fresh from the
// attempt journal unless a cache serves it.
package query

import (
	"context"
	"sort"
	"time"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/assessment"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/course"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/learner"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
	"github.com/edweb-hub/edweb-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEARNER REPORT QUERY
// The instructor's "my learners" dashboard: one row per distinct learner
// enrolled in any of the instructor's courses, with overall progress
// across those courses.
// ══════════════════════════════════════════════════════════════════════════════

// GetLearnerReportQuery requests the learner report of one instructor.
type GetLearnerReportQuery struct {
	InstructorID string
}

// Validate validates the query.
func (q GetLearnerReportQuery) Validate() error {
	if q.InstructorID == "" {
		return shared.WrapError("learner", "Report", shared.ErrInvalidInput, "instructor_id is required", nil)
	}
	return nil
}

// LearnerReportRow is one learner's aggregate across the instructor's courses.
type LearnerReportRow struct {
	LearnerID string `json:"learner_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`

	// Avatar is the first letter of the name, used as a placeholder avatar.
	Avatar string `json:"avatar"`

	// OverallProgress is the unweighted mean of per-course completion
	// percents, truncated to an integer. 0 when enrolled in nothing.
	OverallProgress int `json:"overall_progress"`

	// Courses lists the titles of the instructor's courses the learner
	// is enrolled in.
	Courses []string `json:"courses"`

	// CoursesEnrolled is the number of the instructor's courses the
	// learner is enrolled in.
	CoursesEnrolled int `json:"courses_enrolled"`

	// CoursesCompleted is how many of those are at 100%.
	CoursesCompleted int `json:"courses_completed"`

	// Badges holds "Legend" once any course reaches 100%, otherwise
	// just "Newbie".
	Badges []string `json:"badges"`

	// Status is fixed at "Active"; account deactivation lives outside
	// the reporting core.
	Status string `json:"status"`

	// LastActive falls back to the registration date; per-request
	// activity tracking is out of scope.
	LastActive time.Time `json:"last_active"`
}

// LearnerReport is the full instructor dashboard payload.
type LearnerReport struct {
	InstructorID string             `json:"instructor_id"`
	Rows         []LearnerReportRow `json:"rows"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// Report badge labels.
const (
	BadgeLegend = "Legend"
	BadgeNewbie = "Newbie"

	statusActive = "Active"
)

// ReportCache caches assembled reports per instructor.
type ReportCache interface {
	// GetReport returns the cached report, or found=false on a miss.
	GetReport(ctx context.Context, instructorID string) (report *LearnerReport, found bool, err error)

	// SetReport stores the report.
	SetReport(ctx context.Context, instructorID string, report *LearnerReport) error
}

// GetLearnerReportHandler handles the GetLearnerReportQuery.
type GetLearnerReportHandler struct {
	courseRepo     course.Repository
	enrollmentRepo course.EnrollmentRepository
	learnerRepo    learner.Repository
	resultRepo     assessment.Repository

	aggregator *assessment.ProgressAggregator

	// cache is optional; nil disables caching.
	cache ReportCache

	log *logger.Logger
}

// NewGetLearnerReportHandler creates a new GetLearnerReportHandler.
func NewGetLearnerReportHandler(
	courseRepo course.Repository,
	enrollmentRepo course.EnrollmentRepository,
	learnerRepo learner.Repository,
	resultRepo assessment.Repository,
	cache ReportCache,
	log *logger.Logger,
) *GetLearnerReportHandler {
	if log == nil {
		log = logger.Default()
	}

	return &GetLearnerReportHandler{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		learnerRepo:    learnerRepo,
		resultRepo:     resultRepo,
		aggregator:     assessment.NewProgressAggregator(),
		cache:          cache,
		log:            log.With(logger.Component("learner_report")),
	}
}

// learnerAccumulator collects per-course percents for one learner
// during the grouping phase.
type learnerAccumulator struct {
	titles    []string
	percents  []int
	completed int
}

// Handle assembles the report in two phases: first a per-(learner,
// course) completion percent for every enrollment, then a per-learner
// rollup. Cache failures degrade to a fresh computation.
func (h *GetLearnerReportHandler) Handle(ctx context.Context, q GetLearnerReportQuery) (*LearnerReport, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		cached, found, err := h.cache.GetReport(ctx, q.InstructorID)
		if err != nil {
			h.log.Warn("report cache read failed", logger.Err(err))
		} else if found {
			return cached, nil
		}
	}

	courses, err := h.courseRepo.GetByInstructor(ctx, q.InstructorID)
	if err != nil {
		return nil, err
	}

	// Phase 1: per-(learner, course) percents.
	acc := make(map[string]*learnerAccumulator)

	for _, crs := range courses {
		modules, err := h.courseRepo.ModulesOf(ctx, crs.ID)
		if err != nil {
			return nil, err
		}
		moduleIDs := course.ModuleIDs(modules)

		enrollments, err := h.enrollmentRepo.EnrollmentsOf(ctx, crs.ID)
		if err != nil {
			return nil, err
		}

		for _, e := range enrollments {
			results, err := h.resultRepo.ResultsFor(ctx, e.LearnerID, moduleIDs)
			if err != nil {
				return nil, err
			}
			progress := h.aggregator.Compute(moduleIDs, results)

			a, ok := acc[e.LearnerID]
			if !ok {
				a = &learnerAccumulator{}
				acc[e.LearnerID] = a
			}
			a.titles = append(a.titles, crs.Title)
			a.percents = append(a.percents, progress.Percent.Int())
			if progress.IsComplete() {
				a.completed++
			}
		}
	}

	// Phase 2: per-learner rollup.
	ids := make([]string, 0, len(acc))
	for id := range acc {
		ids = append(ids, id)
	}

	learners, err := h.learnerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	report := &LearnerReport{
		InstructorID: q.InstructorID,
		Rows:         make([]LearnerReportRow, 0, len(learners)),
		GeneratedAt:  time.Now().UTC(),
	}

	for _, l := range learners {
		a := acc[l.ID]
		if a == nil {
			continue
		}

		badges := []string{BadgeNewbie}
		if a.completed > 0 {
			badges = []string{BadgeLegend}
		}

		report.Rows = append(report.Rows, LearnerReportRow{
			LearnerID:        l.ID,
			Name:             l.Name,
			Email:            l.Email.String(),
			Avatar:           l.AvatarInitial(),
			Courses:          a.titles,
			OverallProgress:  truncatedMean(a.percents),
			CoursesEnrolled:  len(a.percents),
			CoursesCompleted: a.completed,
			Badges:           badges,
			Status:           statusActive,
			LastActive:       l.CreatedAt,
		})
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].Name < report.Rows[j].Name
	})

	if h.cache != nil {
		if err := h.cache.SetReport(ctx, q.InstructorID, report); err != nil {
			h.log.Warn("report cache write failed", logger.Err(err))
		}
	}

	return report, nil
}

// truncatedMean is the unweighted integer mean of the percents: every
// course weighs the same regardless of module count, and the division
// truncates just like per-course percents do.
func truncatedMean(percents []int) int {
	if len(percents) == 0 {
		return 0
	}
	sum := 0
	for _, p := range percents {
		sum += p
	}
	return sum / len(percents)
}
