package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/assessment"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/course"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/learner"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory fakes shared by the query tests.
// ─────────────────────────────────────────────────────────────────────────────

type stubCourseRepo struct {
	courses map[string]*course.Course
	modules map[string][]course.Module // by course ID

	calls int
}

func (r *stubCourseRepo) GetByID(_ context.Context, courseID string) (*course.Course, error) {
	r.calls++
	if c, ok := r.courses[courseID]; ok {
		return c, nil
	}
	return nil, shared.ErrCourseNotFound
}

func (r *stubCourseRepo) GetByInstructor(_ context.Context, instructorID string) ([]*course.Course, error) {
	r.calls++
	out := make([]*course.Course, 0)
	for _, c := range r.courses {
		if c.InstructorID == instructorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubCourseRepo) All(_ context.Context) ([]*course.Course, error) {
	r.calls++
	out := make([]*course.Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubCourseRepo) GetModule(_ context.Context, moduleID string) (*course.Module, error) {
	r.calls++
	for _, mods := range r.modules {
		for i := range mods {
			if mods[i].ID == moduleID {
				return &mods[i], nil
			}
		}
	}
	return nil, shared.ErrModuleNotFound
}

func (r *stubCourseRepo) ModulesOf(_ context.Context, courseID string) ([]course.Module, error) {
	r.calls++
	return r.modules[courseID], nil
}

type stubEnrollmentRepo struct {
	enrollments []course.Enrollment
}

func (r *stubEnrollmentRepo) Add(_ context.Context, e course.Enrollment) (bool, error) {
	for _, existing := range r.enrollments {
		if existing.LearnerID == e.LearnerID && existing.CourseID == e.CourseID {
			return false, nil
		}
	}
	r.enrollments = append(r.enrollments, e)
	return true, nil
}

func (r *stubEnrollmentRepo) EnrollmentsOf(_ context.Context, courseID string) ([]course.Enrollment, error) {
	out := make([]course.Enrollment, 0)
	for _, e := range r.enrollments {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubEnrollmentRepo) CoursesOf(_ context.Context, learnerID string) ([]string, error) {
	out := make([]string, 0)
	for _, e := range r.enrollments {
		if e.LearnerID == learnerID {
			out = append(out, e.CourseID)
		}
	}
	return out, nil
}

func (r *stubEnrollmentRepo) IsEnrolled(_ context.Context, learnerID, courseID string) (bool, error) {
	for _, e := range r.enrollments {
		if e.LearnerID == learnerID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

type stubLearnerRepo struct {
	learners map[string]*learner.Learner
}

func (r *stubLearnerRepo) Create(_ context.Context, l *learner.Learner) error {
	r.learners[l.ID] = l
	return nil
}

func (r *stubLearnerRepo) GetByID(_ context.Context, id string) (*learner.Learner, error) {
	if l, ok := r.learners[id]; ok {
		return l, nil
	}
	return nil, shared.ErrLearnerNotFound
}

func (r *stubLearnerRepo) GetByEmail(_ context.Context, email shared.Email) (*learner.Learner, error) {
	for _, l := range r.learners {
		if l.Email == email {
			return l, nil
		}
	}
	return nil, shared.ErrLearnerNotFound
}

func (r *stubLearnerRepo) GetByIDs(_ context.Context, ids []string) ([]*learner.Learner, error) {
	out := make([]*learner.Learner, 0, len(ids))
	for _, id := range ids {
		if l, ok := r.learners[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

type stubResultRepo struct {
	results []assessment.QuizResult
}

func (r *stubResultRepo) Append(_ context.Context, result *assessment.QuizResult) error {
	r.results = append(r.results, *result)
	return nil
}

func (r *stubResultRepo) ResultsFor(_ context.Context, learnerID string, moduleIDs []string) ([]assessment.QuizResult, error) {
	wanted := make(map[string]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		wanted[id] = true
	}
	out := make([]assessment.QuizResult, 0)
	for _, res := range r.results {
		if res.LearnerID == learnerID && wanted[res.ModuleID] {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *stubResultRepo) AttemptedModules(ctx context.Context, learnerID string, moduleIDs []string) ([]string, error) {
	results, err := r.ResultsFor(ctx, learnerID, moduleIDs)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, res := range results {
		if !seen[res.ModuleID] {
			seen[res.ModuleID] = true
			out = append(out, res.ModuleID)
		}
	}
	return out, nil
}

func (r *stubResultRepo) CompletedPairs(_ context.Context, moduleIDs []string) (map[string][]string, error) {
	wanted := make(map[string]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		wanted[id] = true
	}
	seen := make(map[string]map[string]bool)
	for _, res := range r.results {
		if !wanted[res.ModuleID] {
			continue
		}
		if seen[res.LearnerID] == nil {
			seen[res.LearnerID] = make(map[string]bool)
		}
		seen[res.LearnerID][res.ModuleID] = true
	}
	out := make(map[string][]string, len(seen))
	for learnerID, mods := range seen {
		for id := range mods {
			out[learnerID] = append(out[learnerID], id)
		}
	}
	return out, nil
}

type stubReportCache struct {
	reports map[string]*LearnerReport
	hits    int
	writes  int
}

func (c *stubReportCache) GetReport(_ context.Context, instructorID string) (*LearnerReport, bool, error) {
	if r, ok := c.reports[instructorID]; ok {
		c.hits++
		return r, true, nil
	}
	return nil, false, nil
}

func (c *stubReportCache) SetReport(_ context.Context, instructorID string, report *LearnerReport) error {
	c.writes++
	c.reports[instructorID] = report
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixture
// ─────────────────────────────────────────────────────────────────────────────

type reportFixture struct {
	courses     *stubCourseRepo
	enrollments *stubEnrollmentRepo
	learners    *stubLearnerRepo
	journal     *stubResultRepo
}

// newReportFixture builds two 2-module courses owned by instructor-1.
func newReportFixture() *reportFixture {
	f := &reportFixture{
		courses: &stubCourseRepo{
			courses: make(map[string]*course.Course),
			modules: make(map[string][]course.Module),
		},
		enrollments: &stubEnrollmentRepo{},
		learners:    &stubLearnerRepo{learners: make(map[string]*learner.Learner)},
		journal:     &stubResultRepo{},
	}

	for i := 1; i <= 2; i++ {
		courseID := fmt.Sprintf("course-%d", i)
		f.courses.courses[courseID] = &course.Course{
			ID:           courseID,
			Title:        fmt.Sprintf("Course %d", i),
			InstructorID: "instructor-1",
			Status:       course.StatusPublished,
		}
		f.courses.modules[courseID] = []course.Module{
			{ID: courseID + "-module-1", CourseID: courseID, Position: 1},
			{ID: courseID + "-module-2", CourseID: courseID, Position: 2},
		}
	}

	return f
}

func (f *reportFixture) addLearner(id, name, email string) {
	f.learners.learners[id] = &learner.Learner{
		ID:        id,
		Name:      name,
		Email:     shared.Email(email),
		Role:      learner.RoleLearner,
		CreatedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func (f *reportFixture) enroll(learnerID, courseID string) {
	f.enrollments.enrollments = append(f.enrollments.enrollments, course.Enrollment{
		LearnerID: learnerID,
		CourseID:  courseID,
	})
}

func (f *reportFixture) recordAttempt(learnerID, moduleID string, score, total int) {
	f.journal.results = append(f.journal.results, assessment.QuizResult{
		ID:             fmt.Sprintf("result-%d", len(f.journal.results)+1),
		LearnerID:      learnerID,
		ModuleID:       moduleID,
		Score:          score,
		TotalQuestions: total,
	})
}

func (f *reportFixture) handler(cache ReportCache) *GetLearnerReportHandler {
	return NewGetLearnerReportHandler(f.courses, f.enrollments, f.learners, f.journal, cache, nil)
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestLearnerReportValidation(t *testing.T) {
	f := newReportFixture()

	_, err := f.handler(nil).Handle(context.Background(), GetLearnerReportQuery{})
	assert.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestLearnerReportAggregation(t *testing.T) {
	f := newReportFixture()

	// Alice: course-1 at 100%, course-2 at 50% -> overall 75, Legend.
	f.addLearner("learner-a", "Alice", "alice@example.com")
	f.enroll("learner-a", "course-1")
	f.enroll("learner-a", "course-2")
	f.recordAttempt("learner-a", "course-1-module-1", 10, 10)
	f.recordAttempt("learner-a", "course-1-module-2", 8, 10)
	f.recordAttempt("learner-a", "course-2-module-1", 3, 10)

	// Bob: enrolled in course-1, never attempted -> 0%, Newbie.
	f.addLearner("learner-b", "Bob", "bob@example.com")
	f.enroll("learner-b", "course-1")

	report, err := f.handler(nil).Handle(context.Background(), GetLearnerReportQuery{InstructorID: "instructor-1"})
	assert.NoError(t, err)
	assert.Len(t, report.Rows, 2)

	// Sorted by name.
	alice, bob := report.Rows[0], report.Rows[1]
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, "Bob", bob.Name)

	assert.Equal(t, 75, alice.OverallProgress)
	assert.ElementsMatch(t, []string{"Course 1", "Course 2"}, alice.Courses)
	assert.Equal(t, 2, alice.CoursesEnrolled)
	assert.Equal(t, 1, alice.CoursesCompleted)
	assert.Equal(t, []string{BadgeLegend}, alice.Badges)
	assert.Equal(t, "A", alice.Avatar)
	assert.Equal(t, "Active", alice.Status)

	assert.Equal(t, 0, bob.OverallProgress)
	assert.Equal(t, []string{"Course 1"}, bob.Courses)
	assert.Equal(t, 1, bob.CoursesEnrolled)
	assert.Equal(t, 0, bob.CoursesCompleted)
	assert.Equal(t, []string{BadgeNewbie}, bob.Badges)
}

func TestLearnerReportTruncatesOverallProgress(t *testing.T) {
	f := newReportFixture()

	// 100% and 50% per course with equal weight: (100+50)/2 = 75;
	// 50% and 0%: (50+0)/2 = 25. The tricky case is an odd sum.
	f.addLearner("learner-a", "Alice", "alice@example.com")
	f.enroll("learner-a", "course-1")
	f.enroll("learner-a", "course-2")
	f.recordAttempt("learner-a", "course-1-module-1", 10, 10) // 50%
	// course-2 untouched: 0%.

	report, err := f.handler(nil).Handle(context.Background(), GetLearnerReportQuery{InstructorID: "instructor-1"})
	assert.NoError(t, err)
	assert.Len(t, report.Rows, 1)

	// (50 + 0) / 2 = 25, and the division truncates.
	assert.Equal(t, 25, report.Rows[0].OverallProgress)
}

func TestLearnerReportNoCourses(t *testing.T) {
	f := newReportFixture()

	report, err := f.handler(nil).Handle(context.Background(), GetLearnerReportQuery{InstructorID: "instructor-without-courses"})
	assert.NoError(t, err)
	assert.Len(t, report.Rows, 0)
	assert.Equal(t, "instructor-without-courses", report.InstructorID)
}

func TestLearnerReportCacheHit(t *testing.T) {
	f := newReportFixture()
	cache := &stubReportCache{reports: make(map[string]*LearnerReport)}

	canned := &LearnerReport{
		InstructorID: "instructor-1",
		Rows:         []LearnerReportRow{{LearnerID: "learner-a", Name: "Alice"}},
		GeneratedAt:  time.Now().UTC(),
	}
	cache.reports["instructor-1"] = canned

	report, err := f.handler(cache).Handle(context.Background(), GetLearnerReportQuery{InstructorID: "instructor-1"})
	assert.NoError(t, err)
	assert.Equal(t, canned, report)
	assert.Equal(t, 1, cache.hits)

	// The cached report is served without touching the repositories.
	assert.Equal(t, 0, f.courses.calls)
}

func TestLearnerReportCacheMissWritesBack(t *testing.T) {
	f := newReportFixture()
	cache := &stubReportCache{reports: make(map[string]*LearnerReport)}

	f.addLearner("learner-a", "Alice", "alice@example.com")
	f.enroll("learner-a", "course-1")

	_, err := f.handler(cache).Handle(context.Background(), GetLearnerReportQuery{InstructorID: "instructor-1"})
	assert.NoError(t, err)
	assert.Equal(t, 1, cache.writes)
	assert.Contains(t, cache.reports, "instructor-1")
}
