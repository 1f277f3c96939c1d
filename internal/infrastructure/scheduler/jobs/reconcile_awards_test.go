package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/achievement"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/assessment"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/cohort"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/course"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/notification"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes. The reconcile job only reads courses and the journal, and does
// add-if-absent writes against awards, cohorts and the feed.
// ─────────────────────────────────────────────────────────────────────────────

type fakeCourseRepo struct {
	courses   []*course.Course
	modules   map[string][]course.Module
	moduleErr map[string]error // per-course ModulesOf failure
}

func (r *fakeCourseRepo) GetByID(_ context.Context, courseID string) (*course.Course, error) {
	for _, c := range r.courses {
		if c.ID == courseID {
			return c, nil
		}
	}
	return nil, shared.ErrCourseNotFound
}

func (r *fakeCourseRepo) GetByInstructor(_ context.Context, instructorID string) ([]*course.Course, error) {
	out := make([]*course.Course, 0)
	for _, c := range r.courses {
		if c.InstructorID == instructorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) All(_ context.Context) ([]*course.Course, error) {
	return r.courses, nil
}

func (r *fakeCourseRepo) GetModule(_ context.Context, moduleID string) (*course.Module, error) {
	for _, mods := range r.modules {
		for i := range mods {
			if mods[i].ID == moduleID {
				return &mods[i], nil
			}
		}
	}
	return nil, shared.ErrModuleNotFound
}

func (r *fakeCourseRepo) ModulesOf(_ context.Context, courseID string) ([]course.Module, error) {
	if err := r.moduleErr[courseID]; err != nil {
		return nil, err
	}
	return r.modules[courseID], nil
}

type fakeResultRepo struct {
	results []assessment.QuizResult
}

func (r *fakeResultRepo) Append(_ context.Context, result *assessment.QuizResult) error {
	r.results = append(r.results, *result)
	return nil
}

func (r *fakeResultRepo) ResultsFor(_ context.Context, learnerID string, moduleIDs []string) ([]assessment.QuizResult, error) {
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

func (r *fakeResultRepo) AttemptedModules(ctx context.Context, learnerID string, moduleIDs []string) ([]string, error) {
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

func (r *fakeResultRepo) CompletedPairs(_ context.Context, moduleIDs []string) (map[string][]string, error) {
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

type fakeAchievementRepo struct {
	badges map[string]*achievement.Badge
	grants map[string]bool
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{
		badges: make(map[string]*achievement.Badge),
		grants: make(map[string]bool),
	}
}

func (r *fakeAchievementRepo) FindOrCreateBadge(_ context.Context, badge *achievement.Badge) (*achievement.Badge, error) {
	if existing, ok := r.badges[badge.Name]; ok {
		return existing, nil
	}
	stored := *badge
	r.badges[badge.Name] = &stored
	return &stored, nil
}

func (r *fakeAchievementRepo) AddGrant(_ context.Context, learnerID, badgeID string) (bool, error) {
	key := learnerID + "|" + badgeID
	if r.grants[key] {
		return false, nil
	}
	r.grants[key] = true
	return true, nil
}

func (r *fakeAchievementRepo) HasGrant(_ context.Context, learnerID, badgeID string) (bool, error) {
	return r.grants[learnerID+"|"+badgeID], nil
}

func (r *fakeAchievementRepo) GrantsOf(_ context.Context, learnerID string) ([]*achievement.Badge, error) {
	out := make([]*achievement.Badge, 0)
	for _, b := range r.badges {
		if r.grants[learnerID+"|"+b.ID] {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeCohortRepo struct {
	batches map[string]*cohort.Batch
	byID    map[string]*cohort.Batch
	members map[string]bool
}

func newFakeCohortRepo() *fakeCohortRepo {
	return &fakeCohortRepo{
		batches: make(map[string]*cohort.Batch),
		byID:    make(map[string]*cohort.Batch),
		members: make(map[string]bool),
	}
}

func (r *fakeCohortRepo) FindOrCreateBatch(_ context.Context, batch *cohort.Batch) (*cohort.Batch, error) {
	key := batch.CourseID + "|" + batch.Tier
	if existing, ok := r.batches[key]; ok {
		return existing, nil
	}
	stored := *batch
	r.batches[key] = &stored
	r.byID[stored.ID] = &stored
	return &stored, nil
}

func (r *fakeCohortRepo) AddMember(_ context.Context, learnerID, batchID string) (bool, error) {
	key := learnerID + "|" + batchID
	if r.members[key] {
		return false, nil
	}
	r.members[key] = true
	return true, nil
}

func (r *fakeCohortRepo) RemoveMember(_ context.Context, learnerID, batchID string) error {
	delete(r.members, learnerID+"|"+batchID)
	return nil
}

func (r *fakeCohortRepo) BatchesOfCourse(_ context.Context, courseID string) ([]*cohort.Batch, error) {
	out := make([]*cohort.Batch, 0)
	for _, b := range r.byID {
		if b.CourseID == courseID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeCohortRepo) BatchesOfLearner(_ context.Context, learnerID string) ([]*cohort.Batch, error) {
	out := make([]*cohort.Batch, 0)
	for _, b := range r.byID {
		if r.members[learnerID+"|"+b.ID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeCohortRepo) MembersOf(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

type fakeNotificationRepo struct {
	items []*notification.Notification
}

func (r *fakeNotificationRepo) Append(_ context.Context, n *notification.Notification) error {
	r.items = append(r.items, n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string) ([]*notification.Notification, error) {
	out := make([]*notification.Notification, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID == userID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, notificationID, userID string) error {
	for _, n := range r.items {
		if n.ID == notificationID {
			if n.UserID != userID {
				return shared.ErrNotRecipient
			}
			n.IsRead = true
			return nil
		}
	}
	return shared.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type fakePublisher struct {
	events []shared.Event
}

func (p *fakePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) lastReconcile() (shared.ReconcileCompletedEvent, bool) {
	for i := len(p.events) - 1; i >= 0; i-- {
		if e, ok := p.events[i].(shared.ReconcileCompletedEvent); ok {
			return e, true
		}
	}
	return shared.ReconcileCompletedEvent{}, false
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixture
// ─────────────────────────────────────────────────────────────────────────────

type reconcileFixture struct {
	courses *fakeCourseRepo
	journal *fakeResultRepo
	awards  *fakeAchievementRepo
	cohorts *fakeCohortRepo
	feed    *fakeNotificationRepo
	bus     *fakePublisher
	job     *ReconcileAwardsJob
}

func newReconcileFixture() *reconcileFixture {
	f := &reconcileFixture{
		courses: &fakeCourseRepo{
			modules:   make(map[string][]course.Module),
			moduleErr: make(map[string]error),
		},
		journal: &fakeResultRepo{},
		awards:  newFakeAchievementRepo(),
		cohorts: newFakeCohortRepo(),
		feed:    &fakeNotificationRepo{},
		bus:     &fakePublisher{},
	}

	f.job = NewReconcileAwardsJob(f.courses, f.journal, f.awards, f.cohorts, f.feed, f.bus, nil)
	return f
}

func (f *reconcileFixture) addCourse(id, title string, moduleCount int) {
	f.courses.courses = append(f.courses.courses, &course.Course{
		ID:           id,
		Title:        title,
		InstructorID: "instructor-1",
		Status:       course.StatusPublished,
	})
	for i := 1; i <= moduleCount; i++ {
		f.courses.modules[id] = append(f.courses.modules[id], course.Module{
			ID:       id + "-module-" + string(rune('0'+i)),
			CourseID: id,
			Position: i,
		})
	}
}

func (f *reconcileFixture) recordAttempt(learnerID, moduleID string, score, total int) {
	f.journal.results = append(f.journal.results, assessment.QuizResult{
		ID:             "result-" + moduleID,
		LearnerID:      learnerID,
		ModuleID:       moduleID,
		Score:          score,
		TotalQuestions: total,
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestReconcileRepairsMissedEffects(t *testing.T) {
	f := newReconcileFixture()
	f.addCourse("course-1", "Go Basics", 2)

	// Journal shows a completed course, but no grant or membership
	// landed (a crashed pipeline, say).
	f.recordAttempt("learner-1", "course-1-module-1", 10, 10)
	f.recordAttempt("learner-1", "course-1-module-2", 9, 10)

	err := f.job.Run(context.Background())
	assert.NoError(t, err)

	assert.Len(t, f.awards.grants, 1)
	assert.Len(t, f.cohorts.members, 1)

	// Both the badge and the cohort notification were emitted.
	assert.Len(t, f.feed.items, 2)

	// Diamond: (100 + 90) / 2 = 95.
	batches, err := f.cohorts.BatchesOfLearner(context.Background(), "learner-1")
	assert.NoError(t, err)
	assert.Len(t, batches, 1)
	assert.Equal(t, "Diamond", batches[0].Tier)
	assert.Equal(t, "Go Basics - Diamond", batches[0].Name)

	summary, ok := f.bus.lastReconcile()
	assert.True(t, ok)
	assert.Equal(t, 1, summary.CoursesScanned)
	assert.Equal(t, 1, summary.GrantsRepaired)
	assert.Equal(t, 1, summary.JoinsRepaired)
}

func TestReconcileSecondPassIsNoop(t *testing.T) {
	f := newReconcileFixture()
	f.addCourse("course-1", "Go Basics", 2)
	f.recordAttempt("learner-1", "course-1-module-1", 10, 10)
	f.recordAttempt("learner-1", "course-1-module-2", 9, 10)

	assert.NoError(t, f.job.Run(context.Background()))
	assert.NoError(t, f.job.Run(context.Background()))

	// Everything already landed: no duplicate grants, memberships
	// or notifications on replay.
	assert.Len(t, f.awards.grants, 1)
	assert.Len(t, f.cohorts.members, 1)
	assert.Len(t, f.feed.items, 2)

	summary, ok := f.bus.lastReconcile()
	assert.True(t, ok)
	assert.Equal(t, 0, summary.GrantsRepaired)
	assert.Equal(t, 0, summary.JoinsRepaired)
}

func TestReconcileIgnoresPartialLearners(t *testing.T) {
	f := newReconcileFixture()
	f.addCourse("course-1", "Go Basics", 2)
	f.recordAttempt("learner-1", "course-1-module-1", 10, 10)

	assert.NoError(t, f.job.Run(context.Background()))

	assert.Len(t, f.awards.grants, 0)
	assert.Len(t, f.cohorts.members, 0)
	assert.Len(t, f.feed.items, 0)
}

func TestReconcileSkipsEmptyCourse(t *testing.T) {
	f := newReconcileFixture()
	f.addCourse("course-1", "Empty Course", 0)

	assert.NoError(t, f.job.Run(context.Background()))

	assert.Len(t, f.awards.grants, 0)
	summary, ok := f.bus.lastReconcile()
	assert.True(t, ok)
	assert.Equal(t, 1, summary.CoursesScanned)
	assert.Equal(t, 0, summary.GrantsRepaired)
}

func TestReconcileBrokenCourseDoesNotStarveOthers(t *testing.T) {
	f := newReconcileFixture()
	f.addCourse("course-1", "Broken Course", 1)
	f.addCourse("course-2", "Healthy Course", 1)
	f.courses.moduleErr["course-1"] = errors.New("relation missing")

	f.recordAttempt("learner-1", "course-2-module-1", 8, 10)

	err := f.job.Run(context.Background())
	assert.NoError(t, err)

	// The healthy course was still repaired.
	assert.Len(t, f.awards.grants, 1)
	assert.Len(t, f.cohorts.members, 1)
}
