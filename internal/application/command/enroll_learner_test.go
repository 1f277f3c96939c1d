package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/course"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

type memEnrollmentRepo struct {
	enrollments []course.Enrollment
}

func (r *memEnrollmentRepo) Add(_ context.Context, e course.Enrollment) (bool, error) {
	for _, existing := range r.enrollments {
		if existing.LearnerID == e.LearnerID && existing.CourseID == e.CourseID {
			return false, nil
		}
	}
	r.enrollments = append(r.enrollments, e)
	return true, nil
}

func (r *memEnrollmentRepo) EnrollmentsOf(_ context.Context, courseID string) ([]course.Enrollment, error) {
	out := make([]course.Enrollment, 0)
	for _, e := range r.enrollments {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEnrollmentRepo) CoursesOf(_ context.Context, learnerID string) ([]string, error) {
	out := make([]string, 0)
	for _, e := range r.enrollments {
		if e.LearnerID == learnerID {
			out = append(out, e.CourseID)
		}
	}
	return out, nil
}

func (r *memEnrollmentRepo) IsEnrolled(_ context.Context, learnerID, courseID string) (bool, error) {
	for _, e := range r.enrollments {
		if e.LearnerID == learnerID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func enrollFixture(status course.Status) (*EnrollLearnerHandler, *memEnrollmentRepo, *capturingPublisher) {
	courses := &memCourseRepo{
		courses: map[string]*course.Course{
			"course-1": {
				ID:           "course-1",
				Title:        "Go Basics",
				InstructorID: "instructor-1",
				Status:       status,
			},
		},
	}
	enrollments := &memEnrollmentRepo{}
	bus := &capturingPublisher{}
	return NewEnrollLearnerHandler(courses, enrollments, bus, nil), enrollments, bus
}

func TestEnrollLearner(t *testing.T) {
	h, enrollments, bus := enrollFixture(course.StatusPublished)

	out, err := h.Handle(context.Background(), EnrollLearnerCommand{
		LearnerID: "learner-1",
		CourseID:  "course-1",
	})
	assert.NoError(t, err)
	assert.True(t, out.Enrolled)
	assert.Equal(t, "Go Basics", out.Course.Title)
	assert.Len(t, enrollments.enrollments, 1)
	assert.Equal(t, 1, bus.countOf(shared.EventLearnerEnrolled))
}

func TestEnrollLearnerTwice(t *testing.T) {
	h, enrollments, bus := enrollFixture(course.StatusPublished)

	_, err := h.Handle(context.Background(), EnrollLearnerCommand{LearnerID: "learner-1", CourseID: "course-1"})
	assert.NoError(t, err)

	_, err = h.Handle(context.Background(), EnrollLearnerCommand{LearnerID: "learner-1", CourseID: "course-1"})
	assert.Error(t, err)
	assert.True(t, shared.IsAlreadyExists(err))

	assert.Len(t, enrollments.enrollments, 1)
	assert.Equal(t, 1, bus.countOf(shared.EventLearnerEnrolled))
}

func TestEnrollLearnerUnpublishedCourse(t *testing.T) {
	h, _, _ := enrollFixture(course.StatusDraft)

	_, err := h.Handle(context.Background(), EnrollLearnerCommand{LearnerID: "learner-1", CourseID: "course-1"})
	assert.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestEnrollLearnerUnknownCourse(t *testing.T) {
	h, _, _ := enrollFixture(course.StatusPublished)

	_, err := h.Handle(context.Background(), EnrollLearnerCommand{LearnerID: "learner-1", CourseID: "no-such-course"})
	assert.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestMarkNotificationRead(t *testing.T) {
	f := newPipelineFixture(1, false)
	f.submit(t, "module-1", 10, 10)

	// Reuse the pipeline's feed: completion produced two notifications.
	feed := f.feed
	listed, err := feed.ListByUser(context.Background(), "learner-1")
	assert.NoError(t, err)
	assert.Len(t, listed, 2)

	h := NewMarkNotificationReadHandler(feed, nil)

	err = h.Handle(context.Background(), MarkNotificationReadCommand{
		NotificationID: listed[0].ID,
		UserID:         "learner-1",
	})
	assert.NoError(t, err)

	unread, err := feed.CountUnread(context.Background(), "learner-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, unread)

	// Marking again is a no-op, not an error.
	assert.NoError(t, h.Handle(context.Background(), MarkNotificationReadCommand{
		NotificationID: listed[0].ID,
		UserID:         "learner-1",
	}))

	// Someone else's notification is refused.
	err = h.Handle(context.Background(), MarkNotificationReadCommand{
		NotificationID: listed[0].ID,
		UserID:         "learner-2",
	})
	assert.ErrorIs(t, err, shared.ErrNotRecipient)

	// A missing one is a not-found.
	err = h.Handle(context.Background(), MarkNotificationReadCommand{
		NotificationID: "no-such-notification",
		UserID:         "learner-1",
	})
	assert.True(t, shared.IsNotFound(err))
}
