package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/notification"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

type stubNotificationRepo struct {
	items []*notification.Notification
}

func (r *stubNotificationRepo) Append(_ context.Context, n *notification.Notification) error {
	r.items = append(r.items, n)
	return nil
}

func (r *stubNotificationRepo) ListByUser(_ context.Context, userID string) ([]*notification.Notification, error) {
	out := make([]*notification.Notification, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID == userID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, notificationID, userID string) error {
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

func (r *stubNotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func TestGetNotificationsValidation(t *testing.T) {
	h := NewGetNotificationsHandler(&stubNotificationRepo{})

	_, err := h.Handle(context.Background(), GetNotificationsQuery{})
	assert.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestGetNotificationsFeed(t *testing.T) {
	repo := &stubNotificationRepo{}
	for _, spec := range []struct {
		id, userID, title string
		read              bool
	}{
		{"n-1", "learner-1", "🎓 Badge Earned!", true},
		{"n-2", "learner-1", "📊 Cohort Assigned", false},
		{"n-3", "learner-2", "🎓 Badge Earned!", false},
	} {
		n, err := notification.New(spec.id, spec.userID, spec.title, "msg", notification.TypeInfo)
		assert.NoError(t, err)
		n.IsRead = spec.read
		assert.NoError(t, repo.Append(context.Background(), n))
	}

	h := NewGetNotificationsHandler(repo)

	feed, err := h.Handle(context.Background(), GetNotificationsQuery{UserID: "learner-1"})
	assert.NoError(t, err)

	// Newest first, other users' items excluded.
	assert.Len(t, feed.Notifications, 2)
	assert.Equal(t, "n-2", feed.Notifications[0].ID)
	assert.Equal(t, "n-1", feed.Notifications[1].ID)
	assert.Equal(t, 1, feed.UnreadCount)
}

func TestGetNotificationsEmptyFeed(t *testing.T) {
	h := NewGetNotificationsHandler(&stubNotificationRepo{})

	feed, err := h.Handle(context.Background(), GetNotificationsQuery{UserID: "learner-1"})
	assert.NoError(t, err)
	assert.Len(t, feed.Notifications, 0)
	assert.Equal(t, 0, feed.UnreadCount)
}
