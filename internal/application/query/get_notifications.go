package query

import (
	"context"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/notification"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET NOTIFICATIONS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetNotificationsQuery requests the notification feed of one user.
type GetNotificationsQuery struct {
	UserID string
}

// Validate validates the query.
func (q GetNotificationsQuery) Validate() error {
	if q.UserID == "" {
		return shared.WrapError("notification", "List", shared.ErrInvalidInput, "user_id is required", nil)
	}
	return nil
}

// NotificationFeed is the user's feed plus the unread counter.
type NotificationFeed struct {
	Notifications []*notification.Notification `json:"notifications"`
	UnreadCount   int                          `json:"unread_count"`
}

// GetNotificationsHandler handles the GetNotificationsQuery.
type GetNotificationsHandler struct {
	notificationRepo notification.Repository
}

// NewGetNotificationsHandler creates a new GetNotificationsHandler.
func NewGetNotificationsHandler(notificationRepo notification.Repository) *GetNotificationsHandler {
	return &GetNotificationsHandler{notificationRepo: notificationRepo}
}

// Handle returns the feed newest first.
func (h *GetNotificationsHandler) Handle(ctx context.Context, q GetNotificationsQuery) (*NotificationFeed, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	list, err := h.notificationRepo.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	unread, err := h.notificationRepo.CountUnread(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	return &NotificationFeed{Notifications: list, UnreadCount: unread}, nil
}
