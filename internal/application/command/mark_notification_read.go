package command

import (
	"context"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/notification"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
	"github.com/edweb-hub/edweb-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK NOTIFICATION READ COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// MarkNotificationReadCommand marks one notification as read.
type MarkNotificationReadCommand struct {
	NotificationID string

	// UserID is the caller; only the recipient may mark a notification.
	UserID string
}

// Validate validates the command.
func (c MarkNotificationReadCommand) Validate() error {
	if c.NotificationID == "" {
		return shared.WrapError("notification", "MarkRead", shared.ErrInvalidInput, "notification_id is required", nil)
	}
	if c.UserID == "" {
		return shared.WrapError("notification", "MarkRead", shared.ErrInvalidInput, "user_id is required", nil)
	}
	return nil
}

// MarkNotificationReadHandler handles the MarkNotificationReadCommand.
type MarkNotificationReadHandler struct {
	notificationRepo notification.Repository
	log              *logger.Logger
}

// NewMarkNotificationReadHandler creates a new MarkNotificationReadHandler.
func NewMarkNotificationReadHandler(notificationRepo notification.Repository, log *logger.Logger) *MarkNotificationReadHandler {
	if log == nil {
		log = logger.Default()
	}

	return &MarkNotificationReadHandler{
		notificationRepo: notificationRepo,
		log:              log.With(logger.Component("mark_notification_read")),
	}
}

// Handle marks the notification as read. Marking an already-read
// notification succeeds; a missing one returns ErrNotificationNotFound,
// someone else's returns ErrNotRecipient.
func (h *MarkNotificationReadHandler) Handle(ctx context.Context, cmd MarkNotificationReadCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.notificationRepo.MarkRead(ctx, cmd.NotificationID, cmd.UserID)
}
