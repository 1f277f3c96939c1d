package postgres

import (
	"context"
	"fmt"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/notification"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// NotificationRepository implements notification.Repository for PostgreSQL.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Append inserts a notification.
func (r *NotificationRepository) Append(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, message, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		n.ID, n.UserID, n.Title, n.Message, string(n.Type), n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append notification: %w", err)
	}

	return nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	query := `
		SELECT id, user_id, title, message, type, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	list := make([]*notification.Notification, 0)
	for rows.Next() {
		var n notification.Notification
		var typ string

		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		n.Type = notification.Type(typ)
		list = append(list, &n)
	}

	return list, rows.Err()
}

// MarkRead marks the notification as read. Idempotent: marking an
// already-read notification succeeds. A missing notification returns
// ErrNotificationNotFound; someone else's returns ErrNotRecipient.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	query := `
		SELECT user_id FROM notifications WHERE id = $1
	`

	var ownerID string
	if err := r.conn.QueryRow(ctx, query, notificationID).Scan(&ownerID); err != nil {
		if IsNoRows(err) {
			return shared.ErrNotificationNotFound
		}
		return fmt.Errorf("failed to read notification: %w", err)
	}

	if ownerID != userID {
		return shared.ErrNotRecipient
	}

	update := `
		UPDATE notifications SET is_read = TRUE WHERE id = $1
	`

	if _, err := r.conn.Exec(ctx, update, notificationID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}

// CountUnread returns the number of unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE
	`

	var count int
	if err := r.conn.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread: %w", err)
	}

	return count, nil
}
