package notification

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Лента append-only; единственная мутация - флаг прочтения.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции с лентой уведомлений.
type Repository interface {
	// Append добавляет уведомление в ленту.
	Append(ctx context.Context, n *Notification) error

	// ListByUser возвращает уведомления пользователя от новых к старым.
	ListByUser(ctx context.Context, userID string) ([]*Notification, error)

	// MarkRead помечает уведомление прочитанным. Идемпотентна.
	// Возвращает shared.ErrNotificationNotFound, если уведомления нет,
	// и shared.ErrNotRecipient, если оно принадлежит другому пользователю.
	MarkRead(ctx context.Context, notificationID, userID string) error

	// CountUnread возвращает число непрочитанных уведомлений.
	CountUnread(ctx context.Context, userID string) (int, error)
}
