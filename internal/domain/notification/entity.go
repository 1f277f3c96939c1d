// Package notification содержит доменную модель уведомлений EdWeb Learning Hub.
// Уведомления - append-only лента производных событий конвейера:
// выдача бейджа, размещение в когорте. Текст уведомлений не
// дедуплицируется - дедуплицируются сами события выдачи и размещения.
package notification

import (
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Type определяет тип уведомления.
type Type string

const (
	// TypeSuccess - позитивное событие: выдан бейдж.
	// "🎓 Ты получил бейдж Go Basics Graduate!"
	TypeSuccess Type = "success"

	// TypeInfo - информационное событие: размещение в когорте.
	// "Ты зачислен в Go Basics - Diamond (средний балл 95)"
	TypeInfo Type = "info"

	// TypeWarning - предупреждение.
	TypeWarning Type = "warning"
)

// IsValid проверяет корректность типа.
func (t Type) IsValid() bool {
	switch t {
	case TypeSuccess, TypeInfo, TypeWarning:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: NOTIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// Notification - одно уведомление пользователя.
type Notification struct {
	// ID - уникальный идентификатор (UUID).
	ID string

	// UserID - получатель.
	UserID string

	// Title - заголовок.
	Title string

	// Message - текст уведомления.
	Message string

	// Type - тип уведомления.
	Type Type

	// IsRead - флаг прочтения.
	IsRead bool

	// CreatedAt - время создания. Лента отдаётся от новых к старым.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyRecipient - не указан получатель.
	ErrEmptyRecipient = errors.New("notification user id is required")

	// ErrEmptyTitle - пустой заголовок.
	ErrEmptyTitle = errors.New("notification title is required")
)

// New создаёт уведомление с валидацией.
func New(id, userID, title, message string, typ Type) (*Notification, error) {
	if userID == "" {
		return nil, ErrEmptyRecipient
	}
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if !typ.IsValid() {
		typ = TypeInfo
	}

	return &Notification{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MarkRead помечает уведомление прочитанным.
// Повторная пометка - no-op, не ошибка.
func (n *Notification) MarkRead() {
	n.IsRead = true
}
