// Package achievement содержит доменную модель бейджей и журнала выдач.
// Журнал выдач - идемпотентное множество: ученик либо держит бейдж,
// либо нет; повторная выдача - no-op.
package achievement

import (
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Badge - бейдж за завершение курса.
// Имя детерминировано: "<course title> Graduate". На одно имя - не более
// одной записи (find-or-create).
type Badge struct {
	// ID - уникальный идентификатор бейджа (UUID).
	ID string

	// Name - уникальное имя бейджа.
	Name string

	// Description - описание бейджа.
	Description string

	// Icon - эмодзи или ссылка на иконку.
	Icon string

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// Grant - факт выдачи бейджа ученику.
type Grant struct {
	// LearnerID - идентификатор ученика.
	LearnerID string

	// BadgeID - идентификатор бейджа.
	BadgeID string

	// GrantedAt - время выдачи.
	GrantedAt time.Time
}

// GrantResult - результат попытки выдачи.
type GrantResult struct {
	// Granted - true, если выдача состоялась именно сейчас.
	// false означает, что ученик уже держал бейдж.
	Granted bool

	// Badge - бейдж (существующий или только что созданный).
	Badge *Badge
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY
// ══════════════════════════════════════════════════════════════════════════════

// ErrEmptyBadgeName - пустое имя бейджа.
var ErrEmptyBadgeName = errors.New("badge name is required")

// DefaultIcon - иконка бейджа выпускника по умолчанию.
const DefaultIcon = "🎓"

// NewGraduateBadge создаёт бейдж выпускника курса.
func NewGraduateBadge(id, courseTitle string) (*Badge, error) {
	if courseTitle == "" {
		return nil, ErrEmptyBadgeName
	}

	return &Badge{
		ID:          id,
		Name:        courseTitle + " Graduate",
		Description: "Completed all modules of " + courseTitle,
		Icon:        DefaultIcon,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
