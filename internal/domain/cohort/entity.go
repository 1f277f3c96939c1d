// Package cohort содержит доменную модель когорт ("batches") - именованных
// групп учеников курса, ключуемых уровнем успеваемости.
package cohort

import (
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Batch - когорта учеников одного курса и одного уровня.
// Уникальна по паре (CourseID, Tier) - find-or-create.
type Batch struct {
	// ID - уникальный идентификатор когорты (UUID).
	ID string

	// CourseID - курс когорты.
	CourseID string

	// Tier - уровень успеваемости (Bronze/Silver/Gold/Diamond).
	Tier string

	// Name - отображаемое имя: "<course title> - <tier>".
	Name string

	// InstructorID - инструктор-владелец (владелец курса).
	InstructorID string

	// CreatedAt - время создания.
	CreatedAt time.Time
}

// Membership - членство ученика в когорте.
// Идемпотентное множество на когорту; ученик может состоять в когортах
// разных курсов, но не более чем в одной когорте на пару (курс, уровень).
type Membership struct {
	// LearnerID - идентификатор ученика.
	LearnerID string

	// BatchID - идентификатор когорты.
	BatchID string

	// JoinedAt - время вступления.
	JoinedAt time.Time
}

// AssignResult - результат размещения ученика в когорте.
type AssignResult struct {
	// Batch - когорта (существующая или только что созданная).
	Batch *Batch

	// Joined - true, если членство создано именно этим вызовом.
	Joined bool

	// Left - когорты того же курса, из которых ученик был исключён
	// (заполняется только в режиме эксклюзивного переназначения).
	Left []*Batch
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyCourse - не указан курс.
	ErrEmptyCourse = errors.New("batch course id is required")

	// ErrEmptyTier - не указан уровень.
	ErrEmptyTier = errors.New("batch tier is required")
)

// NewBatch создаёт когорту для пары (курс, уровень).
func NewBatch(id, courseID, courseTitle, tier, instructorID string) (*Batch, error) {
	if courseID == "" {
		return nil, ErrEmptyCourse
	}
	if tier == "" {
		return nil, ErrEmptyTier
	}

	return &Batch{
		ID:           id,
		CourseID:     courseID,
		Tier:         tier,
		Name:         courseTitle + " - " + tier,
		InstructorID: instructorID,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
