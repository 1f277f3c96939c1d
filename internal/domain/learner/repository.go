package learner

import (
	"context"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции с учётными записями.
type Repository interface {
	// Create создаёт учётную запись.
	// Возвращает shared.ErrLearnerAlreadyExists при дубликате email.
	Create(ctx context.Context, l *Learner) error

	// GetByID возвращает учётную запись по идентификатору.
	// Возвращает shared.ErrLearnerNotFound, если запись не найдена.
	GetByID(ctx context.Context, id string) (*Learner, error)

	// GetByEmail возвращает учётную запись по email.
	// Возвращает shared.ErrLearnerNotFound, если запись не найдена.
	GetByEmail(ctx context.Context, email shared.Email) (*Learner, error)

	// GetByIDs возвращает учётные записи по списку идентификаторов.
	// Отсутствующие идентификаторы молча пропускаются.
	GetByIDs(ctx context.Context, ids []string) ([]*Learner, error)
}
