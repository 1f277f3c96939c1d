package cohort

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Журнал членств - глобальное изменяемое множество с атомарным
// "add-if-absent", как и журнал выдач бейджей.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции с когортами и членствами.
type Repository interface {
	// FindOrCreateBatch возвращает когорту пары (CourseID, Tier),
	// создавая её при первом обращении.
	FindOrCreateBatch(ctx context.Context, batch *Batch) (*Batch, error)

	// AddMember атомарно добавляет членство, если его ещё нет.
	// Возвращает joined=true, только если запись создана этим вызовом.
	AddMember(ctx context.Context, learnerID, batchID string) (joined bool, err error)

	// RemoveMember удаляет членство. Используется только режимом
	// эксклюзивного переназначения. Отсутствующее членство - no-op.
	RemoveMember(ctx context.Context, learnerID, batchID string) error

	// BatchesOfCourse возвращает все когорты курса.
	BatchesOfCourse(ctx context.Context, courseID string) ([]*Batch, error)

	// BatchesOfLearner возвращает когорты, в которых состоит ученик.
	BatchesOfLearner(ctx context.Context, learnerID string) ([]*Batch, error)

	// MembersOf возвращает идентификаторы учеников когорты.
	MembersOf(ctx context.Context, batchID string) ([]string, error)
}
