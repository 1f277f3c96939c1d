package course

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// Конвейер обращается к курсам ТОЛЬКО для чтения: явные методы чтения
// вместо ленивых ORM-связей.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции чтения курсов и модулей.
type Repository interface {
	// GetByID возвращает курс по идентификатору.
	// Возвращает shared.ErrCourseNotFound, если курс не найден.
	GetByID(ctx context.Context, courseID string) (*Course, error)

	// GetByInstructor возвращает все курсы инструктора.
	GetByInstructor(ctx context.Context, instructorID string) ([]*Course, error)

	// All возвращает все курсы. Используется фоновой сверкой.
	All(ctx context.Context) ([]*Course, error)

	// GetModule возвращает модуль по идентификатору.
	// Возвращает shared.ErrModuleNotFound, если модуль не найден.
	GetModule(ctx context.Context, moduleID string) (*Module, error)

	// ModulesOf возвращает модули курса в порядке вставки.
	ModulesOf(ctx context.Context, courseID string) ([]Module, error)
}

// EnrollmentRepository определяет операции с зачислениями.
type EnrollmentRepository interface {
	// Add добавляет зачисление. Повторное зачисление - no-op,
	// возвращает joined=false.
	Add(ctx context.Context, enrollment Enrollment) (joined bool, err error)

	// EnrollmentsOf возвращает все зачисления на курс.
	EnrollmentsOf(ctx context.Context, courseID string) ([]Enrollment, error)

	// CoursesOf возвращает идентификаторы курсов, на которые зачислен ученик.
	CoursesOf(ctx context.Context, learnerID string) ([]string, error)

	// IsEnrolled проверяет, зачислен ли ученик на курс.
	IsEnrolled(ctx context.Context, learnerID, courseID string) (bool, error)
}
