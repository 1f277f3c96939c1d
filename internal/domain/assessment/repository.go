package assessment

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Журнал попыток append-only: записи не изменяются и не удаляются.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции с журналом попыток.
type Repository interface {
	// Append добавляет запись попытки. Записи никогда не обновляются.
	Append(ctx context.Context, result *QuizResult) error

	// ResultsFor возвращает все попытки ученика по указанным модулям,
	// от старых к новым.
	ResultsFor(ctx context.Context, learnerID string, moduleIDs []string) ([]QuizResult, error)

	// AttemptedModules возвращает различные модули из указанных,
	// по которым у ученика есть хотя бы одна попытка.
	AttemptedModules(ctx context.Context, learnerID string, moduleIDs []string) ([]string, error)

	// CompletedPairs возвращает пары (ученик, модуль) хотя бы с одной
	// попыткой среди указанных модулей. Используется фоновой сверкой.
	CompletedPairs(ctx context.Context, moduleIDs []string) (map[string][]string, error)
}
