package assessment

import (
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS AGGREGATOR
// Вычисляет долю завершения курса из множества попыток.
// Без побочных эффектов; можно вызывать многократно.
// ══════════════════════════════════════════════════════════════════════════════

// Progress представляет прогресс ученика по одному курсу.
type Progress struct {
	// CompletedModules - число различных модулей курса хотя бы с одной попыткой.
	CompletedModules int

	// TotalModules - общее число модулей курса.
	TotalModules int

	// Percent - процент завершения, целочисленное усечение.
	Percent shared.Percent
}

// IsComplete возвращает true, если все модули курса пройдены.
// Курс без модулей не может быть завершён: пустой курс не даёт
// мнимых 100%.
func (p Progress) IsComplete() bool {
	return p.TotalModules > 0 && p.CompletedModules == p.TotalModules
}

// ProgressAggregator вычисляет прогресс по курсу.
type ProgressAggregator struct{}

// NewProgressAggregator создаёт агрегатор прогресса.
func NewProgressAggregator() *ProgressAggregator {
	return &ProgressAggregator{}
}

// Compute вычисляет прогресс ученика: среди модулей курса считаются
// различные модули, по которым есть хотя бы одна попытка. Любой счёт
// считается прохождением: достаточно попытки, проходной балл не нужен.
// Percent = floor(completed/total*100); при total == 0 всегда 0.
func (pa *ProgressAggregator) Compute(moduleIDs []string, results []QuizResult) Progress {
	known := make(map[string]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		known[id] = true
	}

	attempted := make(map[string]bool)
	for _, r := range results {
		if known[r.ModuleID] {
			attempted[r.ModuleID] = true
		}
	}

	total := len(moduleIDs)
	completed := len(attempted)

	return Progress{
		CompletedModules: completed,
		TotalModules:     total,
		Percent:          shared.TruncatedPercent(completed, total),
	}
}
