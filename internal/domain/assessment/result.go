// Package assessment содержит доменную модель попыток прохождения квизов
// и вычисления производного состояния: процента завершения курса и
// среднего балла. Это ядро бизнес-логики - здесь нет внешних зависимостей.
package assessment

import (
	"errors"
	"time"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: QUIZ RESULT
// ══════════════════════════════════════════════════════════════════════════════

// QuizResult - неизменяемая запись одной попытки прохождения модуля.
// Попытки только добавляются: хранится вся история, а не последняя попытка.
type QuizResult struct {
	// ID - уникальный идентификатор попытки (UUID).
	ID string

	// LearnerID - идентификатор ученика.
	LearnerID string

	// ModuleID - идентификатор модуля.
	ModuleID string

	// Score - количество правильных ответов.
	Score int

	// TotalQuestions - общее количество вопросов в попытке.
	TotalQuestions int

	// CompletedAt - время завершения попытки.
	CompletedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyLearner - не указан ученик.
	ErrEmptyLearner = errors.New("quiz result learner id is required")

	// ErrEmptyModule - не указан модуль.
	ErrEmptyModule = errors.New("quiz result module id is required")
)

// NewQuizResult создаёт запись попытки с валидацией входа.
// Отрицательный счёт и счёт больше числа вопросов отклоняются до записи.
// Нулевое число вопросов допустимо (модуль без вопросов); такие попытки
// не участвуют в среднем балле.
func NewQuizResult(id, learnerID, moduleID string, score, totalQuestions int) (*QuizResult, error) {
	if learnerID == "" {
		return nil, ErrEmptyLearner
	}
	if moduleID == "" {
		return nil, ErrEmptyModule
	}
	if score < 0 {
		return nil, shared.ErrNegativeScore
	}
	if totalQuestions < 0 {
		return nil, shared.ErrNoQuestions
	}
	if totalQuestions > 0 && score > totalQuestions {
		return nil, shared.ErrScoreOutOfRange
	}

	return &QuizResult{
		ID:             id,
		LearnerID:      learnerID,
		ModuleID:       moduleID,
		Score:          score,
		TotalQuestions: totalQuestions,
		CompletedAt:    time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// Percentage возвращает результат попытки в процентах (0-100).
// Для попытки без вопросов возвращает 0.
func (r *QuizResult) Percentage() float64 {
	if r.TotalQuestions <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.TotalQuestions) * 100
}

// CountsTowardAverage возвращает true, если попытка участвует в среднем балле.
func (r *QuizResult) CountsTowardAverage() bool {
	return r.TotalQuestions > 0
}
