// Package course содержит доменную модель курса EdWeb Learning Hub.
// Ядро конвейера читает курсы только для чтения: состав модулей,
// название и владелец-инструктор. CRUD курсов живёт за пределами ядра.
package course

import (
	"errors"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: COURSE
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет статус публикации курса.
type Status string

const (
	// StatusDraft - курс в черновике, не виден ученикам.
	StatusDraft Status = "Draft"
	// StatusPublished - курс опубликован.
	StatusPublished Status = "Published"
)

// IsValid проверяет корректность статуса.
func (s Status) IsValid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Course - курс, состоящий из упорядоченного набора модулей.
type Course struct {
	// ID - уникальный идентификатор курса (UUID).
	ID string

	// Title - название курса. Используется для детерминированного
	// имени бейджа "<Title> Graduate" и имён когорт.
	Title string

	// Description - описание курса.
	Description string

	// InstructorID - идентификатор инструктора-владельца.
	InstructorID string

	// Status - статус публикации.
	Status Status

	// Price - цена курса (0 для бесплатных).
	Price float64

	// Thumbnail - ссылка на обложку (опционально).
	Thumbnail string

	// CreatedAt - время создания.
	CreatedAt time.Time
}

// Module - модуль курса. Принадлежит ровно одному курсу.
// Вопросы модуля не важны для ядра - только идентичность и принадлежность.
type Module struct {
	// ID - уникальный идентификатор модуля (UUID).
	ID string

	// CourseID - курс, которому принадлежит модуль.
	CourseID string

	// Title - название модуля.
	Title string

	// ContentLink - ссылка на учебный материал (опционально).
	ContentLink string

	// Position - порядковый номер модуля в курсе (порядок вставки).
	Position int
}

// Enrollment - запись о зачислении ученика на курс.
type Enrollment struct {
	// LearnerID - идентификатор ученика.
	LearnerID string

	// CourseID - идентификатор курса.
	CourseID string

	// EnrolledAt - время зачисления.
	EnrolledAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyTitle - пустое название курса.
	ErrEmptyTitle = errors.New("course title is required")

	// ErrNoInstructor - не указан инструктор.
	ErrNoInstructor = errors.New("course instructor is required")
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// NewCourse создаёт курс с валидацией обязательных полей.
func NewCourse(id, title, description, instructorID string) (*Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if instructorID == "" {
		return nil, ErrNoInstructor
	}

	return &Course{
		ID:           id,
		Title:        title,
		Description:  description,
		InstructorID: instructorID,
		Status:       StatusPublished,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// BadgeName возвращает детерминированное имя бейджа выпускника курса.
func (c *Course) BadgeName() string {
	return c.Title + " Graduate"
}

// IsPublished возвращает true, если курс опубликован.
func (c *Course) IsPublished() bool {
	return c.Status == StatusPublished
}

// ModuleIDs возвращает идентификаторы модулей в порядке вставки.
func ModuleIDs(modules []Module) []string {
	ids := make([]string, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID)
	}
	return ids
}
