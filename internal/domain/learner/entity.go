// Package learner содержит доменную модель пользователя EdWeb Learning Hub.
// Аутентификация и выдача сессий живут за пределами ядра; здесь только
// учётная запись, её роль и хэш пароля.
package learner

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Role определяет роль пользователя в системе.
type Role string

const (
	// RoleLearner - ученик, проходит курсы и сдаёт квизы.
	RoleLearner Role = "learner"
	// RoleInstructor - инструктор, владеет курсами и когортами.
	RoleInstructor Role = "instructor"
	// RoleAdmin - администратор.
	RoleAdmin Role = "admin"
)

// IsValid проверяет корректность роли.
func (r Role) IsValid() bool {
	switch r {
	case RoleLearner, RoleInstructor, RoleAdmin:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: LEARNER
// ══════════════════════════════════════════════════════════════════════════════

// Learner - учётная запись пользователя (ученика или инструктора).
type Learner struct {
	// ID - уникальный идентификатор (UUID).
	ID string

	// Name - отображаемое имя.
	Name string

	// Email - адрес электронной почты (уникален).
	Email shared.Email

	// PasswordHash - bcrypt-хэш пароля.
	PasswordHash string

	// Role - роль в системе.
	Role Role

	// CreatedAt - время регистрации.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyName - пустое имя.
	ErrEmptyName = errors.New("learner name is required")

	// ErrWeakPassword - слишком короткий пароль.
	ErrWeakPassword = errors.New("password must be at least 8 chars")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewLearnerParams содержит параметры для создания учётной записи.
type NewLearnerParams struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     Role
}

// NewLearner создаёт учётную запись с валидацией и хэшированием пароля.
func NewLearner(params NewLearnerParams) (*Learner, error) {
	if params.ID == "" {
		return nil, errors.New("learner id is required")
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	email, err := shared.NewEmail(params.Email)
	if err != nil {
		return nil, err
	}

	if len(params.Password) < 8 {
		return nil, ErrWeakPassword
	}

	role := params.Role
	if role == "" {
		role = RoleLearner
	}
	if !role.IsValid() {
		return nil, shared.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Learner{
		ID:           params.ID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// CheckPassword сверяет пароль с хэшем.
func (l *Learner) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(l.PasswordHash), []byte(password)) == nil
}

// IsInstructor возвращает true для инструктора или администратора.
func (l *Learner) IsInstructor() bool {
	return l.Role == RoleInstructor || l.Role == RoleAdmin
}

// AvatarInitial возвращает первую букву имени для аватара в отчётах.
func (l *Learner) AvatarInitial() string {
	name := []rune(strings.TrimSpace(l.Name))
	if len(name) == 0 {
		return "U"
	}
	return strings.ToUpper(string(name[0]))
}
