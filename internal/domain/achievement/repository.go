package achievement

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Журнал выдач - глобальное изменяемое множество. Добавление обязано
// быть атомарным "add-if-absent": уникальное ограничение хранилища или
// эквивалент, а не чтение-проверка-запись.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции с бейджами и журналом выдач.
type Repository interface {
	// FindOrCreateBadge возвращает бейдж с данным именем, создавая его
	// при первом обращении. На одно имя - не более одной записи.
	FindOrCreateBadge(ctx context.Context, badge *Badge) (*Badge, error)

	// AddGrant атомарно добавляет выдачу, если её ещё нет.
	// Возвращает granted=true, только если запись создана этим вызовом.
	AddGrant(ctx context.Context, learnerID, badgeID string) (granted bool, err error)

	// HasGrant проверяет, держит ли ученик бейдж.
	HasGrant(ctx context.Context, learnerID, badgeID string) (bool, error)

	// GrantsOf возвращает все бейджи ученика.
	GrantsOf(ctx context.Context, learnerID string) ([]*Badge, error)
}
