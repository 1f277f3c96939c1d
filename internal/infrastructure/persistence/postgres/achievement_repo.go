package postgres

import (
	"context"
	"fmt"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/achievement"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT REPOSITORY IMPLEMENTATION
// The grant ledger is where the at-most-once guarantee is enforced:
// composite primary key + ON CONFLICT DO NOTHING, granted = rows affected.
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRepository implements achievement.Repository for PostgreSQL.
type AchievementRepository struct {
	conn *Connection
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(conn *Connection) *AchievementRepository {
	return &AchievementRepository{conn: conn}
}

// FindOrCreateBadge returns the badge with the given name, creating it
// on first use. The name is unique; a concurrent creator wins the race
// and both callers see the same row.
func (r *AchievementRepository) FindOrCreateBadge(ctx context.Context, badge *achievement.Badge) (*achievement.Badge, error) {
	insert := `
		INSERT INTO badges (id, name, description, icon, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING
	`

	_, err := r.conn.Exec(ctx, insert,
		badge.ID, badge.Name, badge.Description, badge.Icon, badge.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert badge: %w", err)
	}

	// Read back whichever row holds the name now.
	query := `
		SELECT id, name, description, icon, created_at
		FROM badges
		WHERE name = $1
	`

	var b achievement.Badge
	err = r.conn.QueryRow(ctx, query, badge.Name).Scan(
		&b.ID, &b.Name, &b.Description, &b.Icon, &b.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read badge: %w", err)
	}

	return &b, nil
}

// AddGrant atomically inserts the grant if absent.
func (r *AchievementRepository) AddGrant(ctx context.Context, learnerID, badgeID string) (bool, error) {
	query := `
		INSERT INTO badge_grants (learner_id, badge_id)
		VALUES ($1, $2)
		ON CONFLICT (learner_id, badge_id) DO NOTHING
	`

	tag, err := r.conn.Exec(ctx, query, learnerID, badgeID)
	if err != nil {
		return false, fmt.Errorf("failed to add grant: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// HasGrant checks whether the learner holds the badge.
func (r *AchievementRepository) HasGrant(ctx context.Context, learnerID, badgeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM badge_grants WHERE learner_id = $1 AND badge_id = $2
		)
	`

	var exists bool
	if err := r.conn.QueryRow(ctx, query, learnerID, badgeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check grant: %w", err)
	}

	return exists, nil
}

// GrantsOf returns all badges of a learner.
func (r *AchievementRepository) GrantsOf(ctx context.Context, learnerID string) ([]*achievement.Badge, error) {
	query := `
		SELECT b.id, b.name, b.description, b.icon, b.created_at
		FROM badge_grants g
		JOIN badges b ON b.id = g.badge_id
		WHERE g.learner_id = $1
		ORDER BY g.granted_at
	`

	rows, err := r.conn.Query(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grants: %w", err)
	}
	defer rows.Close()

	badges := make([]*achievement.Badge, 0)
	for rows.Next() {
		var b achievement.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, &b)
	}

	return badges, rows.Err()
}
