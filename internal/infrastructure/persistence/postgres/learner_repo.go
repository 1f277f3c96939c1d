package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/learner"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LearnerRepository implements learner.Repository for PostgreSQL.
type LearnerRepository struct {
	conn *Connection
}

// NewLearnerRepository creates a new LearnerRepository.
func NewLearnerRepository(conn *Connection) *LearnerRepository {
	return &LearnerRepository{conn: conn}
}

// Create creates a new learner account.
func (r *LearnerRepository) Create(ctx context.Context, l *learner.Learner) error {
	query := `
		INSERT INTO learners (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		l.ID,
		l.Name,
		l.Email.String(),
		l.PasswordHash,
		string(l.Role),
		l.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrLearnerAlreadyExists
		}
		return fmt.Errorf("failed to create learner: %w", err)
	}

	return nil
}

// GetByID returns a learner by internal ID.
func (r *LearnerRepository) GetByID(ctx context.Context, id string) (*learner.Learner, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM learners
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanLearner(row)
}

// GetByEmail returns a learner by email.
func (r *LearnerRepository) GetByEmail(ctx context.Context, email shared.Email) (*learner.Learner, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM learners
		WHERE email = $1
	`

	row := r.conn.QueryRow(ctx, query, email.String())
	return r.scanLearner(row)
}

// GetByIDs returns learners by a list of IDs. Missing IDs are skipped.
func (r *LearnerRepository) GetByIDs(ctx context.Context, ids []string) ([]*learner.Learner, error) {
	if len(ids) == 0 {
		return []*learner.Learner{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, name, email, password_hash, role, created_at
		FROM learners
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query learners: %w", err)
	}
	defer rows.Close()

	learners := make([]*learner.Learner, 0, len(ids))
	for rows.Next() {
		l, err := r.scanLearner(rows)
		if err != nil {
			return nil, err
		}
		learners = append(learners, l)
	}

	return learners, rows.Err()
}

// scanLearner scans a single learner row.
func (r *LearnerRepository) scanLearner(row interface{ Scan(...interface{}) error }) (*learner.Learner, error) {
	var l learner.Learner
	var email, role string

	err := row.Scan(&l.ID, &l.Name, &email, &l.PasswordHash, &role, &l.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrLearnerNotFound
		}
		return nil, fmt.Errorf("failed to scan learner: %w", err)
	}

	l.Email = shared.Email(email)
	l.Role = learner.Role(role)

	return &l, nil
}
