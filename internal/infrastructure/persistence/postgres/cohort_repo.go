package postgres

import (
	"context"
	"fmt"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/cohort"
)

// ══════════════════════════════════════════════════════════════════════════════
// COHORT REPOSITORY IMPLEMENTATION
// Batches are unique per (course_id, tier); memberships mirror the
// grant ledger's add-if-absent discipline.
// ══════════════════════════════════════════════════════════════════════════════

// CohortRepository implements cohort.Repository for PostgreSQL.
type CohortRepository struct {
	conn *Connection
}

// NewCohortRepository creates a new CohortRepository.
func NewCohortRepository(conn *Connection) *CohortRepository {
	return &CohortRepository{conn: conn}
}

// FindOrCreateBatch returns the batch of the (course, tier) pair,
// creating it on first use.
func (r *CohortRepository) FindOrCreateBatch(ctx context.Context, batch *cohort.Batch) (*cohort.Batch, error) {
	insert := `
		INSERT INTO batches (id, course_id, tier, name, instructor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (course_id, tier) DO NOTHING
	`

	_, err := r.conn.Exec(ctx, insert,
		batch.ID, batch.CourseID, batch.Tier, batch.Name, batch.InstructorID, batch.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert batch: %w", err)
	}

	query := `
		SELECT id, course_id, tier, name, instructor_id, created_at
		FROM batches
		WHERE course_id = $1 AND tier = $2
	`

	var b cohort.Batch
	err = r.conn.QueryRow(ctx, query, batch.CourseID, batch.Tier).Scan(
		&b.ID, &b.CourseID, &b.Tier, &b.Name, &b.InstructorID, &b.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}

	return &b, nil
}

// AddMember atomically inserts the membership if absent.
func (r *CohortRepository) AddMember(ctx context.Context, learnerID, batchID string) (bool, error) {
	query := `
		INSERT INTO batch_members (learner_id, batch_id)
		VALUES ($1, $2)
		ON CONFLICT (learner_id, batch_id) DO NOTHING
	`

	tag, err := r.conn.Exec(ctx, query, learnerID, batchID)
	if err != nil {
		return false, fmt.Errorf("failed to add member: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// RemoveMember deletes the membership. A missing row is a no-op.
func (r *CohortRepository) RemoveMember(ctx context.Context, learnerID, batchID string) error {
	query := `
		DELETE FROM batch_members
		WHERE learner_id = $1 AND batch_id = $2
	`

	if _, err := r.conn.Exec(ctx, query, learnerID, batchID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// BatchesOfCourse returns all batches of a course.
func (r *CohortRepository) BatchesOfCourse(ctx context.Context, courseID string) ([]*cohort.Batch, error) {
	query := `
		SELECT id, course_id, tier, name, instructor_id, created_at
		FROM batches
		WHERE course_id = $1
		ORDER BY created_at
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	return scanBatches(rows)
}

// BatchesOfLearner returns the batches the learner belongs to.
func (r *CohortRepository) BatchesOfLearner(ctx context.Context, learnerID string) ([]*cohort.Batch, error) {
	query := `
		SELECT b.id, b.course_id, b.tier, b.name, b.instructor_id, b.created_at
		FROM batch_members m
		JOIN batches b ON b.id = m.batch_id
		WHERE m.learner_id = $1
		ORDER BY m.joined_at
	`

	rows, err := r.conn.Query(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query learner batches: %w", err)
	}
	defer rows.Close()

	return scanBatches(rows)
}

// MembersOf returns the learner IDs of a batch.
func (r *CohortRepository) MembersOf(ctx context.Context, batchID string) ([]string, error) {
	query := `
		SELECT learner_id
		FROM batch_members
		WHERE batch_id = $1
		ORDER BY joined_at
	`

	rows, err := r.conn.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan learner id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// scanBatches scans batch rows into entities.
func scanBatches(rows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
}) ([]*cohort.Batch, error) {
	batches := make([]*cohort.Batch, 0)
	for rows.Next() {
		var b cohort.Batch
		if err := rows.Scan(&b.ID, &b.CourseID, &b.Tier, &b.Name, &b.InstructorID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, &b)
	}
	return batches, rows.Err()
}
