package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/assessment"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ RESULT REPOSITORY IMPLEMENTATION
// Append-only journal: no UPDATE or DELETE paths exist here.
// ══════════════════════════════════════════════════════════════════════════════

// QuizResultRepository implements assessment.Repository for PostgreSQL.
type QuizResultRepository struct {
	conn *Connection
}

// NewQuizResultRepository creates a new QuizResultRepository.
func NewQuizResultRepository(conn *Connection) *QuizResultRepository {
	return &QuizResultRepository{conn: conn}
}

// Append inserts an attempt record.
func (r *QuizResultRepository) Append(ctx context.Context, result *assessment.QuizResult) error {
	query := `
		INSERT INTO quiz_results (id, learner_id, module_id, score, total_questions, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		result.ID,
		result.LearnerID,
		result.ModuleID,
		result.Score,
		result.TotalQuestions,
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append quiz result: %w", err)
	}

	return nil
}

// ResultsFor returns all attempts of a learner on the given modules,
// oldest first.
func (r *QuizResultRepository) ResultsFor(ctx context.Context, learnerID string, moduleIDs []string) ([]assessment.QuizResult, error) {
	if len(moduleIDs) == 0 {
		return []assessment.QuizResult{}, nil
	}

	placeholders := make([]string, len(moduleIDs))
	args := make([]interface{}, 0, len(moduleIDs)+1)
	args = append(args, learnerID)
	for i, id := range moduleIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT id, learner_id, module_id, score, total_questions, completed_at
		FROM quiz_results
		WHERE learner_id = $1 AND module_id IN (%s)
		ORDER BY completed_at
	`, strings.Join(placeholders, ", "))

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz results: %w", err)
	}
	defer rows.Close()

	results := make([]assessment.QuizResult, 0)
	for rows.Next() {
		var qr assessment.QuizResult
		if err := rows.Scan(&qr.ID, &qr.LearnerID, &qr.ModuleID, &qr.Score, &qr.TotalQuestions, &qr.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz result: %w", err)
		}
		results = append(results, qr)
	}

	return results, rows.Err()
}

// AttemptedModules returns the distinct modules from the given set the
// learner has attempted at least once.
func (r *QuizResultRepository) AttemptedModules(ctx context.Context, learnerID string, moduleIDs []string) ([]string, error) {
	if len(moduleIDs) == 0 {
		return []string{}, nil
	}

	placeholders := make([]string, len(moduleIDs))
	args := make([]interface{}, 0, len(moduleIDs)+1)
	args = append(args, learnerID)
	for i, id := range moduleIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT module_id
		FROM quiz_results
		WHERE learner_id = $1 AND module_id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempted modules: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan module id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CompletedPairs returns, for the given modules, every learner with at
// least one attempt and the distinct modules they attempted. Used by
// the reconciliation worker to replay missed completion effects.
func (r *QuizResultRepository) CompletedPairs(ctx context.Context, moduleIDs []string) (map[string][]string, error) {
	if len(moduleIDs) == 0 {
		return map[string][]string{}, nil
	}

	placeholders := make([]string, len(moduleIDs))
	args := make([]interface{}, len(moduleIDs))
	for i, id := range moduleIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT learner_id, module_id
		FROM quiz_results
		WHERE module_id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed pairs: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string][]string)
	for rows.Next() {
		var learnerID, moduleID string
		if err := rows.Scan(&learnerID, &moduleID); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		pairs[learnerID] = append(pairs[learnerID], moduleID)
	}

	return pairs, rows.Err()
}
