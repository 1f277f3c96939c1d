package postgres

import (
	"context"
	"fmt"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/course"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// Read-only from the pipeline's point of view; course CRUD lives in a
// separate admin surface.
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

// GetByID returns a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, courseID string) (*course.Course, error) {
	query := `
		SELECT id, title, description, instructor_id, status, price, thumbnail, created_at
		FROM courses
		WHERE id = $1
	`

	var c course.Course
	var status string

	err := r.conn.QueryRow(ctx, query, courseID).Scan(
		&c.ID, &c.Title, &c.Description, &c.InstructorID, &status, &c.Price, &c.Thumbnail, &c.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	c.Status = course.Status(status)
	return &c, nil
}

// GetByInstructor returns all courses of an instructor.
func (r *CourseRepository) GetByInstructor(ctx context.Context, instructorID string) ([]*course.Course, error) {
	query := `
		SELECT id, title, description, instructor_id, status, price, thumbnail, created_at
		FROM courses
		WHERE instructor_id = $1
		ORDER BY created_at
	`

	rows, err := r.conn.Query(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*course.Course, 0)
	for rows.Next() {
		var c course.Course
		var status string

		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &status, &c.Price, &c.Thumbnail, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}

		c.Status = course.Status(status)
		courses = append(courses, &c)
	}

	return courses, rows.Err()
}

// All returns every course. Used by the reconciliation worker.
func (r *CourseRepository) All(ctx context.Context) ([]*course.Course, error) {
	query := `
		SELECT id, title, description, instructor_id, status, price, thumbnail, created_at
		FROM courses
		ORDER BY created_at
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*course.Course, 0)
	for rows.Next() {
		var c course.Course
		var status string

		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &status, &c.Price, &c.Thumbnail, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}

		c.Status = course.Status(status)
		courses = append(courses, &c)
	}

	return courses, rows.Err()
}

// GetModule returns a module by ID.
func (r *CourseRepository) GetModule(ctx context.Context, moduleID string) (*course.Module, error) {
	query := `
		SELECT id, course_id, title, content_link, position
		FROM modules
		WHERE id = $1
	`

	var m course.Module
	err := r.conn.QueryRow(ctx, query, moduleID).Scan(
		&m.ID, &m.CourseID, &m.Title, &m.ContentLink, &m.Position,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	return &m, nil
}

// ModulesOf returns the modules of a course in insertion order.
func (r *CourseRepository) ModulesOf(ctx context.Context, courseID string) ([]course.Module, error) {
	query := `
		SELECT id, course_id, title, content_link, position
		FROM modules
		WHERE course_id = $1
		ORDER BY position
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	modules := make([]course.Module, 0)
	for rows.Next() {
		var m course.Module
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.ContentLink, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, m)
	}

	return modules, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// EnrollmentRepository implements course.EnrollmentRepository for PostgreSQL.
type EnrollmentRepository struct {
	conn *Connection
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(conn *Connection) *EnrollmentRepository {
	return &EnrollmentRepository{conn: conn}
}

// Add inserts the enrollment if absent. The composite primary key plus
// ON CONFLICT DO NOTHING makes the call idempotent; RowsAffected tells
// whether this call created the row.
func (r *EnrollmentRepository) Add(ctx context.Context, e course.Enrollment) (bool, error) {
	query := `
		INSERT INTO enrollments (learner_id, course_id, enrolled_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (learner_id, course_id) DO NOTHING
	`

	tag, err := r.conn.Exec(ctx, query, e.LearnerID, e.CourseID, e.EnrolledAt)
	if err != nil {
		return false, fmt.Errorf("failed to add enrollment: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// EnrollmentsOf returns all enrollments of a course.
func (r *EnrollmentRepository) EnrollmentsOf(ctx context.Context, courseID string) ([]course.Enrollment, error) {
	query := `
		SELECT learner_id, course_id, enrolled_at
		FROM enrollments
		WHERE course_id = $1
		ORDER BY enrolled_at
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]course.Enrollment, 0)
	for rows.Next() {
		var e course.Enrollment
		if err := rows.Scan(&e.LearnerID, &e.CourseID, &e.EnrolledAt); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}

	return enrollments, rows.Err()
}

// CoursesOf returns the course IDs the learner is enrolled in.
func (r *EnrollmentRepository) CoursesOf(ctx context.Context, learnerID string) ([]string, error) {
	query := `
		SELECT course_id
		FROM enrollments
		WHERE learner_id = $1
		ORDER BY enrolled_at
	`

	rows, err := r.conn.Query(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan course id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// IsEnrolled checks whether the learner is enrolled in the course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, learnerID, courseID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM enrollments WHERE learner_id = $1 AND course_id = $2
		)
	`

	var exists bool
	if err := r.conn.QueryRow(ctx, query, learnerID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}

	return exists, nil
}
