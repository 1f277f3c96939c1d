// Package http implements the REST API of EdWeb Learning Hub.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/edweb-hub/edweb-learning-hub/internal/application/command"
	"github.com/edweb-hub/edweb-learning-hub/internal/application/query"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
	"github.com/edweb-hub/edweb-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// Domain error kinds map to HTTP status codes in one place so every
// endpoint reports failures the same way.
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps a domain error to an HTTP error response.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsAlreadyExists(err):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, shared.ErrInvalidState):
		writeJSONError(w, http.StatusConflict, "invalid_state", err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// decodeBody decodes a JSON request body into dst, with a 1MB size cap.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return false
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return false
	}
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "EdWeb Learning Hub API",
		"version":     "v1",
		"description": "REST API for EdWeb Learning Hub - submission-driven progress, badges and cohorts",
		"endpoints": map[string]string{
			"health":        "/health",
			"register":      "/api/v1/auth/register",
			"submit":        "/api/v1/modules/{id}/quiz/submit",
			"my_courses":    "/api/v1/courses/my",
			"my_learners":   "/api/v1/courses/my-learners",
			"notifications": "/api/v1/notifications",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// registerRequest is the payload for POST /api/v1/auth/register.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// registerResponse never echoes the password or its hash.
type registerResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

// handleRegister handles POST /api/v1/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterLearnerHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Registration handler not configured")
		return
	}

	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RegisterLearnerHandler.Handle(r.Context(), command.RegisterLearnerCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	l := result.Learner
	writeJSON(w, http.StatusCreated, registerResponse{
		ID:           l.ID,
		Name:         l.Name,
		Email:        l.Email.String(),
		Role:         string(l.Role),
		RegisteredAt: l.CreatedAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// enrollRequest is the payload for POST /api/v1/courses/{id}/enroll.
type enrollRequest struct {
	LearnerID string `json:"learner_id"`
}

// handleEnroll handles POST /api/v1/courses/{id}/enroll
func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	if s.deps.EnrollLearnerHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Enrollment handler not configured")
		return
	}

	courseID := r.PathValue("id")
	if courseID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Course ID is required")
		return
	}

	var req enrollRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.EnrollLearnerHandler.Handle(r.Context(), command.EnrollLearnerCommand{
		LearnerID: req.LearnerID,
		CourseID:  courseID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"enrolled":     result.Enrolled,
		"course_id":    result.Course.ID,
		"course_title": result.Course.Title,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// submitQuizRequest is the payload for POST /api/v1/modules/{id}/quiz/submit.
type submitQuizRequest struct {
	LearnerID      string `json:"learner_id"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
}

// submitQuizResponse reports what the submission changed.
type submitQuizResponse struct {
	ResultID         string  `json:"result_id"`
	ProgressPercent  int     `json:"progress_percent"`
	CompletedModules int     `json:"completed_modules"`
	TotalModules     int     `json:"total_modules"`
	CourseCompleted  bool    `json:"course_completed"`
	BadgeGranted     bool    `json:"badge_granted"`
	BadgeName        string  `json:"badge_name,omitempty"`
	CohortJoined     bool    `json:"cohort_joined"`
	BatchName        string  `json:"batch_name,omitempty"`
	Tier             string  `json:"tier,omitempty"`
	AverageScore     float64 `json:"average_score,omitempty"`
}

// handleSubmitQuiz handles POST /api/v1/modules/{id}/quiz/submit
func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	if s.deps.SubmitQuizHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Submission handler not configured")
		return
	}

	moduleID := r.PathValue("id")
	if moduleID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Module ID is required")
		return
	}

	var req submitQuizRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.SubmitQuizHandler.Handle(r.Context(), command.SubmitQuizCommand{
		LearnerID:      req.LearnerID,
		ModuleID:       moduleID,
		Score:          req.Score,
		TotalQuestions: req.TotalQuestions,
		CorrelationID:  getRequestID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitQuizResponse{
		ResultID:         result.Result.ID,
		ProgressPercent:  result.Progress.Percent.Int(),
		CompletedModules: result.Progress.CompletedModules,
		TotalModules:     result.Progress.TotalModules,
		CourseCompleted:  result.Progress.IsComplete(),
		BadgeGranted:     result.BadgeGranted,
		BadgeName:        result.BadgeName,
		CohortJoined:     result.CohortJoined,
		BatchName:        result.BatchName,
		Tier:             result.Tier.String(),
		AverageScore:     result.AverageScore,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetMyCourses handles GET /api/v1/courses/my
func (s *Server) handleGetMyCourses(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetMyCoursesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Courses handler not configured")
		return
	}

	learnerID := getQueryParam(r, "learner_id", "")
	if learnerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "learner_id query parameter is required")
		return
	}

	result, err := s.deps.GetMyCoursesHandler.Handle(r.Context(), query.GetMyCoursesQuery{
		LearnerID: learnerID,
	})
	if err != nil {
		s.logger.Error("failed to get courses", logger.Err(err), logger.LearnerID(learnerID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetLearnerReport handles GET /api/v1/courses/my-learners
func (s *Server) handleGetLearnerReport(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetLearnerReportHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Report handler not configured")
		return
	}

	instructorID := getQueryParam(r, "instructor_id", "")
	if instructorID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "instructor_id query parameter is required")
		return
	}

	result, err := s.deps.GetLearnerReportHandler.Handle(r.Context(), query.GetLearnerReportQuery{
		InstructorID: instructorID,
	})
	if err != nil {
		s.logger.Error("failed to build learner report", logger.Err(err), logger.String("instructor_id", instructorID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetNotifications handles GET /api/v1/notifications
func (s *Server) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetNotificationsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notifications handler not configured")
		return
	}

	userID := getQueryParam(r, "user_id", "")
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "user_id query parameter is required")
		return
	}

	result, err := s.deps.GetNotificationsHandler.Handle(r.Context(), query.GetNotificationsQuery{
		UserID: userID,
	})
	if err != nil {
		s.logger.Error("failed to get notifications", logger.Err(err), logger.String("user_id", userID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// markReadRequest is the payload for PUT /api/v1/notifications/{id}/read.
type markReadRequest struct {
	UserID string `json:"user_id"`
}

// handleMarkNotificationRead handles PUT /api/v1/notifications/{id}/read
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if s.deps.MarkNotificationReadHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notifications handler not configured")
		return
	}

	notificationID := r.PathValue("id")
	if notificationID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Notification ID is required")
		return
	}

	var req markReadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := s.deps.MarkNotificationReadHandler.Handle(r.Context(), command.MarkNotificationReadCommand{
		NotificationID: notificationID,
		UserID:         req.UserID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
