// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/achievement"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/assessment"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/cohort"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/course"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/notification"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
	"github.com/edweb-hub/edweb-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT QUIZ COMMAND
// One quiz-module submission drives the whole derived-state pipeline:
// record the attempt, recompute progress, grant the completion badge
// (at most once), classify performance and place the learner into the
// matching tier cohort, emitting a notification per newly-crossed event.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitQuizCommand contains the data of one quiz submission.
type SubmitQuizCommand struct {
	// LearnerID is the internal ID of the submitting learner.
	LearnerID string

	// ModuleID is the module whose quiz was taken.
	ModuleID string

	// Score is the number of correct answers.
	Score int

	// TotalQuestions is the number of questions in the attempt.
	TotalQuestions int

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command before any persistence happens.
func (c SubmitQuizCommand) Validate() error {
	if c.LearnerID == "" {
		return shared.WrapError("assessment", "Submit", shared.ErrInvalidInput, "learner_id is required", nil)
	}
	if c.ModuleID == "" {
		return shared.WrapError("assessment", "Submit", shared.ErrInvalidInput, "module_id is required", nil)
	}
	if c.Score < 0 {
		return shared.ErrNegativeScore
	}
	if c.TotalQuestions < 0 {
		return shared.ErrNoQuestions
	}
	if c.TotalQuestions > 0 && c.Score > c.TotalQuestions {
		return shared.ErrScoreOutOfRange
	}
	return nil
}

// SubmitQuizResult contains the outcome of one submission.
type SubmitQuizResult struct {
	// Result is the persisted attempt record. Always set on success,
	// regardless of what the secondary effects did.
	Result *assessment.QuizResult

	// Progress is the recomputed course progress after this attempt.
	Progress assessment.Progress

	// BadgeGranted is true if this submission earned the course badge.
	BadgeGranted bool

	// BadgeName is the badge name when BadgeGranted is true.
	BadgeName string

	// CohortJoined is true if this submission placed the learner into
	// a batch they were not already in.
	CohortJoined bool

	// BatchName is the batch display name when CohortJoined is true.
	BatchName string

	// Tier is the performance tier computed on completion.
	Tier assessment.Tier

	// AverageScore is the unrounded average over all attempts.
	AverageScore float64

	// Events contains domain events generated by this submission.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// KEYED MUTEX
// Serializes submissions per (learner, course) so that concurrent
// completing submissions cannot both observe "not yet granted".
// The grant/membership tables carry unique constraints as the second
// line of defense.
// ══════════════════════════════════════════════════════════════════════════════

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

// Lock acquires the lock for the key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SubmitQuizHandler handles the SubmitQuizCommand.
type SubmitQuizHandler struct {
	courseRepo       course.Repository
	resultRepo       assessment.Repository
	achievementRepo  achievement.Repository
	cohortRepo       cohort.Repository
	notificationRepo notification.Repository
	publisher        shared.EventPublisher

	aggregator *assessment.ProgressAggregator
	classifier *assessment.PerformanceClassifier

	// ReassignCohorts switches the cohort policy from additive (the
	// default: earlier memberships are kept) to exclusive: joining a tier batch
	// removes the learner from other tiers' batches of the same course.
	reassignCohorts bool

	locks *keyedMutex
	log   *logger.Logger
}

// SubmitQuizHandlerConfig contains configuration for the handler.
type SubmitQuizHandlerConfig struct {
	// ReassignCohorts enables exclusive cohort reassignment.
	ReassignCohorts bool

	// Logger for structured logging.
	Logger *logger.Logger
}

// NewSubmitQuizHandler creates a new SubmitQuizHandler.
func NewSubmitQuizHandler(
	courseRepo course.Repository,
	resultRepo assessment.Repository,
	achievementRepo achievement.Repository,
	cohortRepo cohort.Repository,
	notificationRepo notification.Repository,
	publisher shared.EventPublisher,
	config SubmitQuizHandlerConfig,
) *SubmitQuizHandler {
	log := config.Logger
	if log == nil {
		log = logger.Default()
	}

	return &SubmitQuizHandler{
		courseRepo:       courseRepo,
		resultRepo:       resultRepo,
		achievementRepo:  achievementRepo,
		cohortRepo:       cohortRepo,
		notificationRepo: notificationRepo,
		publisher:        publisher,
		aggregator:       assessment.NewProgressAggregator(),
		classifier:       assessment.NewPerformanceClassifier(),
		reassignCohorts:  config.ReassignCohorts,
		locks:            newKeyedMutex(),
		log:              log.With(logger.Component("submit_quiz")),
	}
}

// Handle executes one submission through the pipeline.
//
// The error boundary is asymmetric: validation and module resolution
// failures abort before anything is persisted, while failures in the
// badge/cohort/notification steps never roll back the recorded attempt.
func (h *SubmitQuizHandler) Handle(ctx context.Context, cmd SubmitQuizCommand) (*SubmitQuizResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Resolve module -> course before any write.
	module, err := h.courseRepo.GetModule(ctx, cmd.ModuleID)
	if err != nil {
		return nil, err
	}
	crs, err := h.courseRepo.GetByID(ctx, module.CourseID)
	if err != nil {
		return nil, err
	}

	// Serialize per (learner, course) for the whole read-modify-write
	// sequence, including the secondary effects.
	unlock := h.locks.Lock(cmd.LearnerID + "|" + crs.ID)
	defer unlock()

	result, err := assessment.NewQuizResult(
		uuid.NewString(),
		cmd.LearnerID,
		cmd.ModuleID,
		cmd.Score,
		cmd.TotalQuestions,
	)
	if err != nil {
		return nil, err
	}

	// Every attempt is recorded, including repeats after completion.
	if err := h.resultRepo.Append(ctx, result); err != nil {
		return nil, shared.WrapError("assessment", "Submit", shared.ErrStorage, "failed to append quiz result", err)
	}

	out := &SubmitQuizResult{
		Result: result,
		Events: make([]shared.Event, 0, 4),
	}

	recorded := shared.NewSubmissionRecordedEvent(
		result.ID, cmd.LearnerID, crs.ID, cmd.ModuleID, cmd.Score, cmd.TotalQuestions,
	)
	if cmd.CorrelationID != "" {
		recorded.BaseEvent = recorded.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	out.Events = append(out.Events, recorded)

	// Recompute progress; derived effects fire only on full completion.
	modules, err := h.courseRepo.ModulesOf(ctx, crs.ID)
	if err != nil {
		h.logSecondaryFailure(cmd, "load modules", err)
		h.publishAll(out.Events)
		return out, nil
	}
	moduleIDs := course.ModuleIDs(modules)

	results, err := h.resultRepo.ResultsFor(ctx, cmd.LearnerID, moduleIDs)
	if err != nil {
		h.logSecondaryFailure(cmd, "load results", err)
		h.publishAll(out.Events)
		return out, nil
	}

	out.Progress = h.aggregator.Compute(moduleIDs, results)

	if out.Progress.IsComplete() {
		out.Events = append(out.Events, shared.NewCourseCompletedEvent(
			cmd.LearnerID, crs.ID, out.Progress.CompletedModules, out.Progress.TotalModules,
		))
		h.applyCompletionEffects(ctx, crs, cmd.LearnerID, results, out)
	}

	h.publishAll(out.Events)

	return out, nil
}

// applyCompletionEffects runs the badge grant and cohort placement.
// Best-effort: a failure here is logged and left to the reconciliation
// worker; the recorded attempt is never rolled back.
func (h *SubmitQuizHandler) applyCompletionEffects(
	ctx context.Context,
	crs *course.Course,
	learnerID string,
	results []assessment.QuizResult,
	out *SubmitQuizResult,
) {
	// Badge grant, at most once per (learner, course).
	badge, err := achievement.NewGraduateBadge(uuid.NewString(), crs.Title)
	if err == nil {
		badge, err = h.achievementRepo.FindOrCreateBadge(ctx, badge)
	}
	if err != nil {
		h.log.Error("badge find-or-create failed",
			logger.LearnerID(learnerID), logger.CourseID(crs.ID), logger.Err(err))
	} else {
		granted, err := h.achievementRepo.AddGrant(ctx, learnerID, badge.ID)
		if err != nil {
			h.log.Error("badge grant failed",
				logger.LearnerID(learnerID), logger.CourseID(crs.ID), logger.Err(err))
		} else if granted {
			out.BadgeGranted = true
			out.BadgeName = badge.Name
			out.Events = append(out.Events, shared.NewBadgeGrantedEvent(learnerID, crs.ID, badge.ID, badge.Name))

			h.emit(ctx, learnerID,
				"🎓 Badge Earned!",
				fmt.Sprintf("Congratulations! You have earned the \"%s\" badge.", badge.Name),
				notification.TypeSuccess,
			)
		}
	}

	// Classify performance over ALL historical attempts.
	avg := h.classifier.AverageScore(results)
	tier := h.classifier.TierFor(avg)
	out.Tier = tier
	out.AverageScore = avg

	// Cohort placement, idempotent per (course, tier).
	batch, err := cohort.NewBatch(uuid.NewString(), crs.ID, crs.Title, tier.String(), crs.InstructorID)
	if err == nil {
		batch, err = h.cohortRepo.FindOrCreateBatch(ctx, batch)
	}
	if err != nil {
		h.log.Error("batch find-or-create failed",
			logger.LearnerID(learnerID), logger.CourseID(crs.ID), logger.TierName(tier.String()), logger.Err(err))
		return
	}

	joined, err := h.cohortRepo.AddMember(ctx, learnerID, batch.ID)
	if err != nil {
		h.log.Error("batch join failed",
			logger.LearnerID(learnerID), logger.CourseID(crs.ID), logger.TierName(tier.String()), logger.Err(err))
		return
	}

	if joined {
		out.CohortJoined = true
		out.BatchName = batch.Name
		out.Events = append(out.Events, shared.NewCohortJoinedEvent(learnerID, crs.ID, batch.ID, tier.String(), avg))

		h.emit(ctx, learnerID,
			"📊 Cohort Assigned",
			fmt.Sprintf("You joined %s with an average score of %d%%.", batch.Name, assessment.RoundedAverage(avg)),
			notification.TypeInfo,
		)
	}

	if h.reassignCohorts {
		h.evictFromOtherTiers(ctx, crs.ID, learnerID, batch, out)
	}
}

// evictFromOtherTiers removes the learner from other tiers' batches of
// the same course. Only active in exclusive reassignment mode.
func (h *SubmitQuizHandler) evictFromOtherTiers(
	ctx context.Context,
	courseID, learnerID string,
	current *cohort.Batch,
	out *SubmitQuizResult,
) {
	batches, err := h.cohortRepo.BatchesOfLearner(ctx, learnerID)
	if err != nil {
		h.log.Error("batch listing failed",
			logger.LearnerID(learnerID), logger.CourseID(courseID), logger.Err(err))
		return
	}

	for _, b := range batches {
		if b.CourseID != courseID || b.ID == current.ID {
			continue
		}
		if err := h.cohortRepo.RemoveMember(ctx, learnerID, b.ID); err != nil {
			h.log.Error("batch eviction failed",
				logger.LearnerID(learnerID), logger.String("batch_id", b.ID), logger.Err(err))
			continue
		}
		out.Events = append(out.Events, shared.NewCohortLeftEvent(learnerID, courseID, b.ID, b.Tier))
	}
}

// emit appends a user-facing notification. Pure append, no dedup of
// the text: only the grant/join events themselves are deduplicated.
func (h *SubmitQuizHandler) emit(ctx context.Context, userID, title, message string, typ notification.Type) {
	n, err := notification.New(uuid.NewString(), userID, title, message, typ)
	if err != nil {
		h.log.Error("notification build failed", logger.LearnerID(userID), logger.Err(err))
		return
	}
	if err := h.notificationRepo.Append(ctx, n); err != nil {
		h.log.Error("notification append failed", logger.LearnerID(userID), logger.Err(err))
	}
}

func (h *SubmitQuizHandler) publishAll(events []shared.Event) {
	if h.publisher == nil {
		return
	}
	for _, event := range events {
		if err := h.publisher.Publish(event); err != nil {
			h.log.Warn("event publish failed",
				logger.String("event_type", string(event.EventType())), logger.Err(err))
		}
	}
}

func (h *SubmitQuizHandler) logSecondaryFailure(cmd SubmitQuizCommand, step string, err error) {
	h.log.Error("secondary effect skipped: "+step,
		logger.LearnerID(cmd.LearnerID),
		logger.ModuleID(cmd.ModuleID),
		logger.Err(err),
	)
}
