// Package jobs contains the scheduled background jobs of EdWeb Learning Hub.
package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/achievement"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/assessment"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/cohort"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/course"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/notification"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
	"github.com/edweb-hub/edweb-learning-hub/pkg/logger"
	"github.com/edweb-hub/edweb-learning-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECONCILE AWARDS JOB
// The submission pipeline records the attempt first and applies badge and
// cohort effects best-effort afterwards. When one of those effects fails,
// the attempt journal is the source of truth: this job rescans it and
// replays the missing grants and memberships. All writes are add-if-absent,
// so replaying an effect that already landed is a no-op.
// ══════════════════════════════════════════════════════════════════════════════

// ReconcileAwardsJob replays badge grants and cohort memberships for
// learners whose attempt journal shows a completed course.
type ReconcileAwardsJob struct {
	courseRepo       course.Repository
	resultRepo       assessment.Repository
	achievementRepo  achievement.Repository
	cohortRepo       cohort.Repository
	notificationRepo notification.Repository
	publisher        shared.EventPublisher

	classifier *assessment.PerformanceClassifier
	retrier    *retry.Retrier
	log        *logger.Logger
}

// NewReconcileAwardsJob creates a new ReconcileAwardsJob.
func NewReconcileAwardsJob(
	courseRepo course.Repository,
	resultRepo assessment.Repository,
	achievementRepo achievement.Repository,
	cohortRepo cohort.Repository,
	notificationRepo notification.Repository,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *ReconcileAwardsJob {
	if log == nil {
		log = logger.Default()
	}

	return &ReconcileAwardsJob{
		courseRepo:       courseRepo,
		resultRepo:       resultRepo,
		achievementRepo:  achievementRepo,
		cohortRepo:       cohortRepo,
		notificationRepo: notificationRepo,
		publisher:        publisher,
		classifier:       assessment.NewPerformanceClassifier(),
		retrier:          retry.ReconcileRetrier(),
		log:              log.With(logger.Component("reconcile_awards")),
	}
}

// Name implements scheduler.Job.
func (j *ReconcileAwardsJob) Name() string {
	return "reconcile-awards"
}

// Description implements scheduler.Job.
func (j *ReconcileAwardsJob) Description() string {
	return "Replays badge grants and cohort placements missed by the submission pipeline"
}

// Run implements scheduler.Job.
func (j *ReconcileAwardsJob) Run(ctx context.Context) error {
	courses, err := j.courseRepo.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	var grantsRepaired, joinsRepaired int

	for _, crs := range courses {
		if err := ctx.Err(); err != nil {
			return err
		}

		grants, joins, err := j.reconcileCourse(ctx, crs)
		if err != nil {
			// One broken course must not starve the others.
			j.log.Error("course reconciliation failed",
				logger.CourseID(crs.ID), logger.Err(err))
			continue
		}

		grantsRepaired += grants
		joinsRepaired += joins
	}

	j.log.Info("reconciliation pass completed",
		logger.Int("courses_scanned", len(courses)),
		logger.Int("grants_repaired", grantsRepaired),
		logger.Int("joins_repaired", joinsRepaired),
	)

	if j.publisher != nil {
		event := shared.NewReconcileCompletedEvent(len(courses), grantsRepaired, joinsRepaired)
		if err := j.publisher.Publish(event); err != nil {
			j.log.Warn("event publish failed",
				logger.String("event_type", string(event.EventType())), logger.Err(err))
		}
	}

	return nil
}

// reconcileCourse replays completion effects for every learner whose
// journal shows an attempt on every module of the course.
func (j *ReconcileAwardsJob) reconcileCourse(ctx context.Context, crs *course.Course) (grants, joins int, err error) {
	modules, err := j.courseRepo.ModulesOf(ctx, crs.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load modules: %w", err)
	}

	// A course with no modules can never be completed.
	if len(modules) == 0 {
		return 0, 0, nil
	}
	moduleIDs := course.ModuleIDs(modules)

	pairs, err := j.resultRepo.CompletedPairs(ctx, moduleIDs)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load attempted pairs: %w", err)
	}

	for learnerID, attempted := range pairs {
		if len(attempted) < len(moduleIDs) {
			continue
		}

		granted, joined, err := j.replayEffects(ctx, crs, learnerID, moduleIDs)
		if err != nil {
			j.log.Error("effect replay failed",
				logger.LearnerID(learnerID), logger.CourseID(crs.ID), logger.Err(err))
			continue
		}

		if granted {
			grants++
		}
		if joined {
			joins++
		}
	}

	return grants, joins, nil
}

// replayEffects re-runs the badge grant and cohort placement for one
// completed (learner, course) pair. Identical semantics to the online
// pipeline: add-if-absent writes, notifications only on a fresh grant
// or join.
func (j *ReconcileAwardsJob) replayEffects(ctx context.Context, crs *course.Course, learnerID string, moduleIDs []string) (granted, joined bool, err error) {
	badge, err := achievement.NewGraduateBadge(uuid.NewString(), crs.Title)
	if err != nil {
		return false, false, err
	}

	err = j.retrier.Do(ctx, func(ctx context.Context) error {
		b, err := j.achievementRepo.FindOrCreateBadge(ctx, badge)
		if err != nil {
			return retry.Retryable(err)
		}
		badge = b
		return nil
	})
	if err != nil {
		return false, false, fmt.Errorf("badge find-or-create: %w", err)
	}

	err = j.retrier.Do(ctx, func(ctx context.Context) error {
		g, err := j.achievementRepo.AddGrant(ctx, learnerID, badge.ID)
		if err != nil {
			return retry.Retryable(err)
		}
		granted = g
		return nil
	})
	if err != nil {
		return false, false, fmt.Errorf("badge grant: %w", err)
	}

	if granted {
		j.log.Info("repaired badge grant",
			logger.LearnerID(learnerID), logger.CourseID(crs.ID), logger.BadgeName(badge.Name))

		j.emit(ctx, learnerID,
			"🎓 Badge Earned!",
			fmt.Sprintf("Congratulations! You have earned the \"%s\" badge.", badge.Name),
			notification.TypeSuccess,
		)
		j.publish(shared.NewBadgeGrantedEvent(learnerID, crs.ID, badge.ID, badge.Name))
	}

	results, err := j.resultRepo.ResultsFor(ctx, learnerID, moduleIDs)
	if err != nil {
		return granted, false, fmt.Errorf("load results: %w", err)
	}

	avg := j.classifier.AverageScore(results)
	tier := j.classifier.TierFor(avg)

	batch, err := cohort.NewBatch(uuid.NewString(), crs.ID, crs.Title, tier.String(), crs.InstructorID)
	if err != nil {
		return granted, false, err
	}

	err = j.retrier.Do(ctx, func(ctx context.Context) error {
		b, err := j.cohortRepo.FindOrCreateBatch(ctx, batch)
		if err != nil {
			return retry.Retryable(err)
		}
		batch = b
		return nil
	})
	if err != nil {
		return granted, false, fmt.Errorf("batch find-or-create: %w", err)
	}

	err = j.retrier.Do(ctx, func(ctx context.Context) error {
		jn, err := j.cohortRepo.AddMember(ctx, learnerID, batch.ID)
		if err != nil {
			return retry.Retryable(err)
		}
		joined = jn
		return nil
	})
	if err != nil {
		return granted, false, fmt.Errorf("batch join: %w", err)
	}

	if joined {
		j.log.Info("repaired cohort placement",
			logger.LearnerID(learnerID), logger.CourseID(crs.ID), logger.TierName(tier.String()))

		j.emit(ctx, learnerID,
			"📊 Cohort Assigned",
			fmt.Sprintf("You joined %s with an average score of %d%%.", batch.Name, assessment.RoundedAverage(avg)),
			notification.TypeInfo,
		)
		j.publish(shared.NewCohortJoinedEvent(learnerID, crs.ID, batch.ID, tier.String(), avg))
	}

	return granted, joined, nil
}

// emit appends a user-facing notification. Best-effort, same as the
// online pipeline.
func (j *ReconcileAwardsJob) emit(ctx context.Context, userID, title, message string, typ notification.Type) {
	n, err := notification.New(uuid.NewString(), userID, title, message, typ)
	if err != nil {
		j.log.Error("notification build failed", logger.LearnerID(userID), logger.Err(err))
		return
	}
	if err := j.notificationRepo.Append(ctx, n); err != nil {
		j.log.Error("notification append failed", logger.LearnerID(userID), logger.Err(err))
	}
}

func (j *ReconcileAwardsJob) publish(event shared.Event) {
	if j.publisher == nil {
		return
	}
	if err := j.publisher.Publish(event); err != nil {
		j.log.Warn("event publish failed",
			logger.String("event_type", string(event.EventType())), logger.Err(err))
	}
}
