// Package eventhandler contains subscribers wired to the event bus.
package eventhandler

import (
	"context"

	"github.com/edweb-hub/edweb-learning-hub/internal/application/query"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
	"github.com/edweb-hub/edweb-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS CACHE INVALIDATOR
// Every recorded submission can change the learner's progress for the
// course, so the cached entry is dropped. The instructor report cache
// is TTL-bounded instead: invalidating it would require resolving the
// course's instructor on every submission.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressCacheInvalidator drops the cached progress of the (learner,
// course) pair whenever a submission is recorded.
type ProgressCacheInvalidator struct {
	cache query.ProgressCache
	log   *logger.Logger
}

// NewProgressCacheInvalidator creates a new ProgressCacheInvalidator.
func NewProgressCacheInvalidator(cache query.ProgressCache, log *logger.Logger) *ProgressCacheInvalidator {
	if log == nil {
		log = logger.Default()
	}

	return &ProgressCacheInvalidator{
		cache: cache,
		log:   log.With(logger.Component("progress_cache_invalidator")),
	}
}

// Name implements shared.EventHandler.
func (h *ProgressCacheInvalidator) Name() string {
	return "progress-cache-invalidator"
}

// Handle implements shared.EventHandler.
func (h *ProgressCacheInvalidator) Handle(ctx context.Context, event shared.Event) error {
	e, ok := event.(shared.SubmissionRecordedEvent)
	if !ok {
		return nil
	}

	if err := h.cache.InvalidateProgress(ctx, e.LearnerID, e.CourseID); err != nil {
		h.log.Warn("progress cache invalidation failed",
			logger.LearnerID(e.LearnerID),
			logger.CourseID(e.CourseID),
			logger.Err(err),
		)
		return err
	}

	return nil
}
