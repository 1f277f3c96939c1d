package redis

import (
	"context"
	"errors"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/assessment"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS CACHE
// Implements query.ProgressCache. Invalidated on every recorded
// submission; the TTL is only a backstop.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressCache caches per-(learner, course) progress in Redis.
type ProgressCache struct {
	cache *Cache
}

// NewProgressCache creates a new ProgressCache.
func NewProgressCache(cache *Cache) *ProgressCache {
	return &ProgressCache{cache: cache}
}

// cachedProgress is the wire form of a progress entry.
type cachedProgress struct {
	CompletedModules int `json:"completed_modules"`
	TotalModules     int `json:"total_modules"`
	Percent          int `json:"percent"`
}

// GetProgress returns the cached progress, or found=false on a miss.
func (c *ProgressCache) GetProgress(ctx context.Context, learnerID, courseID string) (assessment.Progress, bool, error) {
	var entry cachedProgress
	err := c.cache.Get(ctx, ProgressKey(learnerID, courseID), &entry)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return assessment.Progress{}, false, nil
		}
		return assessment.Progress{}, false, err
	}

	return assessment.Progress{
		CompletedModules: entry.CompletedModules,
		TotalModules:     entry.TotalModules,
		Percent:          shared.Percent(entry.Percent),
	}, true, nil
}

// SetProgress stores the progress.
func (c *ProgressCache) SetProgress(ctx context.Context, learnerID, courseID string, p assessment.Progress) error {
	entry := cachedProgress{
		CompletedModules: p.CompletedModules,
		TotalModules:     p.TotalModules,
		Percent:          p.Percent.Int(),
	}

	return c.cache.Set(ctx, ProgressKey(learnerID, courseID), entry, TTLProgressCache)
}

// InvalidateProgress drops the cached entry.
func (c *ProgressCache) InvalidateProgress(ctx context.Context, learnerID, courseID string) error {
	return c.cache.Delete(ctx, ProgressKey(learnerID, courseID))
}
