package redis

import (
	"context"
	"errors"

	"github.com/edweb-hub/edweb-learning-hub/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPORT CACHE
// Implements query.ReportCache. TTL-bounded: reports are derived from
// the whole attempt journal, so a short TTL trades a minute of
// staleness for not recomputing on every dashboard refresh.
// ══════════════════════════════════════════════════════════════════════════════

// ReportCache caches per-instructor learner reports in Redis.
type ReportCache struct {
	cache *Cache
}

// NewReportCache creates a new ReportCache.
func NewReportCache(cache *Cache) *ReportCache {
	return &ReportCache{cache: cache}
}

// GetReport returns the cached report, or found=false on a miss.
func (c *ReportCache) GetReport(ctx context.Context, instructorID string) (*query.LearnerReport, bool, error) {
	var report query.LearnerReport
	err := c.cache.Get(ctx, ReportKey(instructorID), &report)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &report, true, nil
}

// SetReport stores the report.
func (c *ReportCache) SetReport(ctx context.Context, instructorID string, report *query.LearnerReport) error {
	return c.cache.Set(ctx, ReportKey(instructorID), report, TTLReportCache)
}
