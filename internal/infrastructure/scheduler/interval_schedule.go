package scheduler

import (
	"fmt"
	"time"
)

// IntervalSchedule fires at a fixed period from the previous run.
// The award reconciler runs on one; there is no calendar alignment,
// ticks drift with job duration.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a schedule with the given period.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{
		Interval: interval,
	}
}

// Next returns the fire time following t.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}
