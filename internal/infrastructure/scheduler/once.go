package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
)

// onceSchedule activates a single time at an absolute instant. A zero Next
// tells cron the entry never runs again.
type onceSchedule struct {
	at time.Time
}

// Once returns a schedule that activates exactly once, at at.
func Once(at time.Time) cron.Schedule {
	return onceSchedule{at: at}
}

func (s onceSchedule) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}
	return time.Time{}
}
