// Package schedule provides a reusable recurring trigger: given a cron
// expression and a reference time zone, it yields fire instants one at a
// time. Fire times are always recomputed from the current wall clock, so a
// window missed while the process was down is never replayed.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard 5-field expressions plus an optional leading
// seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Trigger computes recurring fire instants from a cron expression in a fixed
// reference time zone.
type Trigger struct {
	schedule cron.Schedule
	loc      *time.Location
}

// NewTrigger parses expr and returns a trigger anchored to loc. A malformed
// expression is an error; callers are expected to treat it as fatal at
// startup.
func NewTrigger(expr string, loc *time.Location) (*Trigger, error) {
	if loc == nil {
		loc = time.Local
	}
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return &Trigger{schedule: sched, loc: loc}, nil
}

// Next returns the first fire instant strictly after now, evaluated in the
// trigger's reference time zone.
func (t *Trigger) Next(now time.Time) time.Time {
	return t.schedule.Next(now.In(t.loc))
}

// Wait blocks until the next fire instant after the current time, or until
// ctx is cancelled. It returns the fire instant that elapsed.
func (t *Trigger) Wait(ctx context.Context) (time.Time, error) {
	next := t.Next(time.Now())
	if err := SleepUntil(ctx, next); err != nil {
		return time.Time{}, err
	}
	return next, nil
}

// SleepUntil blocks until the given instant or until ctx is cancelled.
func SleepUntil(ctx context.Context, at time.Time) error {
	d := time.Until(at)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
