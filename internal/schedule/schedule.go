// Package schedule implements the periodic trigger that drives
// collection cycles.
package schedule

import (
	"context"
	"fmt"
	"time"
)

// Trigger fires once after a warm-up delay and thereafter at a fixed
// period, independent of how long each cycle takes to process. The
// underlying timers run on the monotonic clock, so wall-clock
// adjustments do not shift the schedule.
type Trigger struct {
	warmup time.Duration
	period time.Duration
	ticker *time.Ticker
}

// New validates the schedule and returns a Trigger. A schedule the
// timer cannot be armed with is an error; the daemon treats it as fatal
// since there is no fallback cadence.
func New(warmup, period time.Duration) (*Trigger, error) {
	if warmup < 0 {
		return nil, fmt.Errorf("negative warmup delay: %s", warmup)
	}
	if period <= 0 {
		return nil, fmt.Errorf("non-positive period: %s", period)
	}
	return &Trigger{warmup: warmup, period: period}, nil
}

// Wait blocks until the next tick is due or ctx is cancelled. The first
// call returns after the warm-up delay; subsequent calls return on the
// fixed-period ticker, measured from the first tick rather than from the
// end of the previous cycle.
func (t *Trigger) Wait(ctx context.Context) error {
	if t.ticker == nil {
		timer := time.NewTimer(t.warmup)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		t.ticker = time.NewTicker(t.period)
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.ticker.C:
		return nil
	}
}

// Stop releases the underlying ticker. Wait must not be called after
// Stop.
func (t *Trigger) Stop() {
	if t.ticker != nil {
		t.ticker.Stop()
	}
}
