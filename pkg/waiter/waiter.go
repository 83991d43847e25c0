// Package waiter decides when the session has been idle for a target
// number of seconds.
package waiter

import (
	"context"
	"time"

	"github.com/Veraticus/inactive/pkg/idle"
	"github.com/Veraticus/inactive/pkg/interfaces"
	"github.com/Veraticus/inactive/pkg/log"
	"k8s.io/utils/clock"
)

// Waiter blocks on, or tests for, an idle target.
type Waiter struct {
	source interfaces.IdleSource
	clock  clock.Clock
}

// New creates a waiter on the real clock.
func New(source interfaces.IdleSource) *Waiter {
	return NewWithClock(source, clock.RealClock{})
}

// NewWithClock creates a waiter on the given clock.
func NewWithClock(source interfaces.IdleSource, clk clock.Clock) *Waiter {
	return &Waiter{source: source, clock: clk}
}

// Idle returns the current idle time in whole seconds.
func (w *Waiter) Idle(ctx context.Context) (int64, error) {
	d, err := w.source.Idle(ctx)
	if err != nil {
		return 0, err
	}
	return idle.Seconds(d), nil
}

// Remaining returns target minus the current idle seconds. A result <= 0
// means the target is reached.
func (w *Waiter) Remaining(ctx context.Context, target int64) (int64, error) {
	secs, err := w.Idle(ctx)
	if err != nil {
		return 0, err
	}
	return target - secs, nil
}

// IsIdleAtLeast queries the source once and reports whether the user has
// been idle for at least target seconds.
func (w *Waiter) IsIdleAtLeast(ctx context.Context, target int64) (bool, error) {
	remaining, err := w.Remaining(ctx, target)
	if err != nil {
		return false, err
	}
	return remaining <= 0, nil
}

// WaitUntilIdle blocks until the user has been idle for target seconds.
//
// Each round sleeps for exactly the remaining time rather than a polling
// quantum: input resets idle time to zero, so after a full sleep either the
// target is met or the user was active and a fresh remaining is computed.
// A wake for any other reason simply recomputes.
func (w *Waiter) WaitUntilIdle(ctx context.Context, target int64) error {
	for {
		remaining, err := w.Remaining(ctx, target)
		if err != nil {
			return err
		}
		if remaining <= 0 {
			return nil
		}

		log.Debug("waiting for idle", "target", target, "remaining", remaining)

		timer := w.clock.NewTimer(time.Duration(remaining) * time.Second)
		select {
		case <-timer.C():
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
