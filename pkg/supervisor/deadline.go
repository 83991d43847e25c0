package supervisor

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Deadline is a one-shot timer that can be re-armed. Expiry is delivered on
// the channel returned by C; a disarmed deadline returns a nil channel, which
// never becomes ready in a select.
type Deadline struct {
	clock clock.Clock

	mu    sync.Mutex
	timer clock.Timer
	armed bool
}

// NewDeadline returns a disarmed deadline on clk.
func NewDeadline(clk clock.Clock) *Deadline {
	return &Deadline{clock: clk}
}

// Arm schedules expiry once after has elapsed, replacing any pending expiry.
func (d *Deadline) Arm(after time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.timer = d.clock.NewTimer(after)
	d.armed = true
}

// Disarm cancels any pending expiry.
func (d *Deadline) Disarm() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
}

// Fired marks a received expiry as consumed. The deadline stays disarmed
// until Arm is called again.
func (d *Deadline) Fired() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.timer = nil
	d.armed = false
}

// Armed reports whether an expiry is pending.
func (d *Deadline) Armed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.armed
}

// C returns the expiry channel, or nil when disarmed.
func (d *Deadline) C() <-chan time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.armed {
		return nil
	}
	return d.timer.C()
}

func (d *Deadline) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.armed = false
}
