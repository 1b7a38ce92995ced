package publish

import (
	"context"
	"time"
)

// DefaultCooldown is the pause taken each time the pending count
// reaches the high-water-mark.
const DefaultCooldown = 100 * time.Millisecond

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Pacer counts sends and pauses once every hwm of them. A Pacer is
// used by a single goroutine.
type Pacer struct {
	hwm      int
	cooldown time.Duration
	wait     WaitFunc

	pending int
	pauses  int
}

// NewPacer creates a pacer. An hwm of zero or less disables pausing.
func NewPacer(hwm int, cooldown time.Duration) *Pacer {
	if cooldown < 0 {
		cooldown = 0
	}
	return &Pacer{
		hwm:      hwm,
		cooldown: cooldown,
		wait:     sleep,
	}
}

// WithWait replaces the blocking wait. Used by tests to observe pauses
// without sleeping.
func (p *Pacer) WithWait(fn WaitFunc) *Pacer {
	if fn != nil {
		p.wait = fn
	}
	return p
}

// HWM returns the configured high-water-mark.
func (p *Pacer) HWM() int {
	return p.hwm
}

// Done records one completed send. When the pending count reaches the
// high-water-mark it waits out the cool-down, resets the count and
// reports paused=true. A cancelled ctx aborts the wait.
func (p *Pacer) Done(ctx context.Context) (paused bool, err error) {
	if p.hwm <= 0 {
		return false, nil
	}

	p.pending++
	if p.pending < p.hwm {
		return false, nil
	}

	if err := p.wait(ctx, p.cooldown); err != nil {
		return false, err
	}
	p.pending = 0
	p.pauses++
	return true, nil
}

// Pending returns the sends counted since the last pause.
func (p *Pacer) Pending() int {
	return p.pending
}

// Pauses returns the number of cool-downs taken.
func (p *Pacer) Pauses() int {
	return p.pauses
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
