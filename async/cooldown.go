package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCooldown is returned by a fail-mode Cooldown when the interval has not
// yet elapsed.
var ErrCooldown = errors.New("cooldown interval has not elapsed")

// CooldownMode selects what Acquire does when the gate is still hot.
type CooldownMode int

const (
	// CooldownWait suspends the caller until the interval elapses.
	CooldownWait CooldownMode = iota
	// CooldownFail fails immediately with ErrCooldown.
	CooldownFail
)

// Cooldown is a throttling gate: at most one successful Acquire per
// interval. A successful Acquire starts the next interval; an Acquire
// before it elapses either waits or fails, per mode. An acquire never
// succeeds early.
type Cooldown struct {
	mu       sync.Mutex
	interval time.Duration
	mode     CooldownMode
	// next is the earliest instant the next acquire may succeed.
	next time.Time
}

// NewCooldown returns a cold gate: the first Acquire always succeeds.
func NewCooldown(interval time.Duration, mode CooldownMode) *Cooldown {
	return &Cooldown{interval: interval, mode: mode}
}

// Acquire claims the gate. In wait mode it suspends until the interval has
// elapsed since the previous success (looping under contention, so no
// caller sneaks in early); in fail mode it returns ErrCooldown wrapped with
// the remaining duration.
func (c *Cooldown) Acquire(ctx context.Context) error {
	for {
		remaining, ok := c.TryAcquire()
		if ok {
			return nil
		}
		if c.mode == CooldownFail {
			return fmt.Errorf("%w (%s remaining)", ErrCooldown, remaining)
		}
		timer := time.NewTimer(remaining)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// TryAcquire claims the gate without blocking. On failure it reports the
// duration remaining until the gate cools down.
func (c *Cooldown) TryAcquire() (remaining time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if now.Before(c.next) {
		return c.next.Sub(now), false
	}
	c.next = now.Add(c.interval)
	return 0, true
}
