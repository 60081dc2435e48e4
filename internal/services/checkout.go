package services

import (
	"sync"
	"time"

	"eatzone/internal/clock"
)

type CheckoutState string

const (
	CheckoutActive     CheckoutState = "active"
	CheckoutSubmitting CheckoutState = "submitting"
	CheckoutSubmitted  CheckoutState = "submitted"
	CheckoutCancelled CheckoutState = "cancelled"
	CheckoutExpired   CheckoutState = "expired"
)

// CheckoutHooks are called without the checkout lock held.
type CheckoutHooks struct {
	OnTick   func(remaining int)
	OnExpire func()
}

// Checkout is the payment countdown. It ticks through a chain of one-shot
// timers and leaves the active state exactly once.
type Checkout struct {
	mu        sync.Mutex
	clock     clock.Clock
	interval  time.Duration
	remaining int
	state     CheckoutState
	timer     clock.Timer
	hooks     CheckoutHooks
	startedAt time.Time
}

func StartCheckout(clk clock.Clock, ticks int, interval time.Duration, hooks CheckoutHooks) *Checkout {
	c := &Checkout{
		clock:     clk,
		interval:  interval,
		remaining: ticks,
		state:     CheckoutActive,
		hooks:     hooks,
		startedAt: clk.Now(),
	}
	c.mu.Lock()
	c.schedule()
	c.mu.Unlock()
	return c
}

func (c *Checkout) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Checkout) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Checkout) StartedAt() time.Time {
	return c.startedAt
}

// Hold pauses the countdown while a submission is saved. It fails once the
// countdown has expired or was cancelled.
func (c *Checkout) Hold() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CheckoutActive {
		return false
	}
	c.state = CheckoutSubmitting
	c.stopTimer()
	return true
}

// Release resumes a held countdown after a failed submission.
func (c *Checkout) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CheckoutSubmitting {
		return
	}
	c.state = CheckoutActive
	c.schedule()
}

// Complete ends an active or held checkout as submitted.
func (c *Checkout) Complete() bool {
	return c.finish(CheckoutSubmitted)
}

// Cancel discards the countdown; the expiry hook will not run.
func (c *Checkout) Cancel() bool {
	return c.finish(CheckoutCancelled)
}

func (c *Checkout) finish(to CheckoutState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CheckoutActive && c.state != CheckoutSubmitting {
		return false
	}
	c.state = to
	c.stopTimer()
	return true
}

// stopTimer must be called with c.mu held.
func (c *Checkout) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// schedule must be called with c.mu held.
func (c *Checkout) schedule() {
	c.timer = c.clock.AfterFunc(c.interval, c.tick)
}

func (c *Checkout) tick() {
	c.mu.Lock()
	if c.state != CheckoutActive {
		c.mu.Unlock()
		return
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.state = CheckoutExpired
		c.timer = nil
		c.mu.Unlock()
		if c.hooks.OnExpire != nil {
			c.hooks.OnExpire()
		}
		return
	}
	remaining := c.remaining
	c.schedule()
	c.mu.Unlock()

	if c.hooks.OnTick != nil {
		c.hooks.OnTick(remaining)
	}
}
