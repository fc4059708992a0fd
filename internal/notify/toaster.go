package notify

import (
	"sync"
	"time"

	"github.com/serenelion/Earth-Care-Food-Company/internal/domain"
)

// ToastDuration is how long a toast stays visible before auto-dismissing.
const ToastDuration = 3 * time.Second

// Center holds at most one visible toast. A newer toast overwrites the current
// one and cancels its dismissal timer, so no timer ever fires for a toast that
// is no longer showing.
type Center struct {
	mu      sync.Mutex
	current *domain.Toast
	timer   *time.Timer
	gen     uint64
	closed  bool
}

func NewCenter() *Center {
	return &Center{}
}

// Show displays a toast and schedules its dismissal.
func (c *Center) Show(message string, kind domain.ToastType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}

	c.gen++
	gen := c.gen
	c.current = &domain.Toast{Message: message, Type: kind}
	c.timer = time.AfterFunc(ToastDuration, func() {
		c.dismissGen(gen)
	})
}

// Dismiss removes the visible toast before its deadline.
func (c *Center) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = nil
}

// Current returns a copy of the visible toast, or nil.
func (c *Center) Current() *domain.Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}
	t := *c.current
	return &t
}

// Close tears the center down, cancelling any pending dismissal.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = nil
}

// dismissGen clears the toast only if it is still the one the timer was
// scheduled for.
func (c *Center) dismissGen(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return
	}
	c.current = nil
	c.timer = nil
}
