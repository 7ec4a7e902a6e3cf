package teststore

import (
	"sync"
	"time"

	"github.com/on-the-ground/effect_ive_store/deps"
	"github.com/on-the-ground/effect_ive_store/internal/scheduler"
)

var _ deps.Clock = (*VirtualClock)(nil)

// VirtualClock is a deps.Clock that reads a TestStore's virtual time. Until
// it is handed to a store with WithClock it reports its start time.
type VirtualClock struct {
	mu    sync.Mutex
	start time.Time
	sched *scheduler.Virtual
}

func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{start: start}
}

func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	sched := c.sched
	c.mu.Unlock()

	if sched == nil {
		return c.start
	}
	return sched.Now()
}

// Elapsed is the virtual time passed since the clock started.
func (c *VirtualClock) Elapsed() time.Duration {
	return c.Now().Sub(c.start)
}

func (c *VirtualClock) bind(sched *scheduler.Virtual) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sched = sched
}
