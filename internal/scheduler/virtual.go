package scheduler

import (
	"sync"
	"time"

	"github.com/on-the-ground/effect_ive_store/internal/timerqueue"
)

var _ Scheduler = (*Virtual)(nil)

// Virtual is a deterministic scheduler driven by the caller.
//
// Go queues tasks that run, in order, on the next RunPending. Timers live in
// a queue ordered by fire time and insertion order and fire only while time
// is advanced. Callbacks always run on the goroutine driving the scheduler.
type Virtual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers *timerqueue.Queue[*virtualTimer]
	tasks  []func()
}

type virtualTimer struct {
	owner  *Virtual
	seq    uint64
	fireAt time.Time
	fn     func()
}

func (t *virtualTimer) Stop() bool {
	v := t.owner
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.timers.Remove(func(other *virtualTimer) bool { return other == t })
}

func compareTimers(a, b *virtualTimer) int {
	if c := a.fireAt.Compare(b.fireAt); c != 0 {
		return c
	}
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	default:
		return 0
	}
}

func NewVirtual(start time.Time) *Virtual {
	return &Virtual{
		now:    start,
		timers: timerqueue.New(compareTimers),
	}
}

func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) AfterFunc(d time.Duration, fn func()) Timer {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	t := &virtualTimer{owner: v, seq: v.seq, fireAt: v.now.Add(d), fn: fn}
	v.timers.Insert(t)
	return t
}

func (v *Virtual) Go(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tasks = append(v.tasks, fn)
}

// RunPending runs queued tasks until none is left, including tasks queued by
// the tasks themselves. It returns how many ran.
func (v *Virtual) RunPending() int {
	ran := 0
	for {
		v.mu.Lock()
		if len(v.tasks) == 0 {
			v.mu.Unlock()
			return ran
		}
		task := v.tasks[0]
		v.tasks[0] = nil
		v.tasks = v.tasks[1:]
		v.mu.Unlock()

		task()
		ran++
	}
}

// Advance moves time forward by d, firing due timers in order and draining
// the tasks each of them queued before moving on to the next.
func (v *Virtual) Advance(d time.Duration) {
	v.AdvanceUntil(d, func() bool { return false })
}

// AdvanceUntil behaves like Advance but stops right after the first timer
// whose callbacks make done return true. It reports whether it stopped early.
// When it does, the clock stays at that timer's fire time.
func (v *Virtual) AdvanceUntil(d time.Duration, done func() bool) bool {
	v.RunPending()
	if done() {
		return true
	}

	target := v.Now().Add(d)
	for {
		v.mu.Lock()
		next, ok := v.timers.Peek()
		if !ok || next.fireAt.After(target) {
			v.now = target
			v.mu.Unlock()
			return false
		}
		v.timers.Pop()
		if next.fireAt.After(v.now) {
			v.now = next.fireAt
		}
		v.mu.Unlock()

		next.fn()
		v.RunPending()
		if done() {
			return true
		}
	}
}

// PendingTimers reports how many timers have not fired yet.
func (v *Virtual) PendingTimers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.timers.Len()
}

// NextFireAt returns when the earliest pending timer fires.
func (v *Virtual) NextFireAt() (time.Time, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	next, ok := v.timers.Peek()
	if !ok {
		return time.Time{}, false
	}
	return next.fireAt, true
}
