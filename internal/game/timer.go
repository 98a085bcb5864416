package game

import "time"

// roundTimer is a single pending task driven by simulation time. Scheduling
// a new task replaces any pending one.
type roundTimer struct {
	remaining float64
	fn        func()
	armed     bool
}

func (t *roundTimer) Schedule(delay time.Duration, fn func()) {
	t.Cancel()
	t.remaining = delay.Seconds()
	t.fn = fn
	t.armed = true
}

func (t *roundTimer) Cancel() {
	t.armed = false
	t.fn = nil
	t.remaining = 0
}

func (t *roundTimer) Pending() bool { return t.armed }

// Advance counts down dt seconds and runs the task when it comes due. The
// task may schedule a follow-up.
func (t *roundTimer) Advance(dt float64) {
	if !t.armed {
		return
	}
	t.remaining -= dt
	if t.remaining > 1e-9 {
		return
	}
	fn := t.fn
	t.Cancel()
	if fn != nil {
		fn()
	}
}
