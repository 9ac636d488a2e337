// Package timer implements the focus countdown.
//
// A Timer moves Idle -> Running -> Paused -> Complete and back to Idle on
// Reset. While Running, a one-second interval decrements the remaining
// seconds; the interval is cancelled on pause, completion, reset and close.
package timer

import (
	"fmt"
	"sync"
	"time"
)

// State is the timer state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StatePaused   State = "paused"
	StateComplete State = "complete"
)

// Interval is the tick period.
const Interval = time.Second

// Snapshot is a copy of the timer state.
type Snapshot struct {
	State            State
	FocusMinutes     int
	RemainingSeconds int
}

// Timer is a countdown driven by a Scheduler. It is safe for concurrent use.
type Timer struct {
	mu         sync.Mutex
	sched      Scheduler
	state      State
	focus      int
	remaining  int
	gen        uint64
	cancel     func()
	onTick     func(Snapshot)
	onComplete func(Snapshot)
}

// New creates an idle timer. A nil scheduler uses real tickers.
func New(sched Scheduler) *Timer {
	if sched == nil {
		sched = TickerScheduler{}
	}
	return &Timer{sched: sched, state: StateIdle}
}

// OnTick registers a hook called after every decrement.
func (t *Timer) OnTick(fn func(Snapshot)) {
	t.mu.Lock()
	t.onTick = fn
	t.mu.Unlock()
}

// OnComplete registers a hook called once when the countdown reaches zero.
func (t *Timer) OnComplete(fn func(Snapshot)) {
	t.mu.Lock()
	t.onComplete = fn
	t.mu.Unlock()
}

// Start begins a countdown of focusMinutes (minimum 1), replacing any
// countdown in progress.
func (t *Timer) Start(focusMinutes int) Snapshot {
	if focusMinutes < 1 {
		focusMinutes = 1
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.disarm()
	t.focus = focusMinutes
	t.remaining = focusMinutes * 60
	t.state = StateRunning
	t.arm()
	return t.snapshot()
}

// TogglePause switches Running to Paused and Paused to Running.
// Other states are left unchanged.
func (t *Timer) TogglePause() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateRunning:
		t.disarm()
		t.state = StatePaused
	case StatePaused:
		t.state = StateRunning
		t.arm()
	}
	return t.snapshot()
}

// Reset returns to Idle with zero remaining seconds.
func (t *Timer) Reset() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.disarm()
	t.state = StateIdle
	t.remaining = 0
	return t.snapshot()
}

// Close cancels any active interval. Hooks will not fire afterwards.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.disarm()
	if t.state == StateRunning {
		t.state = StatePaused
	}
}

// Snapshot returns the current state.
func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// Active reports whether an interval is registered.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Timer) snapshot() Snapshot {
	return Snapshot{State: t.state, FocusMinutes: t.focus, RemainingSeconds: t.remaining}
}

// arm registers a new interval. Caller holds mu.
func (t *Timer) arm() {
	t.gen++
	gen := t.gen
	t.cancel = t.sched.Every(Interval, func() { t.tick(gen) })
}

// disarm cancels the interval and invalidates its pending ticks. Caller holds mu.
func (t *Timer) disarm() {
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *Timer) tick(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state != StateRunning {
		t.mu.Unlock()
		return
	}
	if t.remaining > 0 {
		t.remaining--
	}
	completed := t.remaining == 0
	if completed {
		t.disarm()
		t.state = StateComplete
	}
	snap := t.snapshot()
	onTick, onComplete := t.onTick, t.onComplete
	t.mu.Unlock()

	if onTick != nil {
		onTick(snap)
	}
	if completed && onComplete != nil {
		onComplete(snap)
	}
}

// Format renders seconds as MM:SS.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
