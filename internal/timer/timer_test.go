package timer_test

import (
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"learnsphere/internal/testutil"
	"learnsphere/internal/timer"
)

func TestStart_SetsRemaining(t *testing.T) {
	for _, m := range []int{1, 5, 25, 90} {
		tm := timer.New(testutil.NewFakeScheduler())
		snap := tm.Start(m)
		if snap.RemainingSeconds != m*60 {
			t.Errorf("Start(%d): expected %d seconds, got %d", m, m*60, snap.RemainingSeconds)
		}
		if snap.State != timer.StateRunning {
			t.Errorf("Start(%d): expected running, got %s", m, snap.State)
		}
	}
}

func TestStart_ClampsBelowOne(t *testing.T) {
	for _, m := range []int{0, -3} {
		tm := timer.New(testutil.NewFakeScheduler())
		snap := tm.Start(m)
		if snap.RemainingSeconds != 60 || snap.FocusMinutes != 1 {
			t.Errorf("Start(%d): expected 1 minute, got %+v", m, snap)
		}
	}
}

func TestTick_Decrements(t *testing.T) {
	sched := testutil.NewFakeScheduler()
	tm := timer.New(sched)
	tm.Start(1)

	sched.FireN(10)

	if got := tm.Snapshot().RemainingSeconds; got != 50 {
		t.Errorf("expected 50 seconds left, got %d", got)
	}
}

func TestTogglePause_RetainsRemaining(t *testing.T) {
	sched := testutil.NewFakeScheduler()
	tm := timer.New(sched)
	tm.Start(1)
	sched.FireN(5)

	snap := tm.TogglePause()
	if snap.State != timer.StatePaused {
		t.Fatalf("expected paused, got %s", snap.State)
	}
	if sched.Active() != 0 {
		t.Errorf("expected no active interval while paused, got %d", sched.Active())
	}

	sched.FireN(5)
	if got := tm.Snapshot().RemainingSeconds; got != 55 {
		t.Errorf("paused timer should not tick, got %d", got)
	}

	snap = tm.TogglePause()
	if snap.State != timer.StateRunning {
		t.Fatalf("expected running, got %s", snap.State)
	}
	if sched.Active() != 1 {
		t.Errorf("expected one active interval after resume, got %d", sched.Active())
	}
	sched.Fire()
	if got := tm.Snapshot().RemainingSeconds; got != 54 {
		t.Errorf("expected 54, got %d", got)
	}
}

func TestComplete_FiresOnce(t *testing.T) {
	sched := testutil.NewFakeScheduler()
	tm := timer.New(sched)

	var completions, zeros int32
	tm.OnTick(func(s timer.Snapshot) {
		if s.RemainingSeconds < 0 {
			t.Errorf("remaining went negative: %d", s.RemainingSeconds)
		}
		if s.RemainingSeconds == 0 {
			atomic.AddInt32(&zeros, 1)
		}
	})
	tm.OnComplete(func(timer.Snapshot) { atomic.AddInt32(&completions, 1) })

	tm.Start(1)
	sched.FireN(60)

	if got := tm.Snapshot().State; got != timer.StateComplete {
		t.Fatalf("expected complete, got %s", got)
	}
	if sched.Active() != 0 {
		t.Errorf("interval leaked after completion")
	}

	// Late ticks from the cancelled interval are ignored.
	sched.FireAll()
	sched.FireAll()

	if completions != 1 {
		t.Errorf("expected one completion, got %d", completions)
	}
	if zeros != 1 {
		t.Errorf("expected remaining to reach 0 exactly once, got %d", zeros)
	}
	if got := tm.Snapshot().RemainingSeconds; got != 0 {
		t.Errorf("expected 0, got %d", got)
	}

	if snap := tm.Reset(); snap.State != timer.StateIdle {
		t.Errorf("expected idle after reset, got %s", snap.State)
	}
}

func TestReset_ClearsInterval(t *testing.T) {
	sched := testutil.NewFakeScheduler()
	tm := timer.New(sched)
	tm.Start(2)
	sched.FireN(3)

	snap := tm.Reset()
	if snap.State != timer.StateIdle || snap.RemainingSeconds != 0 {
		t.Errorf("unexpected state after reset: %+v", snap)
	}
	if sched.Active() != 0 || tm.Active() {
		t.Error("interval leaked after reset")
	}

	sched.FireAll()
	if got := tm.Snapshot().RemainingSeconds; got != 0 {
		t.Errorf("stale tick changed state: %d", got)
	}
}

func TestRestart_CancelsPreviousInterval(t *testing.T) {
	sched := testutil.NewFakeScheduler()
	tm := timer.New(sched)
	tm.Start(1)
	tm.Start(2)

	if sched.Active() != 1 {
		t.Fatalf("expected exactly one active interval, got %d", sched.Active())
	}
	sched.FireAll()
	if got := tm.Snapshot().RemainingSeconds; got != 119 {
		t.Errorf("stale interval ticked: expected 119, got %d", got)
	}
}

func TestClose_StopsTicking(t *testing.T) {
	sched := testutil.NewFakeScheduler()
	tm := timer.New(sched)
	ticks := 0
	tm.OnTick(func(timer.Snapshot) { ticks++ })
	tm.Start(1)
	sched.Fire()

	tm.Close()
	sched.FireAll()

	if ticks != 1 {
		t.Errorf("expected 1 tick before close, got %d", ticks)
	}
	if tm.Active() {
		t.Error("interval leaked after close")
	}
}

func TestTogglePause_IdleNoop(t *testing.T) {
	sched := testutil.NewFakeScheduler()
	tm := timer.New(sched)
	if snap := tm.TogglePause(); snap.State != timer.StateIdle {
		t.Errorf("expected idle, got %s", snap.State)
	}
	if sched.Registered() != 0 {
		t.Error("idle toggle should not register an interval")
	}
}

func TestTickerScheduler_Cancel(t *testing.T) {
	var n int32
	cancel := timer.TickerScheduler{}.Every(5*time.Millisecond, func() { atomic.AddInt32(&n, 1) })
	time.Sleep(30 * time.Millisecond)
	cancel()
	cancel()
	after := atomic.LoadInt32(&n)
	time.Sleep(30 * time.Millisecond)
	if got := atomic.LoadInt32(&n); got > after+1 {
		t.Errorf("ticker kept firing after cancel: %d -> %d", after, got)
	}
}

func TestFormat(t *testing.T) {
	cases := map[int]string{0: "00:00", 59: "00:59", 60: "01:00", 1500: "25:00", -4: "00:00"}
	for in, want := range cases {
		if got := timer.Format(in); got != want {
			t.Errorf("Format(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRandomSequences_RemainingNeverNegative(t *testing.T) {
	for seed := int64(1); seed <= 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		sched := testutil.NewFakeScheduler()
		tm := timer.New(sched)

		completions, zeroTicks := 0, 0
		tm.OnTick(func(s timer.Snapshot) {
			if s.RemainingSeconds == 0 {
				zeroTicks++
			}
		})
		tm.OnComplete(func(timer.Snapshot) { completions++ })

		wantCompletions := 0
		for step := 0; step < 300; step++ {
			prev := tm.Snapshot()
			var op string
			fired := 0
			switch rng.Intn(6) {
			case 0:
				op = "start"
				tm.Start(1 + rng.Intn(2))
			case 1:
				op = "toggle"
				tm.TogglePause()
			case 2:
				op = "reset"
				tm.Reset()
			case 3:
				op = "fire"
				sched.Fire()
				fired = 1
			case 4:
				op = "fire-n"
				fired = 1 + rng.Intn(90)
				sched.FireN(fired)
			case 5:
				op = "fire-all"
				sched.FireAll()
				fired = 1
			}
			snap := tm.Snapshot()

			if snap.RemainingSeconds < 0 {
				t.Fatalf("seed %d step %d (%s): negative remaining %d", seed, step, op, snap.RemainingSeconds)
			}
			if snap.State == timer.StateComplete && snap.RemainingSeconds != 0 {
				t.Fatalf("seed %d step %d (%s): complete with %d left", seed, step, op, snap.RemainingSeconds)
			}
			if snap.State == timer.StateIdle && snap.RemainingSeconds != 0 {
				t.Fatalf("seed %d step %d (%s): idle with %d left", seed, step, op, snap.RemainingSeconds)
			}
			if snap.State == timer.StateRunning && (!tm.Active() || snap.RemainingSeconds == 0) {
				t.Fatalf("seed %d step %d (%s): running without an interval or time, %+v", seed, step, op, snap)
			}
			if snap.State != timer.StateRunning && tm.Active() {
				t.Fatalf("seed %d step %d (%s): interval left armed in %s", seed, step, op, snap.State)
			}

			if fired > 0 {
				want := prev.RemainingSeconds
				if prev.State == timer.StateRunning {
					want -= fired
					if want < 0 {
						want = 0
					}
				}
				if snap.RemainingSeconds != want {
					t.Fatalf("seed %d step %d (%s x%d): expected %d left, got %d", seed, step, op, fired, want, snap.RemainingSeconds)
				}
			}

			if prev.State != timer.StateComplete && snap.State == timer.StateComplete {
				wantCompletions++
			}
			if completions != wantCompletions || zeroTicks != wantCompletions {
				t.Fatalf("seed %d step %d (%s): %d completions and %d zero ticks, want %d",
					seed, step, op, completions, zeroTicks, wantCompletions)
			}
		}
	}
}
