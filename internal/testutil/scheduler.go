package testutil

import (
	"sync"
	"time"
)

// FakeScheduler records intervals and fires them on demand.
type FakeScheduler struct {
	mu        sync.Mutex
	intervals []*fakeInterval
}

type fakeInterval struct {
	period    time.Duration
	fn        func()
	cancelled bool
}

// NewFakeScheduler creates a FakeScheduler.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

// Every records fn. It only runs when Fire is called.
func (s *FakeScheduler) Every(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv := &fakeInterval{period: d, fn: fn}
	s.intervals = append(s.intervals, iv)
	return func() {
		s.mu.Lock()
		iv.cancelled = true
		s.mu.Unlock()
	}
}

// Fire runs every active interval once.
func (s *FakeScheduler) Fire() {
	for _, fn := range s.active() {
		fn()
	}
}

// FireN calls Fire n times.
func (s *FakeScheduler) FireN(n int) {
	for i := 0; i < n; i++ {
		s.Fire()
	}
}

// FireAll runs every registered interval once, cancelled ones included,
// to simulate ticks that were already queued when the interval stopped.
func (s *FakeScheduler) FireAll() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.intervals))
	for _, iv := range s.intervals {
		fns = append(fns, iv.fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Active returns the number of intervals not yet cancelled.
func (s *FakeScheduler) Active() int {
	return len(s.active())
}

// Registered returns the total number of intervals ever registered.
func (s *FakeScheduler) Registered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.intervals)
}

func (s *FakeScheduler) active() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var fns []func()
	for _, iv := range s.intervals {
		if !iv.cancelled {
			fns = append(fns, iv.fn)
		}
	}
	return fns
}
