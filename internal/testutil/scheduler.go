package testutil

import (
	"sync"
	"time"

	"github.com/roach88/typewriter/internal/typewriter"
)

// FakeScheduler is a deterministic virtual clock for engine tests.
//
// Callbacks never fire on their own. Tests move time forward with Advance or
// fire callbacks one at a time with RunNext. Callbacks due at the same
// instant fire in the order they were scheduled.
//
// Callbacks run on the calling goroutine with no scheduler lock held, so a
// callback may schedule further callbacks.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int64
	timer []*fakeTimer
}

// NewFakeScheduler creates a scheduler whose virtual clock starts at 0.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

type fakeTimer struct {
	s    *FakeScheduler
	at   time.Duration
	seq  int64
	f    func()
	done bool
}

// Stop implements typewriter.Timer.
func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.s.remove(t)
	return true
}

// AfterFunc implements typewriter.Scheduler.
func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) typewriter.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d < 0 {
		d = 0
	}
	s.seq++
	t := &fakeTimer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.timer = append(s.timer, t)
	return t
}

// Now returns the virtual time elapsed since the scheduler was created.
func (s *FakeScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of callbacks waiting to fire.
func (s *FakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timer)
}

// NextDeadline returns the virtual time of the next callback.
// Returns false if nothing is scheduled.
func (s *FakeScheduler) NextDeadline() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.earliest()
	if t == nil {
		return 0, false
	}
	return t.at, true
}

// RunNext jumps to the next deadline and fires that callback.
// Returns false if nothing is scheduled.
func (s *FakeScheduler) RunNext() bool {
	s.mu.Lock()
	t := s.earliest()
	if t == nil {
		s.mu.Unlock()
		return false
	}
	s.pop(t)
	s.mu.Unlock()

	t.f()
	return true
}

// Advance moves the clock forward by d, firing every callback that becomes
// due on the way, including ones scheduled by earlier callbacks.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	s.AdvanceTo(target)
}

// AdvanceTo moves the clock to the absolute virtual time target.
// Does nothing if target is in the past.
func (s *FakeScheduler) AdvanceTo(target time.Duration) {
	for {
		s.mu.Lock()
		t := s.earliest()
		if t == nil || t.at > target {
			if target > s.now {
				s.now = target
			}
			s.mu.Unlock()
			return
		}
		s.pop(t)
		s.mu.Unlock()

		t.f()
	}
}

// RunUntilIdle fires callbacks until none remain or limit callbacks have
// fired. Returns the number fired.
func (s *FakeScheduler) RunUntilIdle(limit int) int {
	n := 0
	for n < limit && s.RunNext() {
		n++
	}
	return n
}

// earliest returns the next timer by (deadline, scheduling order).
// Caller must hold mu.
func (s *FakeScheduler) earliest() *fakeTimer {
	var best *fakeTimer
	for _, t := range s.timer {
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// pop removes t, advances the clock to its deadline and marks it fired.
// Caller must hold mu.
func (s *FakeScheduler) pop(t *fakeTimer) {
	s.remove(t)
	t.done = true
	if t.at > s.now {
		s.now = t.at
	}
}

func (s *FakeScheduler) remove(t *fakeTimer) {
	for i, c := range s.timer {
		if c == t {
			s.timer = append(s.timer[:i], s.timer[i+1:]...)
			return
		}
	}
}
