package typewriter

import "time"

// Timer is a handle to one scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports false when the
	// callback already fired or was already stopped.
	Stop() bool
}

// Scheduler runs a callback once after a delay.
//
// Implemented by SystemScheduler (production) and testutil.FakeScheduler
// (deterministic tests). Implementations may invoke f on any goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler schedules callbacks on real timers via time.AfterFunc.
//
// Thread-safety: SystemScheduler is stateless and safe for concurrent use.
type SystemScheduler struct{}

// AfterFunc implements Scheduler.
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
