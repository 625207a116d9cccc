// Package sim provides the fixed-rate logical clock that drives the Atlas
// Engine tick loop.
package sim

import "sync/atomic"

// DefaultTickRate is the tick rate, in Hz, a new Scheduler starts with when
// none is configured explicitly.
const DefaultTickRate = 30

// Scheduler is a pure logical clock: it does not read wall-clock time. The
// host loop decides how often Tick is called, which keeps determinism and
// headless replay trivial. A zero-value Scheduler is not ready for use; call
// NewScheduler.
type Scheduler struct {
	hz      atomic.Uint32
	current atomic.Uint64
}

// NewScheduler returns a Scheduler running at DefaultTickRate.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	s.hz.Store(DefaultTickRate)
	return s
}

// SetTickRate sets the scheduler's rate, in Hz. A value of 0 is clamped to 1:
// the scheduler must always make forward progress.
func (s *Scheduler) SetTickRate(hz uint32) {
	if hz == 0 {
		hz = 1
	}
	s.hz.Store(hz)
}

// TickRate returns the scheduler's current rate, in Hz.
func (s *Scheduler) TickRate() uint32 {
	return s.hz.Load()
}

// FixedDeltaTime returns 1/TickRate(), the delta time a single tick advances
// the simulation by.
func (s *Scheduler) FixedDeltaTime() float64 {
	return 1.0 / float64(s.hz.Load())
}

// Tick invokes callback, if non-nil, with FixedDeltaTime(), then advances the
// tick counter. callback is run synchronously: Tick does not return until it
// does.
func (s *Scheduler) Tick(callback func(dt float64)) {
	if callback != nil {
		callback(s.FixedDeltaTime())
	}
	s.current.Add(1)
}

// CurrentTick returns the number of ticks that have elapsed since the
// Scheduler was created.
func (s *Scheduler) CurrentTick() uint64 {
	return s.current.Load()
}
