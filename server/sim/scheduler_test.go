package sim_test

import (
	"testing"

	"github.com/atlas-engine/atlas/server/sim"
)

func TestFixedDeltaTime(t *testing.T) {
	for hz := uint32(1); hz <= 240; hz++ {
		s := sim.NewScheduler()
		s.SetTickRate(hz)
		want := 1.0 / float64(hz)
		if got := s.FixedDeltaTime(); got != want {
			t.Fatalf("hz=%d: FixedDeltaTime() = %v, want %v", hz, got, want)
		}
	}
}

func TestSetTickRateZeroClampsToOne(t *testing.T) {
	s := sim.NewScheduler()
	s.SetTickRate(0)
	if got := s.TickRate(); got != 1 {
		t.Fatalf("TickRate() = %d, want 1", got)
	}
}

func TestTickAdvancesCounterAndInvokesCallback(t *testing.T) {
	s := sim.NewScheduler()
	s.SetTickRate(60)

	var gotDt float64
	calls := 0
	s.Tick(func(dt float64) {
		calls++
		gotDt = dt
	})

	if calls != 1 {
		t.Fatalf("callback invoked %d times, want 1", calls)
	}
	if want := 1.0 / 60.0; gotDt != want {
		t.Fatalf("dt = %v, want %v", gotDt, want)
	}
	if got := s.CurrentTick(); got != 1 {
		t.Fatalf("CurrentTick() = %d, want 1", got)
	}

	s.Tick(nil)
	if got := s.CurrentTick(); got != 2 {
		t.Fatalf("CurrentTick() = %d, want 2", got)
	}
}
