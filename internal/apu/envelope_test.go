package apu

import "testing"

func TestEnvelope_DecayNonIncreasing(t *testing.T) {
	for rate := uint8(0); rate < 16; rate++ {
		e := NewEnvelope()
		e.Configure(EnvelopeParams{Rate: rate})
		e.Restart()

		prev := e.Decay()
		ticks := 15 * (int(rate) + 1)
		for i := 0; i < ticks+20; i++ {
			e.Tick()
			if e.Decay() > prev {
				t.Fatalf("rate %d: decay rose from %d to %d at tick %d", rate, prev, e.Decay(), i)
			}
			prev = e.Decay()
		}
		if e.Decay() != 0 {
			t.Errorf("rate %d: decay = %d after %d ticks, want 0", rate, e.Decay(), ticks+20)
		}
	}
}

func TestEnvelope_ReachesZeroAfterExpectedTicks(t *testing.T) {
	e := NewEnvelope()
	e.Configure(EnvelopeParams{Rate: 3})
	e.Restart()

	for i := 0; i < 15*4-1; i++ {
		e.Tick()
	}
	if e.Decay() != 1 {
		t.Fatalf("decay = %d one step before the end, want 1", e.Decay())
	}
	e.Tick()
	if e.Decay() != 0 {
		t.Errorf("decay = %d after 60 ticks at rate 3, want 0", e.Decay())
	}
}

func TestEnvelope_Loop(t *testing.T) {
	e := NewEnvelope()
	e.Configure(EnvelopeParams{Rate: 0, Loop: true})
	e.Restart()

	for range 15 {
		e.Tick()
	}
	if e.Decay() != 0 {
		t.Fatalf("decay = %d after 15 ticks, want 0", e.Decay())
	}

	e.Tick()
	if e.Decay() != 15 {
		t.Errorf("looping envelope should return to 15, got %d", e.Decay())
	}
}

func TestEnvelope_HoldsAtZeroWithoutLoop(t *testing.T) {
	e := NewEnvelope()
	e.Configure(EnvelopeParams{Rate: 0})
	e.Restart()

	for range 40 {
		e.Tick()
	}
	if e.Decay() != 0 {
		t.Errorf("non-looping envelope should hold at 0, got %d", e.Decay())
	}
}

func TestEnvelope_ConstantVolume(t *testing.T) {
	e := NewEnvelope()
	e.Configure(EnvelopeParams{Rate: 7, Constant: true})
	e.Restart()

	for range 100 {
		e.Tick()
		if e.Volume() != 7 {
			t.Fatalf("constant volume = %d, want 7", e.Volume())
		}
	}

	// Decay keeps running underneath
	if e.Decay() == 15 {
		t.Error("decay counter should still be clocked in constant mode")
	}
}

func TestEnvelope_RestartReloads(t *testing.T) {
	e := NewEnvelope()
	e.Configure(EnvelopeParams{Rate: 0})
	e.Restart()
	for range 5 {
		e.Tick()
	}
	if e.Volume() != 10 {
		t.Fatalf("volume = %d after 5 ticks, want 10", e.Volume())
	}

	e.Restart()
	if e.Volume() != 15 {
		t.Errorf("volume = %d after restart, want 15", e.Volume())
	}
}
