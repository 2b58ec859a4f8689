package apu

import (
	"math"
	"testing"
)

// pushPulseNote queues a constant full-volume note with a halted length
// counter and enables the channel. The caller queues EventReset.
func pushPulseNote(p *PulseChannel, duty uint8, timer uint16) {
	p.events.Push(Event{Kind: EventNote, Value: uint16(duty)})
	p.events.Push(Event{Kind: EventEnvelope, Envelope: EnvelopeParams{Rate: 15, Constant: true, Loop: true}})
	p.events.Push(Event{Kind: EventLengthCounter, Length: LengthParams{Index: 1, Halt: true}})
	p.events.Push(Event{Kind: EventFrequency, Value: timer})
	p.events.Push(Event{Kind: EventEnable, Flag: true})
}

func hasNonZero(buf []float32) bool {
	for _, s := range buf {
		if s != 0 {
			return true
		}
	}
	return false
}

// lastCounter drains q and returns the most recent counter notification,
// or -1 when there was none.
func lastCounter(q *Queue[Notification]) int64 {
	last := int64(-1)
	for {
		n, ok := q.Pop()
		if !ok {
			return last
		}
		if n.Kind == NotifyCounter {
			last = int64(n.Counter)
		}
	}
}

func TestPulseChannel_EndToEnd(t *testing.T) {
	const sampleRate = 44100

	a := New(nil, sampleRate)
	a.Write(RegPulse1Control, 0xBF) // Duty 2, halt, constant volume 15
	a.Write(RegPulse1TimerLo, 0x54)
	a.Write(RegPulse1TimerHi, 0x00)
	a.Write(RegStatus, 0x01)

	buf := make([]float32, sampleRate)
	a.Channels()[Pulse1].Render(buf)

	for i, s := range buf {
		if s != 1.0 && s != -1.0 {
			t.Fatalf("sample %d = %v, want +1.0 or -1.0", i, s)
		}
	}
	if buf[0] != 1.0 {
		t.Errorf("first sample = %v, want +1.0", buf[0])
	}

	wantHz := CPUClock / (16 * (0x054 + 1))
	rising := 0
	for i := 1; i < len(buf); i++ {
		if buf[i-1] < 0 && buf[i] > 0 {
			rising++
		}
	}
	if math.Abs(float64(rising)-wantHz) > 2 {
		t.Errorf("measured %d cycles in one second, want %.1f", rising, wantHz)
	}

	// DC bias over whole periods
	period := int(sampleRate / wantHz)
	var sum float64
	n := (len(buf) / period) * period
	for _, s := range buf[:n] {
		sum += float64(s)
	}
	if mean := sum / float64(n); math.Abs(mean) > 0.01 {
		t.Errorf("DC bias = %v, want ~0", mean)
	}
}

func TestPulseChannel_DutyPatterns(t *testing.T) {
	tests := []struct {
		duty uint8
		want float64
	}{
		{0, 0.125},
		{1, 0.25},
		{2, 0.5},
		{3, 0.75},
	}

	for _, tt := range tests {
		p := NewPulseChannel("pulse1", 44100, 16)
		pushPulseNote(p, tt.duty, 0x0FD) // ~440 Hz
		p.events.Push(Event{Kind: EventReset})

		buf := make([]float32, 44100)
		p.Render(buf)

		high := 0
		for _, s := range buf {
			if s > 0 {
				high++
			}
		}
		got := float64(high) / float64(len(buf))
		if math.Abs(got-tt.want) > 0.02 {
			t.Errorf("duty %d: high ratio = %.3f, want %.3f", tt.duty, got, tt.want)
		}
	}
}

func TestPulseChannel_MutedBelowTimer8(t *testing.T) {
	p := NewPulseChannel("pulse1", 44100, 16)
	pushPulseNote(p, 2, 7)
	p.events.Push(Event{Kind: EventReset})

	buf := make([]float32, 512)
	p.Render(buf)
	if hasNonZero(buf) {
		t.Error("pulse with timer < 8 should be silent")
	}
}

func TestPulseChannel_SilentUntilEnabled(t *testing.T) {
	a := New(nil, 44100)
	a.Write(RegPulse1Control, 0xBF)
	a.Write(RegPulse1TimerLo, 0x54)
	a.Write(RegPulse1TimerHi, 0x00)

	buf := make([]float32, 512)
	a.Channels()[Pulse1].Render(buf)
	if hasNonZero(buf) {
		t.Error("channels should power on disabled")
	}

	a.Write(RegStatus, 0x01)
	a.Channels()[Pulse1].Render(buf)
	if !hasNonZero(buf) {
		t.Error("channel should sound after $4015 enables it")
	}
}

func TestPulseChannel_LengthCounterExpires(t *testing.T) {
	p := NewPulseChannel("pulse1", 44100, 16)
	pushPulseNote(p, 2, 0x0FD)
	p.events.Push(Event{Kind: EventLengthCounter, Length: LengthParams{Index: 3}}) // 2, not halted
	p.events.Push(Event{Kind: EventReset})

	buf := make([]float32, 256)
	p.Render(buf)
	if !hasNonZero(buf) {
		t.Fatal("channel should sound while the length counter runs")
	}
	if got := lastCounter(p.notify); got != 2 {
		t.Errorf("reported length = %d after reset, want 2", got)
	}

	p.events.Push(Event{Kind: EventHalfFrame})
	p.Render(buf)
	if !hasNonZero(buf) {
		t.Fatal("channel should still sound with length 1")
	}

	p.events.Push(Event{Kind: EventHalfFrame})
	p.Render(buf)
	if hasNonZero(buf) {
		t.Error("channel should be silent once the length counter reaches 0")
	}
	if got := lastCounter(p.notify); got != 0 {
		t.Errorf("reported length = %d, want 0", got)
	}
}

func TestPulseChannel_DisableClearsLength(t *testing.T) {
	p := NewPulseChannel("pulse1", 44100, 16)
	pushPulseNote(p, 2, 0x0FD)
	p.events.Push(Event{Kind: EventReset})

	buf := make([]float32, 64)
	p.Render(buf)
	lastCounter(p.notify)

	p.events.Push(Event{Kind: EventEnable, Flag: false})
	p.Render(buf)
	if hasNonZero(buf) {
		t.Error("disabled channel should be silent")
	}
	if got := lastCounter(p.notify); got != 0 {
		t.Errorf("reported length = %d after disable, want 0", got)
	}

	// Re-enabling does not bring the note back
	p.events.Push(Event{Kind: EventEnable, Flag: true})
	p.Render(buf)
	if hasNonZero(buf) {
		t.Error("re-enabled channel should stay silent until the next length load")
	}
}

func TestPulseChannel_VolumeEnvelope(t *testing.T) {
	p := NewPulseChannel("pulse1", 44100, 16)
	pushPulseNote(p, 2, 0x0FD)
	p.events.Push(Event{Kind: EventEnvelope, Envelope: EnvelopeParams{Rate: 0, Loop: true}})
	p.events.Push(Event{Kind: EventReset})
	for range 5 {
		p.events.Push(Event{Kind: EventQuarterFrame})
	}

	buf := make([]float32, 1)
	p.Render(buf)

	if want := float32(10) / 15; buf[0] != want {
		t.Errorf("sample = %v after 5 envelope clocks, want %v", buf[0], want)
	}
}

func TestPulseChannel_Idempotence(t *testing.T) {
	render := func(repeat int) []float32 {
		p := NewPulseChannel("pulse1", 44100, 16)
		for range repeat {
			pushPulseNote(p, 1, 0x1AB)
			p.events.Push(Event{Kind: EventSweep, Sweep: SweepParams{Period: 3, Shift: 2}})
		}
		p.events.Push(Event{Kind: EventReset})

		buf := make([]float32, 2048)
		p.Render(buf)
		return buf
	}

	once := render(1)
	twice := render(2)
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("sample %d differs: once=%v twice=%v", i, once[i], twice[i])
		}
	}
}

func TestPulseChannel_Frequency(t *testing.T) {
	p := NewPulseChannel("pulse1", 44100, 16)
	p.events.Push(Event{Kind: EventFrequency, Value: 0x054})
	p.Render(make([]float32, 1))

	want := CPUClock / (16 * 85)
	if got := p.Frequency(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Frequency() = %v, want %v", got, want)
	}
}

func TestPulseChannel_Name(t *testing.T) {
	a := New(nil, 44100)
	names := []string{"pulse1", "pulse2", "triangle", "noise", "dmc"}
	for i, ch := range a.Channels() {
		if ch.Name() != names[i] {
			t.Errorf("channel %d name = %q, want %q", i, ch.Name(), names[i])
		}
		if ChannelID(i).String() != names[i] {
			t.Errorf("ChannelID(%d).String() = %q, want %q", i, ChannelID(i).String(), names[i])
		}
	}
}
