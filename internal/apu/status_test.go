package apu

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestStatusAggregator_Drain(t *testing.T) {
	var queues [NumChannels]*Queue[Notification]
	for i := range queues {
		queues[i] = NewQueue[Notification](4)
	}

	queues[Pulse1].Push(Notification{Kind: NotifyCounter, Counter: 10})
	queues[Pulse1].Push(Notification{Kind: NotifyCounter, Counter: 9})
	queues[Noise].Push(Notification{Kind: NotifyCounter, Counter: 3})
	queues[Noise].Push(Notification{Kind: NotifyCounter, Counter: 0})
	queues[DMC].Push(Notification{Kind: NotifyCounter, Counter: 17})

	var s StatusAggregator
	s.Drain(&queues)

	if s.Counter(Pulse1) != 9 {
		t.Errorf("pulse1 counter = %d, want latest value 9", s.Counter(Pulse1))
	}
	if got := s.Snapshot(false); got != 0x11 {
		t.Errorf("snapshot = %#02x, want 0x11", got)
	}

	queues[DMC].Push(Notification{Kind: NotifyIRQ})
	s.Drain(&queues)
	if got := s.Snapshot(true); got != 0x11|StatusFrameIRQ|StatusDMCIRQ {
		t.Errorf("snapshot = %#02x, want 0xD1", got)
	}

	s.ClearDMCIRQ()
	if s.DMCIRQ() {
		t.Error("ClearDMCIRQ should clear the flag")
	}
}

func TestAPU_StatusReadClearsFrameIRQOnce(t *testing.T) {
	a := New(nil, 44100)
	a.Tick(4 * FrameStepCycles)

	if !a.IRQPending() {
		t.Fatal("frame IRQ should be pending after a 4-step sequence")
	}
	if a.Read(RegStatus)&StatusFrameIRQ == 0 {
		t.Fatal("first $4015 read should report the frame IRQ")
	}
	if a.Read(RegStatus)&StatusFrameIRQ != 0 {
		t.Error("second $4015 read should not report the frame IRQ again")
	}
	if a.IRQPending() {
		t.Error("IRQ line should drop after the $4015 read")
	}

	a.Tick(4 * FrameStepCycles)
	if a.Read(RegStatus)&StatusFrameIRQ == 0 {
		t.Error("a new frame IRQ should be reported")
	}
}

func TestAPU_FiveStepNeverRaisesIRQ(t *testing.T) {
	for _, value := range []uint8{0x80, 0xC0} {
		a := New(nil, 44100)
		a.Write(RegFrameCounter, value)

		for c := 0; c < 10000; c += 2 {
			a.Tick(2)
			if a.IRQPending() {
				t.Fatalf("$4017=%#02x: IRQ at cycle %d", value, c)
			}
		}
		if a.Read(RegStatus)&StatusFrameIRQ != 0 {
			t.Errorf("$4017=%#02x: $4015 reports a frame IRQ", value)
		}
	}
}

func TestAPU_StatusReportsLengthCounters(t *testing.T) {
	a := New(nil, 44100)
	a.Write(RegPulse2Control, 0x30)
	a.Write(RegPulse2TimerHi, 0x08)
	a.Write(RegNoiseControl, 0x30)
	a.Write(RegNoiseLength, 0x08)
	a.Write(RegStatus, 0x0A)

	chans := a.Channels()
	chans[Pulse2].Render(make([]float32, 1))
	chans[Noise].Render(make([]float32, 1))

	if got := a.Read(RegStatus) & 0x1F; got != 0x0A {
		t.Errorf("$4015 = %#02x, want 0x0A", got)
	}

	a.Write(RegStatus, 0x02)
	chans[Noise].Render(make([]float32, 1))
	if got := a.Read(RegStatus) & 0x1F; got != 0x02 {
		t.Errorf("$4015 = %#02x after disabling noise, want 0x02", got)
	}
}

func TestAPU_ReadOtherAddresses(t *testing.T) {
	a := New(nil, 44100)
	for addr := uint16(0x4000); addr <= 0x4017; addr++ {
		if addr == RegStatus {
			continue
		}
		if v := a.Read(addr); v != 0 {
			t.Errorf("Read(%#04x) = %#02x, want 0", addr, v)
		}
	}
}

func TestAPU_WriteDebugLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a := New(nil, 44100, WithLogger(logger))
	a.Write(RegPulse1Control, 0xBF)

	out := buf.String()
	for _, want := range []string{"apu write", "$4000", "$BF"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}
