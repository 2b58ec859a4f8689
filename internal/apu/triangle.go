package apu

// TriangleChannel produces a symmetric triangle ramp gated by both a length
// counter and a linear counter. It has no volume control.
type TriangleChannel struct {
	voice

	timer  uint16 // 11-bit timer period
	length LengthCounter
	linear LinearCounter
}

// NewTriangleChannel creates a triangle channel in its power-on state.
func NewTriangleChannel(sampleRate int, prealloc int) *TriangleChannel {
	return &TriangleChannel{
		voice: newVoice("triangle", sampleRate, prealloc),
	}
}

// Render fills out with samples, applying queued events before each one.
func (t *TriangleChannel) Render(out []float32) {
	for i := range out {
		t.drain()
		out[i] = t.sample()
	}
}

func (t *TriangleChannel) drain() {
	for {
		ev, ok := t.events.Pop()
		if !ok {
			return
		}
		t.apply(ev)
	}
}

func (t *TriangleChannel) apply(ev Event) {
	switch ev.Kind {
	case EventLinearCounter:
		t.linear.Configure(ev.Linear)
	case EventLengthCounter:
		t.length.Configure(ev.Length)
	case EventFrequency:
		t.timer = ev.Value & 0x7FF
	case EventEnable:
		t.enabled = ev.Flag
		if !t.enabled {
			t.length.Clear()
			t.report(0)
		}
	case EventReset:
		t.length.Reload()
		t.linear.Restart()
		t.phase = 0
		t.report(uint32(t.length.Value()))
	case EventQuarterFrame:
		t.linear.Tick()
	case EventHalfFrame:
		t.length.Tick()
		t.report(uint32(t.length.Value()))
	}
}

func (t *TriangleChannel) sample() float32 {
	ramp := t.phase
	if ramp > 0.5 {
		ramp = 1.0 - ramp
	}
	out := float32((ramp - 0.25) * 4.0)

	t.advance(timerHz(t.timer, 32))

	if !t.enabled || t.length.Muted() || t.linear.Muted() {
		return 0
	}
	return out
}
