package apu

// PulseChannel is a square wave channel (pulse 1 and pulse 2) with an
// envelope, sweep unit and length counter.
type PulseChannel struct {
	voice

	duty     uint8 // 0-3
	envelope Envelope
	length   LengthCounter
	sweep    Sweep
}

// NewPulseChannel creates a pulse channel in its power-on state.
func NewPulseChannel(name string, sampleRate int, prealloc int) *PulseChannel {
	return &PulseChannel{
		voice:    newVoice(name, sampleRate, prealloc),
		envelope: NewEnvelope(),
	}
}

// Render fills out with samples, applying queued events before each one.
func (p *PulseChannel) Render(out []float32) {
	for i := range out {
		p.drain()
		out[i] = p.sample()
	}
}

func (p *PulseChannel) drain() {
	for {
		ev, ok := p.events.Pop()
		if !ok {
			return
		}
		p.apply(ev)
	}
}

func (p *PulseChannel) apply(ev Event) {
	switch ev.Kind {
	case EventNote:
		p.duty = uint8(ev.Value & 0x03)
	case EventEnvelope:
		p.envelope.Configure(ev.Envelope)
	case EventLengthCounter:
		p.length.Configure(ev.Length)
	case EventSweep:
		p.sweep.Configure(ev.Sweep)
	case EventFrequency:
		p.sweep.SetTimer(ev.Value)
	case EventEnable:
		p.enabled = ev.Flag
		if !p.enabled {
			p.length.Clear()
			p.report(0)
		}
	case EventReset:
		p.envelope.Restart()
		p.length.Reload()
		p.sweep.Restart()
		p.phase = 0
		p.report(uint32(p.length.Value()))
	case EventQuarterFrame:
		p.envelope.Tick()
	case EventHalfFrame:
		p.length.Tick()
		p.sweep.Tick(&p.length)
		p.report(uint32(p.length.Value()))
	}
}

// sample returns the current output level and advances the phase.
func (p *PulseChannel) sample() float32 {
	timer := p.sweep.Timer()
	if timer < minSweepTimer {
		return 0
	}

	vol := float32(p.envelope.Volume()) / 15.0
	out := -vol
	if p.phase < DutyRatio(p.duty) {
		out = vol
	}

	p.advance(timerHz(timer, 16))

	if !p.enabled || p.length.Muted() {
		return 0
	}
	return out
}

// Frequency returns the channel's current output frequency in Hz.
func (p *PulseChannel) Frequency() float64 {
	return timerHz(p.sweep.Timer(), 16)
}
