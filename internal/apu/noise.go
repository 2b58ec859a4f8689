package apu

// NoiseChannel outputs the LFSR bitstream at one of 16 rates, scaled by its
// envelope and gated by its length counter.
type NoiseChannel struct {
	voice

	periodIndex uint8 // 0-15
	short       bool  // $400E bit 7: 93-step mode
	lfsr        LFSR
	bit         bool // Last LFSR output bit; 1 silences the channel
	envelope    Envelope
	length      LengthCounter
}

// NewNoiseChannel creates a noise channel in its power-on state.
func NewNoiseChannel(sampleRate int, prealloc int) *NoiseChannel {
	n := &NoiseChannel{
		voice:    newVoice("noise", sampleRate, prealloc),
		lfsr:     NewLFSR(),
		envelope: NewEnvelope(),
	}
	n.bit = n.lfsr.Value()&0x01 != 0
	return n
}

// Render fills out with samples, applying queued events before each one.
func (n *NoiseChannel) Render(out []float32) {
	for i := range out {
		n.drain()
		out[i] = n.sample()
	}
}

func (n *NoiseChannel) drain() {
	for {
		ev, ok := n.events.Pop()
		if !ok {
			return
		}
		n.apply(ev)
	}
}

func (n *NoiseChannel) apply(ev Event) {
	switch ev.Kind {
	case EventNote:
		n.periodIndex = uint8(ev.Value & 0x0F)
		n.short = ev.Flag
	case EventEnvelope:
		n.envelope.Configure(ev.Envelope)
	case EventLengthCounter:
		n.length.Configure(ev.Length)
	case EventEnable:
		n.enabled = ev.Flag
		if !n.enabled {
			n.length.Clear()
			n.report(0)
		}
	case EventReset:
		n.envelope.Restart()
		n.length.Reload()
		n.phase = 0
		n.report(uint32(n.length.Value()))
	case EventQuarterFrame:
		n.envelope.Tick()
	case EventHalfFrame:
		n.length.Tick()
		n.report(uint32(n.length.Value()))
	}
}

func (n *NoiseChannel) sample() float32 {
	var out float32
	if !n.bit {
		out = float32(n.envelope.Volume()) / 15.0
	}

	wraps := n.advance(CPUClock / float64(NoisePeriod(n.periodIndex)))
	for range wraps {
		n.bit = n.lfsr.Step(n.short)
	}

	if !n.enabled || n.length.Muted() {
		return 0
	}
	return out
}
