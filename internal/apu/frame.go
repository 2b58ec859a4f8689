package apu

// FrameMode selects the frame sequencer sequence length.
type FrameMode uint8

// Frame sequencer modes ($4017 bit 7).
const (
	FourStep FrameMode = 4
	FiveStep FrameMode = 5
)

// FrameSequencer divides the CPU clock into quarter- and half-frame clocks
// and raises the frame IRQ. It runs on the emulation thread.
type FrameSequencer struct {
	accumulator int
	step        int // Steps completed in the current sequence
	mode        FrameMode
	irqInhibit  bool
	irqFlag     bool
}

// FrameClock reports which clocks a sequencer step produced.
type FrameClock struct {
	Quarter bool
	Half    bool
}

// NewFrameSequencer returns a sequencer in its power-on state: 4-step mode,
// IRQ not inhibited.
func NewFrameSequencer() FrameSequencer {
	return FrameSequencer{mode: FourStep}
}

// Write handles a $4017 write: selects the mode and IRQ inhibit and restarts
// the sequence. Setting the inhibit flag clears a pending frame IRQ.
func (f *FrameSequencer) Write(value uint8) {
	f.mode = FourStep
	if value&0x80 != 0 {
		f.mode = FiveStep
	}
	f.irqInhibit = value&0x40 != 0
	if f.irqInhibit {
		f.irqFlag = false
	}
	f.accumulator = 0
	f.step = 0
}

// Tick adds cycles and calls clock once for every completed step.
func (f *FrameSequencer) Tick(cycles int, clock func(FrameClock)) {
	f.accumulator += cycles
	for f.accumulator >= FrameStepCycles {
		f.accumulator -= FrameStepCycles
		clock(f.advance())
	}
}

func (f *FrameSequencer) advance() FrameClock {
	f.step++

	var c FrameClock
	switch f.mode {
	case FiveStep:
		// l - l - -
		// e e e e -
		c.Quarter = f.step <= 4
		c.Half = f.step == 1 || f.step == 3
		if f.step == 5 {
			f.step = 0
		}
	default:
		// - - - f
		// - l - l
		// e e e e
		c.Quarter = true
		c.Half = f.step == 2 || f.step == 4
		if f.step == 4 {
			if !f.irqInhibit {
				f.irqFlag = true
			}
			f.step = 0
		}
	}
	return c
}

// IRQ reports whether the frame IRQ flag is set.
func (f *FrameSequencer) IRQ() bool {
	return f.irqFlag
}

// ClearIRQ acknowledges the frame IRQ ($4015 read).
func (f *FrameSequencer) ClearIRQ() {
	f.irqFlag = false
}

// Mode returns the current sequence mode.
func (f *FrameSequencer) Mode() FrameMode {
	return f.mode
}

// Step returns the number of steps completed in the current sequence.
func (f *FrameSequencer) Step() int {
	return f.step
}
