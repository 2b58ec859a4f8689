package apu

// EnvelopeParams are the envelope fields of $4000/$4004/$400C.
type EnvelopeParams struct {
	Rate     uint8 // Bits 3-0: volume or decay rate
	Constant bool  // Bit 4: use Rate as a constant volume
	Loop     bool  // Bit 5: restart decay at 0 (shared with length halt)
}

// Envelope is the decaying/constant volume generator used by the pulse and
// noise channels.
type Envelope struct {
	params  EnvelopeParams
	decay   uint8 // 0-15
	divider uint8
}

// NewEnvelope returns an envelope in its power-on state.
func NewEnvelope() Envelope {
	return Envelope{decay: 15, divider: 1}
}

// Configure replaces the register-driven parameters.
func (e *Envelope) Configure(p EnvelopeParams) {
	e.params = p
}

// Restart reloads the decay level and divider.
func (e *Envelope) Restart() {
	e.decay = 15
	e.divider = e.params.Rate + 1
}

// Tick clocks the envelope (quarter frame).
func (e *Envelope) Tick() {
	if e.divider > 0 {
		e.divider--
	}
	if e.divider != 0 {
		return
	}

	e.divider = e.params.Rate + 1
	if e.decay > 0 {
		e.decay--
	} else if e.params.Loop {
		e.decay = 15
	}
}

// Volume returns the current output level (0-15).
func (e *Envelope) Volume() uint8 {
	if e.params.Constant {
		return e.params.Rate
	}
	return e.decay
}

// Decay returns the decay counter.
func (e *Envelope) Decay() uint8 {
	return e.decay
}
