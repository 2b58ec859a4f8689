package apu

// LengthParams are the length counter fields of a channel's registers.
type LengthParams struct {
	Index uint8 // 5-bit index into the length table
	Halt  bool  // Halt flag ($4000 bit 5, $4008 bit 7, $400C bit 5)
}

// LengthCounter gates a channel off once its note duration runs out.
type LengthCounter struct {
	params  LengthParams
	counter uint8
}

// Configure replaces the halt flag and pending load index.
func (l *LengthCounter) Configure(p LengthParams) {
	l.params = p
}

// Reload loads the counter from the length table.
func (l *LengthCounter) Reload() {
	l.counter = LengthLoad(l.params.Index)
}

// Tick clocks the counter (half frame).
func (l *LengthCounter) Tick() {
	if l.params.Halt || l.counter == 0 {
		return
	}
	l.counter--
}

// Clear forces the counter to zero.
func (l *LengthCounter) Clear() {
	l.counter = 0
}

// Muted reports whether the counter has run out.
func (l *LengthCounter) Muted() bool {
	return l.counter == 0
}

// Value returns the current counter.
func (l *LengthCounter) Value() uint8 {
	return l.counter
}
