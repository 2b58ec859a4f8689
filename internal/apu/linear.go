package apu

// LinearParams are the fields of $4008.
type LinearParams struct {
	Reload  uint8 // Bits 6-0: reload value
	Control bool  // Bit 7: keep the reload flag set (shared with length halt)
}

// LinearCounter is the triangle channel's second duration gate.
type LinearCounter struct {
	params     LinearParams
	counter    uint8 // 0-127
	reloadFlag bool
}

// Configure replaces the reload value and control flag.
func (l *LinearCounter) Configure(p LinearParams) {
	l.params = LinearParams{Reload: p.Reload & 0x7F, Control: p.Control}
}

// Restart sets the reload flag; the counter reloads on the next quarter frame.
func (l *LinearCounter) Restart() {
	l.reloadFlag = true
}

// Tick clocks the counter (quarter frame).
func (l *LinearCounter) Tick() {
	if l.reloadFlag {
		l.counter = l.params.Reload
	} else if l.counter > 0 {
		l.counter--
	}

	if !l.params.Control {
		l.reloadFlag = false
	}
}

// Muted reports whether the counter has run out.
func (l *LinearCounter) Muted() bool {
	return l.counter == 0
}

// Value returns the current counter.
func (l *LinearCounter) Value() uint8 {
	return l.counter
}
