package apu

// Timer period limits outside of which the sweep unit mutes its channel.
const (
	minSweepTimer = 0x008
	maxSweepTimer = 0x7FF
)

// SweepParams are the fields of $4001/$4005.
type SweepParams struct {
	Enabled bool  // Bit 7
	Period  uint8 // Bits 6-4: divider period
	Negate  bool  // Bit 3: subtract instead of add
	Shift   uint8 // Bits 2-0: shift count
}

// Sweep periodically shifts a pulse channel's timer period.
type Sweep struct {
	params  SweepParams
	divider uint8
	timer   uint16 // Channel's 11-bit timer period
	target  int
}

// Configure replaces the sweep parameters and reloads the divider.
func (s *Sweep) Configure(p SweepParams) {
	s.params = p
	s.divider = p.Period + 1
}

// SetTimer sets the channel timer period the sweep operates on.
func (s *Sweep) SetTimer(timer uint16) {
	s.timer = timer & 0x7FF
}

// Timer returns the (possibly swept) channel timer period.
func (s *Sweep) Timer() uint16 {
	return s.timer
}

// Restart reloads the divider.
func (s *Sweep) Restart() {
	s.divider = s.params.Period + 1
}

// Tick clocks the sweep unit (half frame). When the computed target period
// leaves [8, 0x7FF] the channel's length counter is forced to zero and the
// timer is left unchanged.
func (s *Sweep) Tick(length *LengthCounter) {
	if s.divider > 0 {
		s.divider--
	}
	if s.divider != 0 {
		return
	}
	s.divider = s.params.Period + 1

	if !s.params.Enabled || s.params.Shift == 0 || length.Muted() {
		return
	}

	delta := int(s.timer >> s.params.Shift)
	if s.params.Negate {
		s.target = int(s.timer) - delta
	} else {
		s.target = int(s.timer) + delta
	}

	if s.target < minSweepTimer || s.target > maxSweepTimer {
		length.Clear()
		return
	}
	s.timer = uint16(s.target) //nolint:gosec // target is within [8, 0x7FF]
}
