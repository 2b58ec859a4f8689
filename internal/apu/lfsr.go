package apu

import "errors"

// ErrLFSRDead indicates the noise shift register reached the all-zero state,
// from which it can never leave. It is only raised through a panic.
var ErrLFSRDead = errors.New("noise LFSR reached the zero state")

// LFSR is the noise channel's 15-bit linear-feedback shift register.
type LFSR struct {
	value uint16
}

// NewLFSR returns a shift register holding its power-on value of 1.
func NewLFSR() LFSR {
	return LFSR{value: 1}
}

// Step shifts the register once and returns the new bit 0. Long mode taps
// bit 1 (32767-step sequence), short mode taps bit 6 (93-step sequence).
func (r *LFSR) Step(short bool) bool {
	tap := uint16(1)
	if short {
		tap = 6
	}

	feedback := (r.value & 0x01) ^ ((r.value >> tap) & 0x01)
	r.value = (r.value >> 1) | (feedback << 14)

	if r.value == 0 {
		panic(ErrLFSRDead)
	}
	return r.value&0x01 != 0
}

// Value returns the register contents.
func (r *LFSR) Value() uint16 {
	return r.value
}
