package apu

import "fmt"

// NTSC timing.
const (
	// CPUClock is the NTSC 2A03 CPU clock in Hz.
	CPUClock = 1789772.5

	// FrameStepCycles is the number of CPU cycles between frame sequencer steps.
	FrameStepCycles = 7457
)

// Length counter load values, indexed by the 5-bit length-load field.
var lengthTable = [32]uint8{
	0x0A, 0xFE, 0x14, 0x02, 0x28, 0x04, 0x50, 0x06, 0xA0, 0x08, 0x3C, 0x0A, 0x0E, 0x0C, 0x1A, 0x0E,
	0x0C, 0x10, 0x18, 0x12, 0x30, 0x14, 0x60, 0x16, 0xC0, 0x18, 0x48, 0x1A, 0x10, 0x1C, 0x20, 0x1E,
}

// Noise timer periods in CPU cycles.
var noisePeriodTable = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068,
}

// DMC output rates in CPU cycles per bit.
var dmcRateTable = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54,
}

// Pulse duty cycle ratios (12.5%, 25%, 50%, 75%).
var dutyTable = [4]float64{0.125, 0.25, 0.5, 0.75}

// LengthLoad returns the length counter value for a 5-bit load index.
func LengthLoad(index uint8) uint8 {
	if int(index) >= len(lengthTable) {
		panic(fmt.Sprintf("apu: length index %d out of range", index))
	}
	return lengthTable[index]
}

// NoisePeriod returns the noise timer period for a 4-bit period index.
func NoisePeriod(index uint8) uint16 {
	if int(index) >= len(noisePeriodTable) {
		panic(fmt.Sprintf("apu: noise period index %d out of range", index))
	}
	return noisePeriodTable[index]
}

// DMCRate returns the DMC bit period for a 4-bit rate index.
func DMCRate(index uint8) uint16 {
	if int(index) >= len(dmcRateTable) {
		panic(fmt.Sprintf("apu: DMC rate index %d out of range", index))
	}
	return dmcRateTable[index]
}

// DutyRatio returns the high portion of a pulse period for a 2-bit duty value.
func DutyRatio(duty uint8) float64 {
	if int(duty) >= len(dutyTable) {
		panic(fmt.Sprintf("apu: duty %d out of range", duty))
	}
	return dutyTable[duty]
}
