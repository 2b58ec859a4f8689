package apu

// ChannelID indexes the five channels in $4015 bit order.
type ChannelID int

// Channel indices.
const (
	Pulse1 ChannelID = iota
	Pulse2
	Triangle
	Noise
	DMC

	// NumChannels is the number of sound channels.
	NumChannels = 5

	// NoChannel is returned for addresses that do not belong to a channel.
	NoChannel ChannelID = -1
)

// String returns the channel's short name.
func (c ChannelID) String() string {
	switch c {
	case Pulse1:
		return "pulse1"
	case Pulse2:
		return "pulse2"
	case Triangle:
		return "triangle"
	case Noise:
		return "noise"
	case DMC:
		return "dmc"
	default:
		return "none"
	}
}

// Register addresses.
const (
	RegPulse1Control = 0x4000
	RegPulse1Sweep   = 0x4001
	RegPulse1TimerLo = 0x4002
	RegPulse1TimerHi = 0x4003
	RegPulse2Control = 0x4004
	RegPulse2Sweep   = 0x4005
	RegPulse2TimerLo = 0x4006
	RegPulse2TimerHi = 0x4007
	RegTriLinear     = 0x4008
	RegTriTimerLo    = 0x400A
	RegTriTimerHi    = 0x400B
	RegNoiseControl  = 0x400C
	RegNoisePeriod   = 0x400E
	RegNoiseLength   = 0x400F
	RegDMCControl    = 0x4010
	RegDMCLoad       = 0x4011
	RegDMCAddress    = 0x4012
	RegDMCLength     = 0x4013
	RegStatus        = 0x4015
	RegFrameCounter  = 0x4017
)

// PulseRegisters is the decoded contents of $4000-$4003 or $4004-$4007.
type PulseRegisters struct {
	// $4000
	Duty     uint8
	Halt     bool
	Constant bool
	Volume   uint8

	// $4001
	SweepEnabled bool
	SweepPeriod  uint8
	SweepNegate  bool
	SweepShift   uint8

	// $4002, $4003
	Timer       uint16
	LengthIndex uint8
}

func (r *PulseRegisters) write(reg uint16, value uint8, buf []Event) []Event {
	switch reg {
	case 0:
		r.Duty = (value & 0xC0) >> 6
		r.Halt = value&0x20 != 0
		r.Constant = value&0x10 != 0
		r.Volume = value & 0x0F
		buf = append(buf,
			Event{Kind: EventNote, Value: uint16(r.Duty)},
			Event{Kind: EventEnvelope, Envelope: r.envelope()},
			Event{Kind: EventLengthCounter, Length: r.length()},
		)
	case 1:
		r.SweepEnabled = value&0x80 != 0
		r.SweepPeriod = (value & 0x70) >> 4
		r.SweepNegate = value&0x08 != 0
		r.SweepShift = value & 0x07
		buf = append(buf, Event{Kind: EventSweep, Sweep: SweepParams{
			Enabled: r.SweepEnabled,
			Period:  r.SweepPeriod,
			Negate:  r.SweepNegate,
			Shift:   r.SweepShift,
		}})
	case 2:
		r.Timer = (r.Timer & 0x0700) | uint16(value)
		buf = append(buf, Event{Kind: EventFrequency, Value: r.Timer})
	case 3:
		r.Timer = (r.Timer & 0x00FF) | uint16(value&0x07)<<8
		r.LengthIndex = value >> 3
		buf = append(buf,
			Event{Kind: EventLengthCounter, Length: r.length()},
			Event{Kind: EventFrequency, Value: r.Timer},
			Event{Kind: EventReset},
		)
	}
	return buf
}

func (r *PulseRegisters) envelope() EnvelopeParams {
	return EnvelopeParams{Rate: r.Volume, Constant: r.Constant, Loop: r.Halt}
}

func (r *PulseRegisters) length() LengthParams {
	return LengthParams{Index: r.LengthIndex, Halt: r.Halt}
}

// TriangleRegisters is the decoded contents of $4008-$400B.
type TriangleRegisters struct {
	Control     bool  // $4008 bit 7
	Reload      uint8 // $4008 bits 6-0
	Timer       uint16
	LengthIndex uint8
}

func (r *TriangleRegisters) write(reg uint16, value uint8, buf []Event) []Event {
	switch reg {
	case 0:
		r.Control = value&0x80 != 0
		r.Reload = value & 0x7F
		buf = append(buf,
			Event{Kind: EventLinearCounter, Linear: LinearParams{Reload: r.Reload, Control: r.Control}},
			Event{Kind: EventLengthCounter, Length: r.length()},
		)
	case 2:
		r.Timer = (r.Timer & 0x0700) | uint16(value)
		buf = append(buf, Event{Kind: EventFrequency, Value: r.Timer})
	case 3:
		r.Timer = (r.Timer & 0x00FF) | uint16(value&0x07)<<8
		r.LengthIndex = value >> 3
		buf = append(buf,
			Event{Kind: EventLengthCounter, Length: r.length()},
			Event{Kind: EventFrequency, Value: r.Timer},
			Event{Kind: EventReset},
		)
	}
	return buf
}

func (r *TriangleRegisters) length() LengthParams {
	return LengthParams{Index: r.LengthIndex, Halt: r.Control}
}

// NoiseRegisters is the decoded contents of $400C-$400F.
type NoiseRegisters struct {
	// $400C
	Halt     bool
	Constant bool
	Volume   uint8

	// $400E
	Short       bool
	PeriodIndex uint8

	// $400F
	LengthIndex uint8
}

func (r *NoiseRegisters) write(reg uint16, value uint8, buf []Event) []Event {
	switch reg {
	case 0:
		r.Halt = value&0x20 != 0
		r.Constant = value&0x10 != 0
		r.Volume = value & 0x0F
		buf = append(buf,
			Event{Kind: EventEnvelope, Envelope: EnvelopeParams{Rate: r.Volume, Constant: r.Constant, Loop: r.Halt}},
			Event{Kind: EventLengthCounter, Length: r.length()},
		)
	case 2:
		r.Short = value&0x80 != 0
		r.PeriodIndex = value & 0x0F
		buf = append(buf, Event{Kind: EventNote, Value: uint16(r.PeriodIndex), Flag: r.Short})
	case 3:
		r.LengthIndex = value >> 3
		buf = append(buf,
			Event{Kind: EventLengthCounter, Length: r.length()},
			Event{Kind: EventReset},
		)
	}
	return buf
}

func (r *NoiseRegisters) length() LengthParams {
	return LengthParams{Index: r.LengthIndex, Halt: r.Halt}
}

// DMCRegisters is the decoded contents of $4010-$4013.
type DMCRegisters struct {
	IRQEnable    bool
	Loop         bool
	Rate         uint8
	Level        uint8
	SampleAddr   uint8 // Start address = $C000 + SampleAddr*64
	SampleLength uint8 // Length = SampleLength*16 + 1 bytes
}

func (r *DMCRegisters) write(reg uint16, value uint8, buf []Event) []Event {
	switch reg {
	case 0:
		r.IRQEnable = value&0x80 != 0
		r.Loop = value&0x40 != 0
		r.Rate = value & 0x0F
		buf = append(buf, Event{Kind: EventDMCControl, DMC: DMCParams{
			IRQEnable: r.IRQEnable,
			Loop:      r.Loop,
			Rate:      r.Rate,
		}})
	case 1:
		r.Level = value & 0x7F
		buf = append(buf, Event{Kind: EventDirectLoad, Value: uint16(r.Level)})
	case 2:
		r.SampleAddr = value
		buf = append(buf, Event{Kind: EventSampleAddress, Value: uint16(value)})
	case 3:
		r.SampleLength = value
		buf = append(buf,
			Event{Kind: EventSampleLength, Value: uint16(value)},
			Event{Kind: EventReset},
		)
	}
	return buf
}

// Decoder turns channel register writes ($4000-$4013) into typed events.
// It is owned by the emulation thread.
type Decoder struct {
	Pulse1   PulseRegisters
	Pulse2   PulseRegisters
	Triangle TriangleRegisters
	Noise    NoiseRegisters
	DMC      DMCRegisters

	buf [3]Event
}

// Decode updates the owning channel's register state and returns the
// channel and the events the write produces, in the order they must be
// applied. The returned slice is only valid until the next call. Addresses
// outside $4000-$4013 and unused registers return no events.
func (d *Decoder) Decode(addr uint16, value uint8) (ChannelID, []Event) {
	buf := d.buf[:0]
	reg := addr & 0x03

	switch {
	case addr >= 0x4000 && addr <= 0x4003:
		return Pulse1, d.Pulse1.write(reg, value, buf)
	case addr >= 0x4004 && addr <= 0x4007:
		return Pulse2, d.Pulse2.write(reg, value, buf)
	case addr >= 0x4008 && addr <= 0x400B:
		return Triangle, d.Triangle.write(reg, value, buf)
	case addr >= 0x400C && addr <= 0x400F:
		return Noise, d.Noise.write(reg, value, buf)
	case addr >= 0x4010 && addr <= 0x4013:
		return DMC, d.DMC.write(reg, value, buf)
	default:
		return NoChannel, nil
	}
}
