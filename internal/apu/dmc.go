package apu

// PRGReader reads cartridge PRG ROM through the mapper. The DMC calls it
// from its audio goroutine, so implementations must tolerate concurrent bank
// switches made on the emulation thread.
type PRGReader interface {
	ReadPRGROM(addr uint16) uint8
}

// openBus is used when no mapper is attached.
type openBus struct{}

func (openBus) ReadPRGROM(uint16) uint8 { return 0 }

// DMCChannel plays 1-bit delta-encoded samples fetched from PRG ROM into a
// 7-bit output level.
type DMCChannel struct {
	voice

	prg PRGReader

	// $4010-$4013
	irqEnable   bool
	loop        bool
	rate        uint8
	startAddr   uint16
	startLength uint16

	// Sample reader
	address        uint16
	bytesRemaining uint16

	// Output unit
	shift         uint8
	bitsRemaining uint8 // 0-8
	level         uint8 // 0-127
}

// NewDMCChannel creates a DMC channel reading sample bytes from prg.
func NewDMCChannel(prg PRGReader, sampleRate int, prealloc int) *DMCChannel {
	if prg == nil {
		prg = openBus{}
	}
	return &DMCChannel{
		voice:       newVoice("dmc", sampleRate, prealloc),
		prg:         prg,
		startAddr:   0xC000,
		startLength: 1,
	}
}

// Render fills out with samples, applying queued events before each one.
func (d *DMCChannel) Render(out []float32) {
	for i := range out {
		d.drain()
		out[i] = d.sample()
	}
}

func (d *DMCChannel) drain() {
	for {
		ev, ok := d.events.Pop()
		if !ok {
			return
		}
		d.apply(ev)
	}
}

func (d *DMCChannel) apply(ev Event) {
	switch ev.Kind {
	case EventDMCControl:
		d.irqEnable = ev.DMC.IRQEnable
		d.loop = ev.DMC.Loop
		d.rate = ev.DMC.Rate & 0x0F
	case EventDirectLoad:
		d.level = uint8(ev.Value & 0x7F)
	case EventSampleAddress:
		d.startAddr = 0xC000 + (ev.Value&0xFF)*64
	case EventSampleLength:
		d.startLength = (ev.Value&0xFF)*16 + 1
	case EventEnable:
		d.enabled = ev.Flag
		switch {
		case !d.enabled:
			d.bytesRemaining = 0
			d.report(0)
		case d.bytesRemaining == 0:
			d.restart()
		}
	case EventReset:
		d.phase = 0
		if d.enabled {
			d.restart()
		}
	}
}

// restart begins the sample again from the register start address/length.
func (d *DMCChannel) restart() {
	d.address = d.startAddr
	d.bytesRemaining = d.startLength
	d.report(uint32(d.bytesRemaining))
}

func (d *DMCChannel) sample() float32 {
	if !d.enabled {
		return 0
	}

	wraps := d.advance(CPUClock / float64(DMCRate(d.rate)))
	for range wraps {
		d.clockBit()
	}
	return (float32(d.level) - 64) / 64
}

// clockBit consumes one delta bit, fetching a new byte when the shift
// register is empty.
func (d *DMCChannel) clockBit() {
	if d.bitsRemaining == 0 {
		if d.bytesRemaining == 0 {
			return
		}
		d.fetch()
	}

	if d.shift&0x01 != 0 {
		if d.level < 126 {
			d.level = min(d.level+2, 126)
		}
	} else if d.level >= 2 {
		d.level -= 2
	} else {
		d.level = 0
	}
	d.shift >>= 1
	d.bitsRemaining--
}

func (d *DMCChannel) fetch() {
	d.shift = d.prg.ReadPRGROM(d.address)
	if d.address == 0xFFFF {
		d.address = 0x8000
	} else {
		d.address++
	}
	d.bitsRemaining = 8
	d.bytesRemaining--

	if d.bytesRemaining > 0 {
		d.report(uint32(d.bytesRemaining))
		return
	}

	switch {
	case d.loop:
		d.restart()
	case d.irqEnable:
		d.report(0)
		d.notify.Push(Notification{Kind: NotifyIRQ})
	default:
		d.report(0)
	}
}
