package emulator

import (
	"github.com/richardwooding/nesapu/internal/apu"
	"github.com/richardwooding/nesapu/internal/cartridge"
)

// Bus routes script register traffic to the APU and the cartridge the way
// the CPU bus would, and records what the trace needs.
type Bus struct {
	apu   *apu.APU
	cart  cartridge.Cartridge
	trace *Trace

	cycle   int64
	irqLine bool
}

// Write writes to the APU ($4000-$4017) or the mapper ($8000-$FFFF).
// $4014 (OAM DMA) and $4016 (controller strobe) are not APU registers and
// are ignored.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr >= 0x4000 && addr <= 0x4017:
		if addr == 0x4014 || addr == 0x4016 {
			return
		}
		b.apu.Write(addr, value)
		b.trace.add(TraceEvent{Cycle: b.cycle, Kind: TraceWrite, Addr: addr, Value: value})
	case addr >= 0x8000 && b.cart != nil:
		b.cart.Write(addr, value)
		b.trace.add(TraceEvent{Cycle: b.cycle, Kind: TraceWrite, Addr: addr, Value: value})
	}
}

// Read reads $4015 or PRG ROM. Everything else reads as 0.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr == apu.RegStatus:
		v := b.apu.Read(addr)
		b.trace.add(TraceEvent{Cycle: b.cycle, Kind: TraceStatusRead, Addr: addr, Value: v})
		b.updateIRQ()
		return v
	case addr >= 0x8000 && b.cart != nil:
		return b.cart.ReadPRGROM(addr)
	default:
		return 0
	}
}

// Tick advances the APU and records IRQ line changes.
func (b *Bus) Tick(cycles int) {
	b.apu.Tick(cycles)
	b.cycle += int64(cycles)
	b.updateIRQ()
}

// IRQPending reports the APU IRQ line.
func (b *Bus) IRQPending() bool {
	b.updateIRQ()
	return b.irqLine
}

func (b *Bus) updateIRQ() {
	irq := b.apu.IRQPending()
	if irq == b.irqLine {
		return
	}
	b.irqLine = irq

	kind := TraceIRQCleared
	if irq {
		kind = TraceIRQRaised
	}
	b.trace.add(TraceEvent{Cycle: b.cycle, Kind: kind})
}

// Cycle returns the number of CPU cycles elapsed.
func (b *Bus) Cycle() int64 {
	return b.cycle
}
