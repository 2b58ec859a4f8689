package cartridge

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// UxROM represents a cartridge with the UxROM mapper (mapper 2).
//
// Memory Map:
// - 0x8000-0xBFFF: 16 KiB PRG bank (switchable)
// - 0xC000-0xFFFF: 16 KiB PRG bank (fixed to the last bank)
//
// Control Registers (write-only):
// - 0x8000-0xFFFF: Bank select (lower 4 bits)
//
// The bank register is written by the emulation thread and read by the DMC's
// audio goroutine, so it is held in an atomic.
type UxROM struct {
	header *Header
	prg    []byte
	chr    []byte
	logger *slog.Logger

	bank     atomic.Uint32
	numBanks int
}

// newUxROM creates a new UxROM cartridge.
func newUxROM(prg, chr []byte, header *Header, logger *slog.Logger) *UxROM {
	return &UxROM{
		header:   header,
		prg:      prg,
		chr:      chr,
		logger:   logger,
		numBanks: len(prg) / PRGBankSize,
	}
}

// ReadPRGROM reads a byte from PRG ROM.
func (c *UxROM) ReadPRGROM(addr uint16) uint8 {
	switch {
	// Switchable bank (0x8000-0xBFFF)
	case addr >= 0x8000 && addr < 0xC000:
		bank := int(c.bank.Load()) % c.numBanks
		return c.prg[bank*PRGBankSize+int(addr-0x8000)]

	// Fixed last bank (0xC000-0xFFFF)
	case addr >= 0xC000:
		return c.prg[(c.numBanks-1)*PRGBankSize+int(addr-0xC000)]

	default:
		return 0
	}
}

// Write selects the switchable bank.
func (c *UxROM) Write(addr uint16, value uint8) {
	if addr < 0x8000 {
		return
	}
	bank := value & 0x0F
	c.bank.Store(uint32(bank))
	c.logger.LogAttrs(context.Background(), slog.LevelDebug, "prg bank switch",
		slog.Int("bank", int(bank)))
}

// Bank returns the currently selected switchable bank.
func (c *UxROM) Bank() int {
	return int(c.bank.Load())
}

// Header returns the cartridge header.
func (c *UxROM) Header() *Header {
	return c.header
}

// CHR returns the CHR data.
func (c *UxROM) CHR() []byte {
	return c.chr
}
