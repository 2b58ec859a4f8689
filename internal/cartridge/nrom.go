package cartridge

// NROM represents a cartridge with no mapper (mapper 0).
// Supports 16 KiB or 32 KiB of PRG ROM.
//
// Memory Map:
// - 0x8000-0xBFFF: First 16 KiB of PRG ROM
// - 0xC000-0xFFFF: Last 16 KiB of PRG ROM (mirror of the first for 16 KiB images)
type NROM struct {
	header *Header
	prg    []byte
	chr    []byte
}

// newNROM creates a new NROM cartridge.
func newNROM(prg, chr []byte, header *Header) *NROM {
	return &NROM{
		header: header,
		prg:    prg,
		chr:    chr,
	}
}

// ReadPRGROM reads a byte from PRG ROM.
func (c *NROM) ReadPRGROM(addr uint16) uint8 {
	if addr < 0x8000 {
		return 0
	}
	offset := int(addr-0x8000) % len(c.prg)
	return c.prg[offset]
}

// Write is ignored: NROM has no registers.
func (c *NROM) Write(uint16, uint8) {}

// Header returns the cartridge header.
func (c *NROM) Header() *Header {
	return c.header
}

// CHR returns the CHR data.
func (c *NROM) CHR() []byte {
	return c.chr
}
