// Package cartridge implements iNES cartridge loading and the PRG ROM mappers
// the DMC reads sample data through.
package cartridge

import (
	"bytes"
	"errors"
	"fmt"
)

// Sizes from the iNES format.
const (
	HeaderSize  = 16
	TrainerSize = 512
	PRGBankSize = 16 * 1024 // 16 KiB
	CHRBankSize = 8 * 1024  // 8 KiB
)

var inesMagic = []byte{'N', 'E', 'S', 0x1A}

// Mirroring is the nametable arrangement selected by the header.
type Mirroring uint8

// Mirroring modes.
const (
	Horizontal Mirroring = iota
	Vertical
	FourScreen
)

// String returns a human-readable name for the mirroring mode.
func (m Mirroring) String() string {
	switch m {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case FourScreen:
		return "four-screen"
	default:
		return fmt.Sprintf("unknown (%d)", uint8(m))
	}
}

// Header represents the 16-byte iNES header.
type Header struct {
	// PRG ROM size in 16 KiB units (byte 4)
	PRGBanks uint8

	// CHR ROM size in 8 KiB units (byte 5); 0 means the board uses CHR RAM
	CHRBanks uint8

	// Flags 6
	// Bit 0: vertical mirroring
	// Bit 1: battery-backed PRG RAM
	// Bit 2: 512-byte trainer before PRG data
	// Bit 3: four-screen VRAM
	// Bits 4-7: lower nibble of mapper number
	Flags6 uint8

	// Flags 7, bits 4-7: upper nibble of mapper number
	Flags7 uint8

	// Mapper number
	Mapper uint8

	// Mirroring derived from flags 6
	Mirroring Mirroring

	// Trainer present
	Trainer bool

	// Battery-backed PRG RAM present
	Battery bool
}

// MapperName returns a human-readable name for the mapper number.
func (h *Header) MapperName() string {
	switch h.Mapper {
	case MapperNROM:
		return "NROM"
	case MapperUxROM:
		return "UxROM"
	default:
		return fmt.Sprintf("UNKNOWN (%d)", h.Mapper)
	}
}

// PRGSizeBytes returns the PRG ROM size in bytes.
func (h *Header) PRGSizeBytes() int {
	return int(h.PRGBanks) * PRGBankSize
}

// CHRSizeBytes returns the CHR ROM size in bytes.
func (h *Header) CHRSizeBytes() int {
	return int(h.CHRBanks) * CHRBankSize
}

// HasCHRRAM returns true if the board uses 8 KiB of CHR RAM instead of ROM.
func (h *Header) HasCHRRAM() bool {
	return h.CHRBanks == 0
}

// ErrInvalidHeader indicates the data does not start with the iNES magic.
var ErrInvalidHeader = errors.New("not an iNES file")

// ErrROMTooSmall indicates the data is shorter than its header claims.
var ErrROMTooSmall = errors.New("ROM data too small")

// ParseHeader parses the iNES header from ROM data.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < HeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d for the header",
			ErrROMTooSmall, len(rom), HeaderSize)
	}
	if !bytes.Equal(rom[0:4], inesMagic) {
		return nil, fmt.Errorf("%w: magic % X", ErrInvalidHeader, rom[0:4])
	}

	h := &Header{
		PRGBanks: rom[4],
		CHRBanks: rom[5],
		Flags6:   rom[6],
		Flags7:   rom[7],
	}

	h.Mapper = (h.Flags7 & 0xF0) | (h.Flags6 >> 4)
	h.Trainer = h.Flags6&0x04 != 0
	h.Battery = h.Flags6&0x02 != 0

	switch {
	case h.Flags6&0x08 != 0:
		h.Mirroring = FourScreen
	case h.Flags6&0x01 != 0:
		h.Mirroring = Vertical
	default:
		h.Mirroring = Horizontal
	}

	return h, nil
}

// prgOffset returns where PRG data starts in the file.
func (h *Header) prgOffset() int {
	if h.Trainer {
		return HeaderSize + TrainerSize
	}
	return HeaderSize
}
