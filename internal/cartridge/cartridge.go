package cartridge

import (
	"errors"
	"fmt"
	"log/slog"
)

// Cartridge represents an NES cartridge as seen by the APU: PRG ROM behind
// a mapper.
type Cartridge interface {
	// ReadPRGROM reads a byte from the CPU's $8000-$FFFF window. It is safe to
	// call from an audio goroutine while Write runs on the emulation thread.
	ReadPRGROM(addr uint16) uint8

	// Write handles a CPU write to $8000-$FFFF (mapper registers).
	Write(addr uint16, value uint8)

	// Header returns the parsed iNES header
	Header() *Header

	// CHR returns the CHR ROM, or blank CHR RAM when the header has none
	CHR() []byte
}

// Mapper numbers.
const (
	MapperNROM  = 0
	MapperUxROM = 2
)

// ErrUnsupportedMapper indicates a mapper this package does not implement.
var ErrUnsupportedMapper = errors.New("unsupported mapper")

// ErrEmptyPRG indicates a cartridge with no PRG ROM.
var ErrEmptyPRG = errors.New("PRG ROM is empty")

type options struct {
	logger *slog.Logger
}

// Option configures a cartridge.
type Option func(*options)

// WithLogger sets the logger used for bank switch debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a new cartridge from an iNES file.
// It parses the header and creates the mapper implementation it names.
func New(rom []byte, opts ...Option) (Cartridge, error) {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	header, err := ParseHeader(rom)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	start := header.prgOffset()
	end := start + header.PRGSizeBytes()
	chrEnd := end + header.CHRSizeBytes()
	if len(rom) < chrEnd {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrROMTooSmall, chrEnd, len(rom))
	}
	if header.PRGBanks == 0 {
		return nil, ErrEmptyPRG
	}

	prg := rom[start:end]
	chr := make([]byte, CHRBankSize)
	if !header.HasCHRRAM() {
		chr = rom[end:chrEnd]
	}

	switch header.Mapper {
	case MapperNROM:
		return newNROM(prg, chr, header), nil

	case MapperUxROM:
		return newUxROM(prg, chr, header, o.logger), nil

	default:
		return nil, fmt.Errorf("%w: mapper %d", ErrUnsupportedMapper, header.Mapper)
	}
}

// Synthetic builds an NROM cartridge around raw PRG data, for sample data
// that does not come from a ROM file. The data is padded with zeros to 16 KiB
// or 32 KiB; a 16 KiB image is mirrored into $C000-$FFFF.
func Synthetic(prg []byte) (Cartridge, error) {
	if len(prg) == 0 {
		return nil, ErrEmptyPRG
	}
	if len(prg) > 2*PRGBankSize {
		return nil, fmt.Errorf("%w: %d bytes of PRG data exceeds 32 KiB without a mapper",
			ErrUnsupportedMapper, len(prg))
	}

	banks := 1
	if len(prg) > PRGBankSize {
		banks = 2
	}
	data := make([]byte, banks*PRGBankSize)
	copy(data, prg)

	header := &Header{PRGBanks: uint8(banks), Mapper: MapperNROM} //nolint:gosec // 1 or 2
	return newNROM(data, make([]byte, CHRBankSize), header), nil
}
