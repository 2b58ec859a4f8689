package main

import (
	"fmt"
	"os"

	"github.com/richardwooding/nesapu/internal/cartridge"
)

// InfoCmd displays cartridge header information.
type InfoCmd struct {
	ROM string `arg:"" type:"existingfile" help:"Path to iNES ROM file."`
}

// Run executes the info command.
func (c *InfoCmd) Run(g *Globals) error {
	// #nosec G304 - path is provided by the user via CLI argument
	data, err := os.ReadFile(c.ROM)
	if err != nil {
		return fmt.Errorf("failed to read ROM: %w", err)
	}

	cart, err := cartridge.New(data, cartridge.WithLogger(g.Logger(os.Stderr)))
	if err != nil {
		return fmt.Errorf("failed to load cartridge: %w", err)
	}

	header := cart.Header()
	fmt.Printf("ROM Information:\n")
	fmt.Printf("  Mapper:    %s (%d)\n", header.MapperName(), header.Mapper)
	fmt.Printf("  PRG ROM:   %d KiB (%d banks)\n", header.PRGSizeBytes()/1024, header.PRGBanks)
	if header.HasCHRRAM() {
		fmt.Printf("  CHR:       8 KiB RAM\n")
	} else {
		fmt.Printf("  CHR ROM:   %d KiB (%d banks)\n", header.CHRSizeBytes()/1024, header.CHRBanks)
	}
	fmt.Printf("  Mirroring: %s\n", header.Mirroring)
	fmt.Printf("  Battery:   %v\n", header.Battery)
	fmt.Printf("  Trainer:   %v\n", header.Trainer)
	fmt.Printf("  Flags:     6=0x%02X 7=0x%02X\n", header.Flags6, header.Flags7)

	return nil
}
