package apu

import (
	"math/rand/v2"
	"testing"
)

// recordingPRG records every address the DMC fetches and serves bytes from
// fill.
type recordingPRG struct {
	addrs []uint16
	fill  func(addr uint16) uint8
}

func (r *recordingPRG) ReadPRGROM(addr uint16) uint8 {
	r.addrs = append(r.addrs, addr)
	if r.fill == nil {
		return 0xAA
	}
	return r.fill(addr)
}

// constPRG serves the same byte at every address.
type constPRG uint8

func (c constPRG) ReadPRGROM(uint16) uint8 { return uint8(c) }

func TestDMCChannel_AddressWrap(t *testing.T) {
	prg := &recordingPRG{}
	a := New(prg, 44100)
	a.Write(RegDMCControl, 0x0F) // Fastest rate, no loop, no IRQ
	a.Write(RegDMCAddress, 0xFF) // $FFC0
	a.Write(RegDMCLength, 0x04)  // 65 bytes
	a.Write(RegStatus, 0x10)

	a.Channels()[DMC].Render(make([]float32, 4000))

	if len(prg.addrs) != 65 {
		t.Fatalf("fetched %d bytes, want 65", len(prg.addrs))
	}
	if prg.addrs[0] != 0xFFC0 {
		t.Errorf("first fetch at %#04x, want 0xFFC0", prg.addrs[0])
	}
	if prg.addrs[63] != 0xFFFF {
		t.Errorf("64th fetch at %#04x, want 0xFFFF", prg.addrs[63])
	}
	if prg.addrs[64] != 0x8000 {
		t.Errorf("address after 0xFFFF = %#04x, want 0x8000", prg.addrs[64])
	}
	for i, addr := range prg.addrs {
		if addr < 0x8000 {
			t.Errorf("fetch %d at %#04x is outside PRG space", i, addr)
		}
	}

	if a.Read(RegStatus)&0x10 != 0 {
		t.Error("$4015 bit 4 should clear once the sample has finished")
	}
}

func TestDMCChannel_LevelBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	prg := &recordingPRG{fill: func(uint16) uint8 { return uint8(rng.UintN(256)) }} //nolint:gosec // < 256

	tests := []struct {
		name  string
		start uint16
	}{
		{"from zero", 0},
		{"from middle", 64},
		{"from ceiling", 126},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDMCChannel(prg, 44100, 16)
			d.events.Push(Event{Kind: EventDMCControl, DMC: DMCParams{Loop: true, Rate: 15}})
			d.events.Push(Event{Kind: EventDirectLoad, Value: tt.start})
			d.events.Push(Event{Kind: EventSampleLength, Value: 0xFF})
			d.events.Push(Event{Kind: EventEnable, Flag: true})

			before := len(prg.addrs)
			buf := make([]float32, 1)
			for i := range 4000 {
				d.Render(buf)
				if d.level > 126 {
					t.Fatalf("sample %d: level %d above 126", i, d.level)
				}
				if buf[0] < -1 || buf[0] > 1 {
					t.Fatalf("sample %d = %v out of [-1, 1]", i, buf[0])
				}
			}

			if bits := (len(prg.addrs) - before) * 8; bits < 1000 {
				t.Errorf("only %d delta bits consumed, want at least 1000", bits)
			}
		})
	}
}

func TestDMCChannel_Clamp(t *testing.T) {
	tests := []struct {
		name  string
		start uint8
		fill  uint8
		want  uint8
	}{
		{"ones at ceiling", 125, 0xFF, 126},
		{"zeros at floor", 1, 0x00, 0},
		{"alternating", 64, 0x55, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDMCChannel(&recordingPRG{fill: func(uint16) uint8 { return tt.fill }}, 44100, 16)
			d.level = tt.start
			d.bytesRemaining = 1
			d.enabled = true

			for range 8 {
				d.clockBit()
			}
			if d.level != tt.want {
				t.Errorf("level = %d, want %d", d.level, tt.want)
			}
		})
	}
}

func TestDMCChannel_IRQ(t *testing.T) {
	a := New(&recordingPRG{}, 44100)
	a.Write(RegDMCControl, 0x8F) // IRQ enable, fastest rate
	a.Write(RegDMCLength, 0x00)  // 1 byte
	a.Write(RegStatus, 0x10)

	a.Channels()[DMC].Render(make([]float32, 200))

	if !a.IRQPending() {
		t.Fatal("DMC IRQ should be pending after the sample ends")
	}
	if a.Read(RegStatus)&StatusDMCIRQ == 0 {
		t.Error("$4015 bit 7 should report the DMC IRQ")
	}
	// Reading does not acknowledge the DMC IRQ
	if !a.IRQPending() {
		t.Error("DMC IRQ should survive a $4015 read")
	}

	a.Write(RegStatus, 0x00)
	if a.IRQPending() {
		t.Error("writing $4015 should clear the DMC IRQ")
	}
}

func TestDMCChannel_IRQClearedByDisablingIRQ(t *testing.T) {
	a := New(&recordingPRG{}, 44100)
	a.Write(RegDMCControl, 0x8F)
	a.Write(RegDMCLength, 0x00)
	a.Write(RegStatus, 0x10)
	a.Channels()[DMC].Render(make([]float32, 200))

	if !a.IRQPending() {
		t.Fatal("DMC IRQ should be pending")
	}
	a.Write(RegDMCControl, 0x0F)
	if a.IRQPending() {
		t.Error("clearing $4010 bit 7 should acknowledge the DMC IRQ")
	}
}

func TestDMCChannel_AcknowledgeWithoutRead(t *testing.T) {
	tests := []struct {
		name  string
		addr  uint16
		value uint8
	}{
		{"status write", RegStatus, 0x00},
		{"IRQ disable", RegDMCControl, 0x0F},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(&recordingPRG{}, 44100)
			a.Write(RegDMCControl, 0x8F)
			a.Write(RegDMCLength, 0x00)
			a.Write(RegStatus, 0x10)

			// The IRQ notification is still queued: nothing has drained it
			a.Channels()[DMC].Render(make([]float32, 2000))

			a.Write(tt.addr, tt.value)
			if a.IRQPending() {
				t.Error("acknowledged DMC IRQ was raised again by a queued notification")
			}
			if a.Read(RegStatus)&StatusDMCIRQ != 0 {
				t.Error("$4015 bit 7 should stay clear after the acknowledge")
			}
		})
	}
}

func TestDMCChannel_Loop(t *testing.T) {
	prg := &recordingPRG{}
	a := New(prg, 44100)
	a.Write(RegDMCControl, 0x4F) // Loop, fastest rate
	a.Write(RegDMCAddress, 0x00)
	a.Write(RegDMCLength, 0x00) // 1 byte
	a.Write(RegStatus, 0x10)

	a.Channels()[DMC].Render(make([]float32, 1000))

	if len(prg.addrs) < 10 {
		t.Fatalf("looping sample fetched only %d bytes", len(prg.addrs))
	}
	for i, addr := range prg.addrs {
		if addr != 0xC000 {
			t.Fatalf("fetch %d at %#04x, looping 1-byte sample should stay at 0xC000", i, addr)
		}
	}
	if a.Read(RegStatus)&0x10 == 0 {
		t.Error("looping DMC should keep $4015 bit 4 set")
	}
}

func TestDMCChannel_DirectLoad(t *testing.T) {
	a := New(nil, 44100)
	a.Write(RegDMCLoad, 0x7F)
	a.Write(RegStatus, 0x10)

	buf := make([]float32, 1)
	a.Channels()[DMC].Render(buf)

	if want := float32(127-64) / 64; buf[0] != want {
		t.Errorf("sample = %v after direct load of 127, want %v", buf[0], want)
	}
}

func TestDMCChannel_NilPRG(t *testing.T) {
	a := New(nil, 44100)
	a.Write(RegDMCControl, 0x0F)
	a.Write(RegStatus, 0x10)

	// Open bus reads as 0: the level walks down and stays in range
	buf := make([]float32, 1000)
	a.Channels()[DMC].Render(buf)
	if buf[len(buf)-1] != -1 {
		t.Errorf("last sample = %v, want -1 after decoding zero bytes", buf[len(buf)-1])
	}
}
