package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/richardwooding/nesapu/internal/audio"
	"github.com/richardwooding/nesapu/internal/emulator"
)

const (
	// Status window size in unscaled pixels.
	windowWidth  = 480
	windowHeight = 160
)

// Display implements the Ebiten game interface. Each Update runs one frame
// of emulation, so Ebitengine's tick drives emulated time.
type Display struct {
	emulator   *emulator.Emulator
	backend    audio.Backend
	volume     float64
	muted      bool
	tailFrames int
}

// NewDisplay creates a status window for emu. tailFrames is how long to
// keep running after the script finishes.
func NewDisplay(emu *emulator.Emulator, backend audio.Backend, volume float64, muted bool, tailFrames int) *Display {
	return &Display{
		emulator:   emu,
		backend:    backend,
		volume:     volume,
		muted:      muted,
		tailFrames: tailFrames,
	}
}

// Update runs one frame of emulation and handles keys.
// This is called 60 times per second by Ebiten.
func (d *Display) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		d.muted = !d.muted
		d.backend.SetVolume(gain(d.volume, d.muted))
	}

	if d.emulator.Done() {
		if d.tailFrames <= 0 {
			return ebiten.Termination
		}
		d.tailFrames--
	}
	return d.emulator.RunFrame()
}

// Draw prints the APU state.
func (d *Display) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, statusText(d.emulator.Status(), d.muted))
}

// Layout returns the window's logical size.
func (d *Display) Layout(_, _ int) (int, int) {
	return windowWidth, windowHeight
}

// gain returns the backend volume for the mute state.
func gain(volume float64, muted bool) float64 {
	if muted {
		return 0
	}
	return volume
}
