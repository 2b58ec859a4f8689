// Package emulator provides the main emulator runner that ties together
// the APU, the cartridge and the script driving register traffic.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/richardwooding/nesapu/internal/apu"
	"github.com/richardwooding/nesapu/internal/cartridge"
	"github.com/richardwooding/nesapu/internal/script"
)

var (
	// ErrTimeout indicates the script did not finish in time.
	ErrTimeout = errors.New("timeout waiting for script to finish")

	// ErrNoScript indicates a Config without a script.
	ErrNoScript = errors.New("no script given")
)

// Config describes an emulator instance.
type Config struct {
	// Script source and the name used in error messages.
	Script     string
	ScriptName string

	// ROM is an optional iNES image whose PRG ROM backs DMC samples.
	// When it is empty, PRG (if any) is wrapped in a synthetic NROM board.
	ROM []byte
	PRG []byte

	SampleRate    int
	QueueCapacity int

	// Trace enables recording of bus events.
	Trace bool

	// Render makes RunFrame pull each frame's worth of samples from every
	// channel on the calling goroutine. Headless runs use it in place of
	// audio devices so that $4015 reflects the channels' progress.
	Render bool

	Logger  *slog.Logger
	Context context.Context
}

// Emulator represents an NES APU test bench instance.
type Emulator struct {
	APU  *apu.APU
	Cart cartridge.Cartridge
	Bus  *Bus

	driver    *script.Driver
	trace     *Trace
	frames    int64
	frameFrac float64

	render     bool
	scratch    []float32
	sampleFrac float64
}

// New creates a new emulator instance from cfg.
func New(cfg Config) (*Emulator, error) {
	if cfg.Script == "" {
		return nil, ErrNoScript
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	name := cfg.ScriptName
	if name == "" {
		name = "script"
	}

	// Load cartridge
	var cart cartridge.Cartridge
	var err error
	switch {
	case len(cfg.ROM) > 0:
		cart, err = cartridge.New(cfg.ROM, cartridge.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to load cartridge: %w", err)
		}
	case len(cfg.PRG) > 0:
		cart, err = cartridge.Synthetic(cfg.PRG)
		if err != nil {
			return nil, fmt.Errorf("failed to build cartridge: %w", err)
		}
	}

	opts := []apu.Option{apu.WithLogger(logger)}
	if cfg.QueueCapacity > 0 {
		opts = append(opts, apu.WithQueueCapacity(cfg.QueueCapacity))
	}
	var prg apu.PRGReader
	if cart != nil {
		prg = cart
	}
	a := apu.New(prg, cfg.SampleRate, opts...)

	e := &Emulator{
		APU:    a,
		Cart:   cart,
		render: cfg.Render,
	}
	if cfg.Render {
		e.scratch = make([]float32, a.SampleRate()/30+1)
	}
	if cfg.Trace {
		e.trace = &Trace{}
	}
	e.Bus = &Bus{apu: a, cart: cart, trace: e.trace}

	e.driver, err = script.New(name, cfg.Script, e.Bus,
		script.WithLogger(logger), script.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to load script: %w", err)
	}

	return e, nil
}

// RunCycles runs the emulator for the specified number of CPU cycles.
func (e *Emulator) RunCycles(cycles int) error {
	return e.driver.Advance(cycles)
}

// RunFrame runs one NTSC video frame worth of CPU cycles (29780.5 on
// average).
func (e *Emulator) RunFrame() error {
	total := script.CyclesPerFrame + e.frameFrac
	cycles := int(total)
	e.frameFrac = total - float64(cycles)
	e.frames++
	if err := e.RunCycles(cycles); err != nil {
		return err
	}
	if e.render {
		e.renderCycles(cycles)
	}
	return nil
}

// renderCycles drains the samples that cycles CPU cycles correspond to.
func (e *Emulator) renderCycles(cycles int) {
	total := float64(cycles)*float64(e.APU.SampleRate())/apu.CPUClock + e.sampleFrac
	n := int(total)
	e.sampleFrac = total - float64(n)
	if n > len(e.scratch) {
		e.scratch = make([]float32, n)
	}
	for _, ch := range e.APU.Channels() {
		ch.Render(e.scratch[:n])
	}
}

// RunUntilDone runs frames until the script finishes or timeout of wall
// time passes, and returns the trace recorded so far. The trace is empty
// unless Config.Trace was set.
func (e *Emulator) RunUntilDone(timeout time.Duration) (*Trace, error) {
	startTime := time.Now()

	for !e.driver.Done() {
		if time.Since(startTime) > timeout {
			return e.finishTrace(), ErrTimeout
		}
		if err := e.RunFrame(); err != nil {
			return e.finishTrace(), err
		}
	}
	return e.finishTrace(), nil
}

func (e *Emulator) finishTrace() *Trace {
	t := e.trace
	if t == nil {
		t = &Trace{}
	}
	t.Cycles = e.Bus.Cycle()
	t.Frames = e.frames
	return t
}

// Status is a snapshot of emulator state for display.
type Status struct {
	Cycle      int64
	Frames     int64
	IRQ        bool
	Enabled    uint8
	FrameMode  apu.FrameMode
	Registers  apu.Decoder
	ScriptDone bool
}

// Status returns the current state without side effects on the APU.
func (e *Emulator) Status() Status {
	return Status{
		Cycle:      e.Bus.Cycle(),
		Frames:     e.frames,
		IRQ:        e.Bus.irqLine,
		Enabled:    e.APU.EnabledMask(),
		FrameMode:  e.APU.FrameMode(),
		Registers:  e.APU.Registers(),
		ScriptDone: e.driver.Done(),
	}
}

// Done reports whether the script has finished.
func (e *Emulator) Done() bool {
	return e.driver.Done()
}

// Err returns the error that stopped the script, if any.
func (e *Emulator) Err() error {
	return e.driver.Err()
}

// Close releases the script state.
func (e *Emulator) Close() {
	e.driver.Close()
}
