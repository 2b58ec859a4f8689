package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/richardwooding/nesapu/internal/apu"
	"github.com/richardwooding/nesapu/internal/audio"
	"github.com/richardwooding/nesapu/internal/emulator"
	"github.com/richardwooding/nesapu/internal/script"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// NTSC frame period: 29780.5 CPU cycles at 1.789773 MHz.
var framePeriod = time.Duration(math.Round(float64(time.Second) * script.CyclesPerFrame / apu.CPUClock))

var (
	errQuit = errors.New("quit")
	errDone = errors.New("done")
)

// PlayCmd plays a script through an audio device in real time.
type PlayCmd struct {
	Script     string        `arg:"" type:"existingfile" help:"Path to Lua script."`
	ROM        string        `type:"existingfile" help:"iNES ROM whose PRG ROM backs DMC samples." env:"NESAPU_ROM"`
	Backend    string        `help:"Audio backend." enum:"ebiten,oto,portaudio,null" default:"ebiten" env:"NESAPU_BACKEND"`
	SampleRate int           `help:"Output sample rate in Hz." default:"44100" env:"NESAPU_SAMPLE_RATE"`
	Buffer     time.Duration `help:"Audio buffer length." default:"20ms" env:"NESAPU_BUFFER"`
	Queue      int           `help:"Events pre-allocated per channel queue." default:"256"`
	Volume     float64       `help:"Output volume (0-1)." default:"0.7" env:"NESAPU_VOLUME"`
	Mute       bool          `help:"Start muted."`
	Scale      int           `help:"Status window scale factor (1-10)." default:"2"`
	Tail       time.Duration `help:"Keep playing after the script ends." default:"500ms"`
}

// Run executes the play command.
func (c *PlayCmd) Run(g *Globals) error {
	if c.Scale < 1 || c.Scale > 10 {
		return fmt.Errorf("%w: got %d", ErrInvalidScale, c.Scale)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidVolume, c.Volume)
	}
	logger := g.Logger(os.Stderr)

	// #nosec G304 - paths are provided by the user via CLI arguments
	src, err := os.ReadFile(c.Script)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	var rom []byte
	if c.ROM != "" {
		// #nosec G304
		rom, err = os.ReadFile(c.ROM)
		if err != nil {
			return fmt.Errorf("failed to read ROM: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	emu, err := emulator.New(emulator.Config{
		Script:        string(src),
		ScriptName:    filepath.Base(c.Script),
		ROM:           rom,
		SampleRate:    c.SampleRate,
		QueueCapacity: c.Queue,
		Logger:        logger,
		Context:       ctx,
	})
	if err != nil {
		return fmt.Errorf("failed to create emulator: %w", err)
	}
	defer emu.Close()

	backend, err := audio.New(c.Backend, c.SampleRate, c.Buffer, audio.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to open audio: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close audio", slog.Any("error", err))
		}
	}()

	backend.SetVolume(gain(c.Volume, c.Mute))
	channels := emu.APU.Channels()
	if err := backend.Start(channels[:]); err != nil {
		return fmt.Errorf("failed to start audio: %w", err)
	}

	tailFrames := int(c.Tail / framePeriod)
	if c.Backend == audio.BackendEbiten {
		return c.runWindow(emu, backend, tailFrames)
	}
	return c.runTerminal(ctx, emu, backend, tailFrames, logger)
}

func (c *PlayCmd) runWindow(emu *emulator.Emulator, backend audio.Backend, tailFrames int) error {
	display := NewDisplay(emu, backend, c.Volume, c.Mute, tailFrames)

	ebiten.SetWindowTitle("nesapu - " + filepath.Base(c.Script))
	ebiten.SetWindowSize(windowWidth*c.Scale, windowHeight*c.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(display); err != nil {
		return fmt.Errorf("emulator error: %w", err)
	}
	return emu.Err()
}

// runTerminal paces emulation from a ticker and, on a terminal, shows a
// status line and reads single-key commands.
func (c *PlayCmd) runTerminal(ctx context.Context, emu *emulator.Emulator, backend audio.Backend,
	tailFrames int, logger *slog.Logger,
) error {
	keys := make(chan byte)
	done := make(chan struct{})
	defer close(done)
	stdin := int(os.Stdin.Fd()) //nolint:gosec // File descriptors fit in int
	if term.IsTerminal(stdin) {
		state, err := term.MakeRaw(stdin)
		if err != nil {
			logger.Warn("failed to enter raw mode", slog.Any("error", err))
		} else {
			defer func() {
				_ = term.Restore(stdin, state)
			}()
			go readKeys(os.Stdin, keys, done)
		}
	}
	showStatus := term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // File descriptors fit in int

	g, ctx := errgroup.WithContext(ctx)
	var muted atomic.Bool
	muted.Store(c.Mute)

	g.Go(func() error {
		ticker := time.NewTicker(framePeriod)
		defer ticker.Stop()

		tail := tailFrames
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}

			if err := emu.RunFrame(); err != nil {
				return err
			}
			if showStatus && emu.Status().Frames%6 == 0 {
				fmt.Printf("\r%s\x1b[K", statusLine(emu.Status(), muted.Load()))
			}
			if emu.Done() {
				if tail <= 0 {
					return errDone
				}
				tail--
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case k := <-keys:
				switch k {
				case 'm', 'M':
					m := !muted.Load()
					muted.Store(m)
					backend.SetVolume(gain(c.Volume, m))
				case 'q', 'Q', 0x03, 0x1B: // Ctrl-C and Esc arrive as bytes in raw mode
					return errQuit
				}
			}
		}
	})

	err := g.Wait()
	if showStatus {
		fmt.Print("\r\n")
	}
	if errors.Is(err, errDone) || errors.Is(err, errQuit) {
		return emu.Err()
	}
	return err
}

// readKeys forwards single bytes from r until r fails or done is closed.
// A Read already blocked when done closes returns with the next key.
func readKeys(r io.Reader, keys chan<- byte, done <-chan struct{}) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		select {
		case keys <- buf[0]:
		case <-done:
			return
		}
	}
}
