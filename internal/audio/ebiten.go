package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/richardwooding/nesapu/internal/apu"
)

// Ebiten plays each channel through its own Ebitengine audio player. The
// audio context is process-wide, so every Ebiten backend in a process shares
// one sample rate.
type Ebiten struct {
	mu      sync.Mutex
	ctx     *audio.Context
	buffer  time.Duration
	frames  int
	volume  float64
	streams []*Stream
	players []*audio.Player
	logger  *slog.Logger
}

var _ Backend = (*Ebiten)(nil)

// NewEbiten returns an Ebitengine backend, creating the audio context on
// first use.
func NewEbiten(sampleRate int, buffer time.Duration, opts ...Option) (*Ebiten, error) {
	o := buildOptions(opts)

	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	} else if ctx.SampleRate() != sampleRate {
		return nil, fmt.Errorf("%w: have %d Hz, want %d Hz", ErrSampleRateMismatch, ctx.SampleRate(), sampleRate)
	}

	return &Ebiten{
		ctx:    ctx,
		buffer: buffer,
		frames: bufferFrames(sampleRate, buffer),
		volume: 1,
		logger: o.logger,
	}, nil
}

// Start creates and starts one stereo float32 player per channel.
func (e *Ebiten) Start(channels []apu.Channel) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.players != nil {
		return ErrAlreadyStarted
	}

	e.streams = newStreams(channels, true, e.frames)
	setGain(e.streams, e.volume)

	players := make([]*audio.Player, 0, len(e.streams))
	for _, s := range e.streams {
		p, err := e.ctx.NewPlayerF32(s)
		if err != nil {
			for _, started := range players {
				_ = started.Close()
			}
			return fmt.Errorf("failed to create player for %s: %w", s.Channel().Name(), err)
		}
		p.SetBufferSize(e.buffer)
		p.Play()
		players = append(players, p)
	}
	e.players = players

	e.logger.Info("audio started",
		slog.String("backend", BackendEbiten),
		slog.Int("sample_rate", e.ctx.SampleRate()),
		slog.Duration("buffer", e.buffer),
		slog.Int("players", len(players)))
	return nil
}

// SetVolume sets the gain of every channel.
func (e *Ebiten) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.volume = v
	setGain(e.streams, v)
}

// Close stops and releases every player.
func (e *Ebiten) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	for _, p := range e.players {
		p.Pause()
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.players = nil
	return errors.Join(errs...)
}
