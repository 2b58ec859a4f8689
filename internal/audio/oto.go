package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/richardwooding/nesapu/internal/apu"
)

// Oto plays each channel through its own oto player on a shared mono
// float32 context.
type Oto struct {
	mu         sync.Mutex
	ctx        *oto.Context
	sampleRate int
	frames     int
	volume     float64
	streams    []*Stream
	players    []*oto.Player
	logger     *slog.Logger
}

var _ Backend = (*Oto)(nil)

// NewOto opens the output device and waits for it to become ready. oto
// allows a single context per process.
func NewOto(sampleRate int, buffer time.Duration, opts ...Option) (*Oto, error) {
	o := buildOptions(opts)

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	return &Oto{
		ctx:        ctx,
		sampleRate: sampleRate,
		frames:     bufferFrames(sampleRate, buffer),
		volume:     1,
		logger:     o.logger,
	}, nil
}

// Start creates and starts one player per channel.
func (o *Oto) Start(channels []apu.Channel) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.players != nil {
		return ErrAlreadyStarted
	}

	o.streams = newStreams(channels, false, o.frames)
	setGain(o.streams, o.volume)

	o.players = make([]*oto.Player, 0, len(o.streams))
	for _, s := range o.streams {
		p := o.ctx.NewPlayer(s)
		p.SetBufferSize(o.frames * s.FrameSize())
		p.Play()
		o.players = append(o.players, p)
	}

	o.logger.Info("audio started",
		slog.String("backend", BackendOto),
		slog.Int("sample_rate", o.sampleRate),
		slog.Int("buffer_frames", o.frames),
		slog.Int("players", len(o.players)))
	return nil
}

// SetVolume sets the gain of every channel.
func (o *Oto) SetVolume(v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.volume = v
	setGain(o.streams, v)
}

// Close stops and releases every player.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	for _, p := range o.players {
		p.Pause()
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	o.players = nil
	return errors.Join(errs...)
}
