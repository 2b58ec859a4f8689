//go:build portaudio

package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/richardwooding/nesapu/internal/apu"
)

// PortAudio opens one mono output stream per channel. Each stream's
// callback renders its channel directly into the device buffer.
type PortAudio struct {
	mu         sync.Mutex
	sampleRate int
	frames     int
	volume     float64
	streams    []*Stream
	pa         []*portaudio.Stream
	terminated bool
	logger     *slog.Logger
}

var _ Backend = (*PortAudio)(nil)

// NewPortAudio initializes PortAudio. Close terminates it.
func NewPortAudio(sampleRate int, buffer time.Duration, opts ...Option) (*PortAudio, error) {
	o := buildOptions(opts)

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	return &PortAudio{
		sampleRate: sampleRate,
		frames:     bufferFrames(sampleRate, buffer),
		volume:     1,
		logger:     o.logger,
	}, nil
}

// Start opens and starts one stream per channel.
func (p *PortAudio) Start(channels []apu.Channel) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pa != nil {
		return ErrAlreadyStarted
	}

	p.streams = newStreams(channels, false, p.frames)
	setGain(p.streams, p.volume)

	for _, s := range p.streams {
		stream, err := portaudio.OpenDefaultStream(0, 1, float64(p.sampleRate), p.frames, s.Render)
		if err != nil {
			p.closeStreams()
			return fmt.Errorf("failed to open stream for %s: %w", s.Channel().Name(), err)
		}
		if err := stream.Start(); err != nil {
			_ = stream.Close()
			p.closeStreams()
			return fmt.Errorf("failed to start stream for %s: %w", s.Channel().Name(), err)
		}
		p.pa = append(p.pa, stream)
	}

	p.logger.Info("audio started",
		slog.String("backend", BackendPortAudio),
		slog.Int("sample_rate", p.sampleRate),
		slog.Int("buffer_frames", p.frames),
		slog.Int("streams", len(p.pa)))
	return nil
}

// SetVolume sets the gain of every channel.
func (p *PortAudio) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = v
	setGain(p.streams, v)
}

// Close stops every stream and terminates PortAudio.
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.terminated {
		return nil
	}
	errs := p.closeStreams()
	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, err)
	}
	p.terminated = true
	return errors.Join(errs...)
}

func (p *PortAudio) closeStreams() []error {
	var errs []error
	for _, stream := range p.pa {
		if err := stream.Stop(); err != nil {
			errs = append(errs, err)
		}
		if err := stream.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.pa = nil
	return errs
}
