// Package audio plays the APU channels through a host audio library.
//
// Every channel gets its own player (or stream) so that each one is
// rendered on the goroutine or callback thread the library drives it from.
// The host library sums the five players; nothing here mixes samples.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/richardwooding/nesapu/internal/apu"
)

// Backend names accepted by New.
const (
	BackendEbiten    = "ebiten"
	BackendOto       = "oto"
	BackendPortAudio = "portaudio"
	BackendNull      = "null"
)

// DefaultBuffer is the output buffer length used when none is given.
const DefaultBuffer = 20 * time.Millisecond

// minScratchFrames is the smallest per-read scratch buffer. Libraries ask
// for more than the configured latency at startup.
const minScratchFrames = 4096

var (
	// ErrUnknownBackend indicates a backend name New does not know.
	ErrUnknownBackend = errors.New("unknown audio backend")

	// ErrBackendUnavailable indicates a backend left out of this build.
	ErrBackendUnavailable = errors.New("audio backend not available in this build")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("audio backend already started")

	// ErrSampleRateMismatch indicates a process-wide audio context already
	// exists at a different sample rate.
	ErrSampleRateMismatch = errors.New("audio context sample rate mismatch")
)

// Backend plays a set of channels until closed.
type Backend interface {
	// Start begins pulling samples from every channel.
	Start(channels []apu.Channel) error

	// SetVolume sets the gain applied to every channel. Zero mutes.
	SetVolume(v float64)

	// Close stops playback and releases the device.
	Close() error
}

// Backends lists the names New accepts.
func Backends() []string {
	return []string{BackendEbiten, BackendOto, BackendPortAudio, BackendNull}
}

type options struct {
	logger *slog.Logger
}

// Option configures a Backend.
type Option func(*options)

// WithLogger sets the logger for device setup and teardown messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the backend called name.
func New(name string, sampleRate int, buffer time.Duration, opts ...Option) (Backend, error) {
	if sampleRate <= 0 {
		sampleRate = apu.DefaultSampleRate
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	var (
		b   Backend
		err error
	)
	switch name {
	case BackendEbiten:
		b, err = NewEbiten(sampleRate, buffer, opts...)
	case BackendOto:
		b, err = NewOto(sampleRate, buffer, opts...)
	case BackendPortAudio:
		b, err = NewPortAudio(sampleRate, buffer, opts...)
	case BackendNull:
		b = NewNull(sampleRate, buffer, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// bufferFrames converts a buffer duration to sample frames.
func bufferFrames(sampleRate int, buffer time.Duration) int {
	return max(1, int(int64(sampleRate)*int64(buffer)/int64(time.Second)))
}

// newStreams wraps each channel in a Stream.
func newStreams(channels []apu.Channel, stereo bool, frames int) []*Stream {
	streams := make([]*Stream, len(channels))
	for i, ch := range channels {
		streams[i] = NewStream(ch, stereo, max(frames, minScratchFrames))
	}
	return streams
}

func setGain(streams []*Stream, v float64) {
	for _, s := range streams {
		s.SetGain(float32(v))
	}
}
