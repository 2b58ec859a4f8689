//go:build !portaudio

package audio

import (
	"fmt"
	"time"

	"github.com/richardwooding/nesapu/internal/apu"
)

// PortAudio is unavailable without the portaudio build tag, which needs the
// PortAudio C library.
type PortAudio struct{}

var _ Backend = (*PortAudio)(nil)

// NewPortAudio reports ErrBackendUnavailable.
func NewPortAudio(int, time.Duration, ...Option) (*PortAudio, error) {
	return nil, fmt.Errorf("%w: %s (build with -tags portaudio)", ErrBackendUnavailable, BackendPortAudio)
}

// Start reports ErrBackendUnavailable.
func (*PortAudio) Start([]apu.Channel) error {
	return ErrBackendUnavailable
}

// SetVolume does nothing.
func (*PortAudio) SetVolume(float64) {}

// Close does nothing.
func (*PortAudio) Close() error {
	return nil
}
