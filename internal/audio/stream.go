package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/richardwooding/nesapu/internal/apu"
)

// Stream adapts a Channel to the pull model audio libraries use. Read
// returns float32 little-endian PCM, either mono or the same sample on both
// stereo lanes. All buffers are allocated up front so that Read and Render
// do not allocate on the audio goroutine.
type Stream struct {
	ch      apu.Channel
	stereo  bool
	scratch []float32
	gain    atomic.Uint32 // math.Float32bits of the output gain
}

// NewStream returns a stream over ch that renders at most maxFrames sample
// frames per Read.
func NewStream(ch apu.Channel, stereo bool, maxFrames int) *Stream {
	if maxFrames < 1 {
		maxFrames = 1
	}
	s := &Stream{
		ch:      ch,
		stereo:  stereo,
		scratch: make([]float32, maxFrames),
	}
	s.SetGain(1)
	return s
}

// Channel returns the channel the stream renders.
func (s *Stream) Channel() apu.Channel {
	return s.ch
}

// SetGain scales every sample by g. Zero mutes the stream; the channel keeps
// rendering so its queues are still drained.
func (s *Stream) SetGain(g float32) {
	s.gain.Store(math.Float32bits(g))
}

// Gain returns the current output gain.
func (s *Stream) Gain() float32 {
	return math.Float32frombits(s.gain.Load())
}

// FrameSize returns the number of bytes Read produces per sample frame.
func (s *Stream) FrameSize() int {
	if s.stereo {
		return 8
	}
	return 4
}

// Render fills out with gain-scaled mono samples. It is the callback form
// used by backends that hand out float32 buffers directly.
func (s *Stream) Render(out []float32) {
	s.ch.Render(out)
	g := s.Gain()
	if g == 1 {
		return
	}
	for i := range out {
		out[i] *= g
	}
}

// Read implements io.Reader. It fills whole frames only and never returns
// an error; a stream is infinite.
func (s *Stream) Read(p []byte) (int, error) {
	size := s.FrameSize()
	frames := min(len(p)/size, len(s.scratch))
	if frames == 0 {
		return 0, nil
	}

	buf := s.scratch[:frames]
	s.Render(buf)

	for i, v := range buf {
		bits := math.Float32bits(v)
		if s.stereo {
			binary.LittleEndian.PutUint32(p[i*8:], bits)
			binary.LittleEndian.PutUint32(p[i*8+4:], bits)
		} else {
			binary.LittleEndian.PutUint32(p[i*4:], bits)
		}
	}
	return frames * size, nil
}
