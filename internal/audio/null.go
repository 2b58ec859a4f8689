package audio

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/richardwooding/nesapu/internal/apu"
	"golang.org/x/sync/errgroup"
)

// Null renders every channel on its own goroutine at real-time pace and
// discards the samples. It stands in for a device on machines without one.
type Null struct {
	mu       sync.Mutex
	buffer   time.Duration
	frames   int
	volume   float64
	streams  []*Stream
	cancel   context.CancelFunc
	group    *errgroup.Group
	rendered atomic.Int64
	logger   *slog.Logger
}

var _ Backend = (*Null)(nil)

// NewNull returns a backend that renders buffer-sized blocks every buffer.
func NewNull(sampleRate int, buffer time.Duration, opts ...Option) *Null {
	o := buildOptions(opts)
	return &Null{
		buffer: buffer,
		frames: bufferFrames(sampleRate, buffer),
		volume: 1,
		logger: o.logger,
	}
}

// Start launches one render goroutine per channel.
func (n *Null) Start(channels []apu.Channel) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.group != nil {
		return ErrAlreadyStarted
	}

	n.streams = newStreams(channels, false, n.frames)
	setGain(n.streams, n.volume)

	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	n.group, ctx = errgroup.WithContext(ctx)
	for _, s := range n.streams {
		n.group.Go(func() error {
			return n.pump(ctx, s)
		})
	}

	n.logger.Info("audio started",
		slog.String("backend", BackendNull),
		slog.Duration("buffer", n.buffer),
		slog.Int("streams", len(n.streams)))
	return nil
}

func (n *Null) pump(ctx context.Context, s *Stream) error {
	buf := make([]float32, n.frames)
	ticker := time.NewTicker(n.buffer)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Render(buf)
			n.rendered.Add(int64(len(buf)))
		}
	}
}

// Rendered returns the total number of samples rendered across channels.
func (n *Null) Rendered() int64 {
	return n.rendered.Load()
}

// SetVolume sets the gain of every channel.
func (n *Null) SetVolume(v float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.volume = v
	setGain(n.streams, v)
}

// Close stops the render goroutines and waits for them.
func (n *Null) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.group == nil {
		return nil
	}
	n.cancel()
	err := n.group.Wait()
	n.group = nil
	return err
}
