package audio

import (
	"errors"
	"testing"
	"time"

	"github.com/richardwooding/nesapu/internal/apu"
)

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    error
	}{
		{"unknown", "alsa", ErrUnknownBackend},
		{"empty", "", ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.backend, 44100, 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("New(%q) error = %v, want %v", tt.backend, err, tt.want)
			}
			if b != nil {
				t.Errorf("New(%q) = %v, want nil backend", tt.backend, b)
			}
		})
	}
}

func TestNew_Null(t *testing.T) {
	b, err := New(BackendNull, 0, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	n, ok := b.(*Null)
	if !ok {
		t.Fatalf("New(%q) = %T, want *Null", BackendNull, b)
	}
	if n.buffer != DefaultBuffer {
		t.Errorf("buffer = %v, want %v", n.buffer, DefaultBuffer)
	}
	if want := bufferFrames(apu.DefaultSampleRate, DefaultBuffer); n.frames != want {
		t.Errorf("frames = %d, want %d", n.frames, want)
	}
}

func TestBackends(t *testing.T) {
	names := Backends()
	if len(names) != 4 {
		t.Fatalf("Backends() = %v, want 4 names", names)
	}
	for _, name := range names {
		if name == "" {
			t.Error("empty backend name")
		}
	}
}

func TestBufferFrames(t *testing.T) {
	tests := []struct {
		rate   int
		buffer time.Duration
		want   int
	}{
		{44100, 20 * time.Millisecond, 882},
		{48000, 10 * time.Millisecond, 480},
		{44100, time.Nanosecond, 1},
	}

	for _, tt := range tests {
		if got := bufferFrames(tt.rate, tt.buffer); got != tt.want {
			t.Errorf("bufferFrames(%d, %v) = %d, want %d", tt.rate, tt.buffer, got, tt.want)
		}
	}
}

func TestNull_RendersEveryChannel(t *testing.T) {
	chans := make([]*constChannel, 3)
	list := make([]apu.Channel, 3)
	for i := range chans {
		chans[i] = &constChannel{value: 0.5}
		list[i] = chans[i]
	}

	n := NewNull(44100, 5*time.Millisecond)
	if err := n.Start(list); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := n.Start(list); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		done := true
		for _, ch := range chans {
			if ch.samples.Load() == 0 {
				done = false
			}
		}
		if done {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := n.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	for i, ch := range chans {
		if ch.samples.Load() == 0 {
			t.Errorf("channel %d was never rendered", i)
		}
	}
	if n.Rendered() == 0 {
		t.Error("Rendered() = 0 after playback")
	}

	// Nothing renders after Close
	before := n.Rendered()
	time.Sleep(20 * time.Millisecond)
	if n.Rendered() != before {
		t.Error("samples rendered after Close")
	}
	if err := n.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestNull_DrivesAPUChannels(t *testing.T) {
	a := apu.New(nil, 44100)
	a.Write(0x4015, 0x01)
	a.Write(0x4000, 0x3F)
	a.Write(0x4002, 0xFD)
	a.Write(0x4003, 0x08)

	channels := a.Channels()
	n := NewNull(44100, 5*time.Millisecond)
	if err := n.Start(channels[:]); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() {
		if err := n.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for a.Read(0x4015)&0x01 == 0 {
		if time.Now().After(deadline) {
			t.Fatal("pulse 1 never reported its length counter through $4015")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNull_SetVolume(t *testing.T) {
	n := NewNull(44100, time.Millisecond)
	n.SetVolume(0.25)
	if err := n.Start([]apu.Channel{&constChannel{value: 1}}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer n.Close()

	if got := n.streams[0].Gain(); got != 0.25 {
		t.Errorf("gain after Start = %v, want volume set before Start", got)
	}
	n.SetVolume(0)
	if got := n.streams[0].Gain(); got != 0 {
		t.Errorf("gain after mute = %v, want 0", got)
	}
}
