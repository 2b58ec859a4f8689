// Package apu implements the NES Audio Processing Unit.
//
// The APU generates sound through 5 independent channels:
//   - Pulse 1 and Pulse 2: Square waves with envelope and frequency sweep
//   - Triangle: Triangle wave gated by a linear counter
//   - Noise: 15-bit LFSR output with envelope
//   - DMC: Delta-modulated samples read from PRG ROM
//
// Register writes, reads and CPU cycle ticks happen on the emulation thread.
// Each channel renders its own samples from its own audio goroutine. The two
// sides share nothing but ordered single-producer/single-consumer queues:
// parameter changes and frame clocks flow forward as events, counter values
// and the DMC IRQ flow back as notifications. The frame sequencer steps every
// 7457 CPU cycles and clocks envelopes, sweeps and counters through those
// queues.
package apu

import (
	"context"
	"fmt"
	"log/slog"
)

// Default sizes.
const (
	DefaultSampleRate    = 44100
	DefaultQueueCapacity = 256
)

// APU represents the NES Audio Processing Unit. All methods must be called
// from the emulation thread; only the channels' Render methods run elsewhere.
type APU struct {
	sampleRate int
	logger     *slog.Logger

	pulse1   *PulseChannel
	pulse2   *PulseChannel
	triangle *TriangleChannel
	noise    *NoiseChannel
	dmc      *DMCChannel

	channels [NumChannels]Channel
	events   [NumChannels]*Queue[Event]
	notify   [NumChannels]*Queue[Notification]

	decoder Decoder
	frame   FrameSequencer
	status  StatusAggregator
	enabled uint8 // Last $4015 write, bits 0-4
}

type options struct {
	logger   *slog.Logger
	prealloc int
}

// Option configures an APU.
type Option func(*options)

// WithLogger sets the logger used for register-level debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithQueueCapacity sets how many queue nodes are allocated up front per
// queue so that steady-state traffic never allocates.
func WithQueueCapacity(n int) Option {
	return func(o *options) {
		o.prealloc = n
	}
}

// New creates a new APU in its power-on state. prg supplies DMC sample bytes
// and may be nil when no cartridge is attached. sampleRate is the output rate
// of every channel's Render.
func New(prg PRGReader, sampleRate int, opts ...Option) *APU {
	o := options{
		logger:   slog.New(slog.DiscardHandler),
		prealloc: DefaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	a := &APU{
		sampleRate: sampleRate,
		logger:     o.logger,
		pulse1:     NewPulseChannel("pulse1", sampleRate, o.prealloc),
		pulse2:     NewPulseChannel("pulse2", sampleRate, o.prealloc),
		triangle:   NewTriangleChannel(sampleRate, o.prealloc),
		noise:      NewNoiseChannel(sampleRate, o.prealloc),
		dmc:        NewDMCChannel(prg, sampleRate, o.prealloc),
		frame:      NewFrameSequencer(),
	}

	voices := [NumChannels]*voice{
		&a.pulse1.voice, &a.pulse2.voice, &a.triangle.voice, &a.noise.voice, &a.dmc.voice,
	}
	a.channels = [NumChannels]Channel{a.pulse1, a.pulse2, a.triangle, a.noise, a.dmc}
	for i, v := range voices {
		a.events[i] = v.events
		a.notify[i] = v.notify
	}
	return a
}

// Write writes to an APU register ($4000-$4017).
func (a *APU) Write(addr uint16, value uint8) {
	if a.logger.Enabled(context.Background(), slog.LevelDebug) {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "apu write",
			slog.String("addr", fmt.Sprintf("$%04X", addr)), slog.String("value", fmt.Sprintf("$%02X", value)))
	}

	switch addr {
	case RegStatus:
		a.writeStatus(value)
	case RegFrameCounter:
		a.frame.Write(value)
	default:
		ch, events := a.decoder.Decode(addr, value)
		if ch == NoChannel {
			return
		}
		if addr == RegDMCControl && value&0x80 == 0 {
			a.acknowledgeDMCIRQ()
		}
		for _, ev := range events {
			a.events[ch].Push(ev)
		}
	}
}

// writeStatus handles $4015: one enable event per channel, and clears the
// DMC IRQ.
func (a *APU) writeStatus(value uint8) {
	a.enabled = value & 0x1F
	for i, q := range a.events {
		q.Push(Event{Kind: EventEnable, Flag: value&(1<<i) != 0})
	}
	a.acknowledgeDMCIRQ()
}

// acknowledgeDMCIRQ clears the DMC IRQ after taking in every notification
// already sent, so an IRQ raised before the acknowledge cannot reappear.
func (a *APU) acknowledgeDMCIRQ() {
	a.status.Drain(&a.notify)
	a.status.ClearDMCIRQ()
}

// Read reads an APU register. Only $4015 is readable; reading it clears the
// frame IRQ flag. Other addresses read as 0.
func (a *APU) Read(addr uint16) uint8 {
	if addr != RegStatus {
		return 0
	}

	a.status.Drain(&a.notify)
	value := a.status.Snapshot(a.frame.IRQ())
	a.frame.ClearIRQ()
	return value
}

// Tick advances the frame sequencer by the given number of CPU cycles. It is
// called once per CPU instruction.
func (a *APU) Tick(cycles int) {
	a.frame.Tick(cycles, a.clockFrame)
}

func (a *APU) clockFrame(c FrameClock) {
	a.status.Drain(&a.notify)

	if c.Quarter {
		a.broadcast(Event{Kind: EventQuarterFrame})
	}
	if c.Half {
		a.broadcast(Event{Kind: EventHalfFrame})
	}
}

// broadcast sends a frame clock to every channel except the DMC.
func (a *APU) broadcast(ev Event) {
	for _, ch := range []ChannelID{Pulse1, Pulse2, Triangle, Noise} {
		a.events[ch].Push(ev)
	}
}

// IRQPending reports whether the frame or DMC interrupt is asserted.
func (a *APU) IRQPending() bool {
	a.status.Drain(&a.notify)
	return a.frame.IRQ() || a.status.DMCIRQ()
}

// Channels returns the five channels in $4015 bit order. Each channel's
// Render must be driven by a single goroutine.
func (a *APU) Channels() [NumChannels]Channel {
	return a.channels
}

// Channel returns one channel by index.
func (a *APU) Channel(id ChannelID) Channel {
	return a.channels[id]
}

// SampleRate returns the output sample rate of every channel.
func (a *APU) SampleRate() int {
	return a.sampleRate
}

// Registers returns a copy of the decoded register state.
func (a *APU) Registers() Decoder {
	d := a.decoder
	d.buf = [3]Event{}
	return d
}

// FrameMode returns the current frame sequencer mode.
func (a *APU) FrameMode() FrameMode {
	return a.frame.Mode()
}

// EnabledMask returns the last value written to $4015, bits 0-4.
func (a *APU) EnabledMask() uint8 {
	return a.enabled
}
