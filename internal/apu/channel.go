package apu

// Channel is one of the five sound generators. Render is the real-time
// callback: it is called from the channel's audio goroutine only, never
// blocks and never allocates.
type Channel interface {
	// Name returns the channel's short name ("pulse1", "triangle", ...).
	Name() string

	// Render fills out with mono samples in [-1.0, 1.0] at the APU sample rate.
	Render(out []float32)
}

// voice holds the state every synthesizer shares: its two queues, the
// enable bit and the phase accumulator.
type voice struct {
	name       string
	events     *Queue[Event]        // Forward: emulation thread -> audio goroutine
	notify     *Queue[Notification] // Backward: audio goroutine -> emulation thread
	sampleRate float64
	phase      float64 // [0, 1)
	enabled    bool
}

func newVoice(name string, sampleRate int, prealloc int) voice {
	return voice{
		name:       name,
		events:     NewQueue[Event](prealloc),
		notify:     NewQueue[Notification](prealloc),
		sampleRate: float64(sampleRate),
	}
}

// Name returns the channel's short name.
func (v *voice) Name() string {
	return v.name
}

// advance moves the phase accumulator forward one output sample at hz and
// returns how many times it wrapped.
func (v *voice) advance(hz float64) int {
	if hz <= 0 {
		return 0
	}
	v.phase += hz / v.sampleRate
	wraps := int(v.phase)
	v.phase -= float64(wraps)
	return wraps
}

// report sends the channel's counter back to the status aggregator.
func (v *voice) report(counter uint32) {
	v.notify.Push(Notification{Kind: NotifyCounter, Counter: counter})
}

// timerHz converts an 11-bit timer period to an output frequency for a
// sequencer of the given step count (16 for pulse, 32 for triangle).
func timerHz(timer uint16, steps float64) float64 {
	return CPUClock / (steps * (float64(timer) + 1))
}
