package apu

// $4015 read bits.
const (
	StatusFrameIRQ = 0x40
	StatusDMCIRQ   = 0x80
)

// StatusAggregator keeps the latest counter reported by each channel and the
// DMC IRQ flag. Its values lag the audio goroutines by up to one audio
// buffer; channels only report when they process events or fetch samples.
type StatusAggregator struct {
	counters [NumChannels]uint32
	dmcIRQ   bool
}

// Drain consumes every pending notification from the backward queues
// without blocking, keeping the most recent value per channel.
func (s *StatusAggregator) Drain(queues *[NumChannels]*Queue[Notification]) {
	for i, q := range queues {
		for {
			n, ok := q.Pop()
			if !ok {
				break
			}
			switch n.Kind {
			case NotifyCounter:
				s.counters[i] = n.Counter
			case NotifyIRQ:
				s.dmcIRQ = true
			}
		}
	}
}

// Snapshot builds the $4015 value. Frame IRQ state is owned by the frame
// sequencer and passed in.
func (s *StatusAggregator) Snapshot(frameIRQ bool) uint8 {
	var value uint8
	for i, c := range s.counters {
		if c != 0 {
			value |= 1 << i
		}
	}
	if frameIRQ {
		value |= StatusFrameIRQ
	}
	if s.dmcIRQ {
		value |= StatusDMCIRQ
	}
	return value
}

// DMCIRQ reports whether the DMC IRQ flag is set.
func (s *StatusAggregator) DMCIRQ() bool {
	return s.dmcIRQ
}

// ClearDMCIRQ acknowledges the DMC IRQ.
func (s *StatusAggregator) ClearDMCIRQ() {
	s.dmcIRQ = false
}

// Counter returns the latest counter known for a channel.
func (s *StatusAggregator) Counter(ch ChannelID) uint32 {
	return s.counters[ch]
}
