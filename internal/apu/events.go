package apu

// EventKind identifies a forward event sent from the emulation thread to a
// channel synthesizer.
type EventKind uint8

// Forward event kinds.
const (
	EventNote          EventKind = iota + 1 // Pulse duty or noise period/mode
	EventEnvelope                           // Envelope parameters
	EventLengthCounter                      // Length halt flag and load index
	EventLinearCounter                      // Triangle linear counter parameters
	EventSweep                              // Pulse sweep parameters
	EventFrequency                          // 11-bit timer period
	EventEnable                             // $4015 enable bit
	EventReset                              // Last register of a group written
	EventQuarterFrame                       // Envelope / linear counter clock
	EventHalfFrame                          // Length counter / sweep clock
	EventDMCControl                         // IRQ enable, loop, rate index
	EventDirectLoad                         // $4011 output level
	EventSampleAddress                      // $4012 raw value
	EventSampleLength                       // $4013 raw value
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventNote:
		return "Note"
	case EventEnvelope:
		return "Envelope"
	case EventLengthCounter:
		return "LengthCounter"
	case EventLinearCounter:
		return "LinearCounter"
	case EventSweep:
		return "Sweep"
	case EventFrequency:
		return "Frequency"
	case EventEnable:
		return "Enable"
	case EventReset:
		return "Reset"
	case EventQuarterFrame:
		return "QuarterFrame"
	case EventHalfFrame:
		return "HalfFrame"
	case EventDMCControl:
		return "DMCControl"
	case EventDirectLoad:
		return "DirectLoad"
	case EventSampleAddress:
		return "SampleAddress"
	case EventSampleLength:
		return "SampleLength"
	default:
		return "Unknown"
	}
}

// DMCParams are the fields of $4010.
type DMCParams struct {
	IRQEnable bool
	Loop      bool
	Rate      uint8
}

// Event is a typed parameter change or clock pulse for one channel. Only the
// fields relevant to Kind are meaningful. Events are plain values so that
// queuing them never boxes into an interface.
type Event struct {
	Kind     EventKind
	Value    uint16 // Duty, timer period, noise period index, DMC level/address/length
	Flag     bool   // Enable bit, noise short mode
	Envelope EnvelopeParams
	Length   LengthParams
	Linear   LinearParams
	Sweep    SweepParams
	DMC      DMCParams
}

// NotificationKind identifies a backward notification sent from a channel
// synthesizer to the status aggregator.
type NotificationKind uint8

// Backward notification kinds.
const (
	NotifyCounter NotificationKind = iota + 1 // Length counter or DMC bytes remaining is now Counter
	NotifyIRQ                                 // DMC sample finished with IRQ enabled
)

// Notification reports channel state back to the emulation thread.
type Notification struct {
	Kind    NotificationKind
	Counter uint32
}
