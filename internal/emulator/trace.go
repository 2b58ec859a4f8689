package emulator

import (
	"fmt"
	"strings"
)

// TraceKind identifies a trace event.
type TraceKind uint8

// Trace event kinds.
const (
	TraceWrite TraceKind = iota
	TraceStatusRead
	TraceIRQRaised
	TraceIRQCleared
)

// String returns the kind name.
func (k TraceKind) String() string {
	switch k {
	case TraceWrite:
		return "write"
	case TraceStatusRead:
		return "read"
	case TraceIRQRaised:
		return "irq+"
	case TraceIRQCleared:
		return "irq-"
	default:
		return "?"
	}
}

// TraceEvent is one observable bus event.
type TraceEvent struct {
	Cycle int64
	Kind  TraceKind
	Addr  uint16
	Value uint8
}

// String formats the event as a single trace line.
func (e TraceEvent) String() string {
	switch e.Kind {
	case TraceWrite, TraceStatusRead:
		return fmt.Sprintf("%10d  %-5s $%04X = $%02X", e.Cycle, e.Kind, e.Addr, e.Value)
	default:
		return fmt.Sprintf("%10d  %s", e.Cycle, e.Kind)
	}
}

// Trace collects bus events in cycle order.
type Trace struct {
	Events []TraceEvent
	Cycles int64
	Frames int64
}

func (t *Trace) add(e TraceEvent) {
	if t == nil {
		return
	}
	t.Events = append(t.Events, e)
}

// Filter returns the events of the given kinds.
func (t *Trace) Filter(kinds ...TraceKind) []TraceEvent {
	var out []TraceEvent
	for _, e := range t.Events {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// String formats the whole trace, one event per line.
func (t *Trace) String() string {
	var sb strings.Builder
	for _, e := range t.Events {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%d cycles, %d frames\n", t.Cycles, t.Frames)
	return sb.String()
}
