package main

import (
	"fmt"
	"strings"

	"github.com/richardwooding/nesapu/internal/apu"
	"github.com/richardwooding/nesapu/internal/emulator"
)

// channelFlags renders the enable mask as one letter per channel, in $4015
// bit order, with '-' for disabled channels.
func channelFlags(mask uint8) string {
	const letters = "12TND"
	var sb strings.Builder
	for i := range apu.NumChannels {
		if mask&(1<<i) != 0 {
			sb.WriteByte(letters[i])
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// statusLine is the single-line form used on a terminal.
func statusLine(s emulator.Status, muted bool) string {
	state := "playing"
	if s.ScriptDone {
		state = "done"
	}
	line := fmt.Sprintf("frame %6d  cycle %10d  [%s]  %d-step  irq %-3s  %s",
		s.Frames, s.Cycle, channelFlags(s.Enabled), s.FrameMode, onOff(s.IRQ), state)
	if muted {
		line += "  (muted)"
	}
	return line
}

// statusText is the multi-line form shown in the status window.
func statusText(s emulator.Status, muted bool) string {
	r := s.Registers
	var sb strings.Builder

	fmt.Fprintln(&sb, statusLine(s, muted))
	fmt.Fprintln(&sb)
	for i, p := range []apu.PulseRegisters{r.Pulse1, r.Pulse2} {
		fmt.Fprintf(&sb, "pulse%d   duty %d  vol %2d%s  timer %4d  sweep %s/%d/%d%s\n",
			i+1, p.Duty, p.Volume, constFlag(p.Constant), p.Timer,
			onOff(p.SweepEnabled), p.SweepPeriod, p.SweepShift, negFlag(p.SweepNegate))
	}
	fmt.Fprintf(&sb, "triangle linear %3d  control %-3s  timer %4d\n",
		r.Triangle.Reload, onOff(r.Triangle.Control), r.Triangle.Timer)
	mode := "long"
	if r.Noise.Short {
		mode = "short"
	}
	fmt.Fprintf(&sb, "noise    vol %2d%s  period %2d  %s\n",
		r.Noise.Volume, constFlag(r.Noise.Constant), r.Noise.PeriodIndex, mode)
	fmt.Fprintf(&sb, "dmc      level %3d  rate %2d  addr $%04X  len %4d  irq %s  loop %s\n",
		r.DMC.Level, r.DMC.Rate,
		0xC000+int(r.DMC.SampleAddr)*64, int(r.DMC.SampleLength)*16+1,
		onOff(r.DMC.IRQEnable), onOff(r.DMC.Loop))
	fmt.Fprintln(&sb)
	fmt.Fprint(&sb, "M: mute  Q/Esc: quit")
	return sb.String()
}

func constFlag(b bool) string {
	if b {
		return "c"
	}
	return "e"
}

func negFlag(b bool) string {
	if b {
		return "-"
	}
	return "+"
}
