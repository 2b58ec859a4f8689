package apu

import "testing"

func TestLFSR_Period(t *testing.T) {
	tests := []struct {
		name  string
		short bool
		want  int
	}{
		{"long", false, 32767},
		{"short", true, 93},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewLFSR()
			start := r.Value()

			steps := 0
			for {
				r.Step(tt.short)
				steps++
				if r.Value() == start {
					break
				}
				if steps > 40000 {
					t.Fatalf("no repeat within %d steps", steps)
				}
			}

			if steps != tt.want {
				t.Errorf("period = %d, want %d", steps, tt.want)
			}
		})
	}
}

func TestLFSR_StaysIn15Bits(t *testing.T) {
	r := NewLFSR()
	for i := range 100000 {
		r.Step(i%7 == 0)
		if r.Value() == 0 || r.Value() > 0x7FFF {
			t.Fatalf("register = %#x at step %d", r.Value(), i)
		}
	}
}

func TestLFSR_ZeroPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != ErrLFSRDead {
			t.Errorf("recover() = %v, want ErrLFSRDead", r)
		}
	}()

	var reg LFSR // zero value is the dead state
	reg.Step(false)
}
