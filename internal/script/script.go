// Package script drives APU register traffic from a Lua program.
//
// A script runs as a coroutine on the emulation thread. Register accesses
// take effect immediately; wait and wait_frames yield until the requested
// number of CPU cycles has been fed to the target.
//
//	apu.write(0x4015, 0x01)
//	apu.write(0x4000, 0xBF)
//	apu.write(0x4002, 0xFD)
//	apu.write(0x4003, 0x08)
//	wait_frames(30)
//	if band(apu.read(0x4015), 0x01) == 0 then log("note ended") end
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	lua "github.com/yuin/gopher-lua"
)

// CyclesPerFrame is the number of CPU cycles in one NTSC video frame.
const CyclesPerFrame = 29780.5

// Target is what a script talks to: the CPU bus as seen from the APU side.
type Target interface {
	Write(addr uint16, value uint8)
	Read(addr uint16) uint8
	Tick(cycles int)
	IRQPending() bool
}

// ErrScriptFailed indicates the Lua program raised an error.
var ErrScriptFailed = errors.New("script failed")

// ErrScriptTimeout indicates the script was stopped by its context.
var ErrScriptTimeout = errors.New("script timed out")

type options struct {
	logger *slog.Logger
	ctx    context.Context
}

// Option configures a Driver.
type Option func(*options)

// WithLogger sets the logger that receives the script's log() output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithContext bounds how long Lua code may run. Cancelling it stops the
// script at its next instruction.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// Driver runs a Lua script against a Target, paced in CPU cycles.
type Driver struct {
	name   string
	target Target
	logger *slog.Logger
	ctx    context.Context

	L      *lua.LState
	co     *lua.LState
	fn     *lua.LFunction
	cancel context.CancelFunc

	waiting   int     // Cycles left before the coroutine resumes
	frameFrac float64 // Fractional cycles carried between wait_frames calls
	elapsed   int64
	done      bool
	err       error
}

// New compiles src and prepares it to run against target. name is used in
// error messages.
func New(name, src string, target Target, opts ...Option) (*Driver, error) {
	o := options{
		logger: slog.New(slog.DiscardHandler),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	d := &Driver{
		name:   name,
		target: target,
		logger: o.logger,
		ctx:    o.ctx,
	}

	L := lua.NewState()
	L.SetContext(o.ctx)
	d.L = L
	d.register()

	fn, err := L.LoadString(src)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrScriptFailed, name, err)
	}
	d.fn = fn
	d.co, d.cancel = L.NewThread()

	return d, nil
}

// register installs the apu table and the timing globals.
func (d *Driver) register() {
	L := d.L

	apuTable := L.NewTable()
	L.SetFuncs(apuTable, map[string]lua.LGFunction{
		"write": d.luaWrite,
		"read":  d.luaRead,
		"irq":   d.luaIRQ,
		"tick":  d.luaTick,
	})
	L.SetGlobal("apu", apuTable)

	L.SetGlobal("wait", L.NewFunction(d.luaWait))
	L.SetGlobal("wait_frames", L.NewFunction(d.luaWaitFrames))
	L.SetGlobal("cycles", L.NewFunction(d.luaCycles))
	L.SetGlobal("log", L.NewFunction(d.luaLog))
	L.SetGlobal("band", L.NewFunction(luaBand))
	L.SetGlobal("bor", L.NewFunction(luaBor))
}

func checkByte(L *lua.LState, n int) uint8 {
	v := L.CheckInt(n)
	if v < 0 || v > 0xFF {
		L.ArgError(n, fmt.Sprintf("value %d out of byte range", v))
	}
	return uint8(v) //nolint:gosec // range checked
}

func checkAddr(L *lua.LState, n int) uint16 {
	v := L.CheckInt(n)
	if v < 0 || v > 0xFFFF {
		L.ArgError(n, fmt.Sprintf("address %d out of range", v))
	}
	return uint16(v) //nolint:gosec // range checked
}

// apu.write(addr, value)
func (d *Driver) luaWrite(L *lua.LState) int {
	d.target.Write(checkAddr(L, 1), checkByte(L, 2))
	return 0
}

// apu.read(addr) -> value
func (d *Driver) luaRead(L *lua.LState) int {
	L.Push(lua.LNumber(d.target.Read(checkAddr(L, 1))))
	return 1
}

// apu.irq() -> bool
func (d *Driver) luaIRQ(L *lua.LState) int {
	L.Push(lua.LBool(d.target.IRQPending()))
	return 1
}

// apu.tick(cycles) advances the target without yielding. Used for tight
// polling loops that must not give up the rest of a frame.
func (d *Driver) luaTick(L *lua.LState) int {
	n := L.CheckInt(1)
	if n > 0 {
		d.target.Tick(n)
		d.elapsed += int64(n)
	}
	return 0
}

// wait(cycles)
func (d *Driver) luaWait(L *lua.LState) int {
	n := L.CheckInt(1)
	return L.Yield(lua.LNumber(max(n, 1)))
}

// wait_frames(n)
func (d *Driver) luaWaitFrames(L *lua.LState) int {
	n := L.OptInt(1, 1)
	total := float64(n)*CyclesPerFrame + d.frameFrac
	cycles := int(total)
	d.frameFrac = total - float64(cycles)
	return L.Yield(lua.LNumber(max(cycles, 1)))
}

// cycles() -> number of CPU cycles fed to the target so far
func (d *Driver) luaCycles(L *lua.LState) int {
	L.Push(lua.LNumber(d.elapsed))
	return 1
}

// log(msg)
func (d *Driver) luaLog(L *lua.LState) int {
	d.logger.Info(L.ToString(1), slog.String("script", d.name), slog.Int64("cycle", d.elapsed))
	return 0
}

// band(a, b) -> a & b. Lua 5.1 has no bitwise operators.
func luaBand(L *lua.LState) int {
	L.Push(lua.LNumber(L.CheckInt(1) & L.CheckInt(2)))
	return 1
}

// bor(a, b) -> a | b
func luaBor(L *lua.LState) int {
	L.Push(lua.LNumber(L.CheckInt(1) | L.CheckInt(2)))
	return 1
}

// Advance feeds cycles CPU cycles to the target, resuming the script
// whenever its current wait expires. Once the script has finished the
// target keeps being ticked, so notes already playing run their course.
func (d *Driver) Advance(cycles int) error {
	if d.err != nil {
		return d.err
	}

	for cycles > 0 {
		if d.waiting == 0 && !d.done {
			if err := d.resume(); err != nil {
				return err
			}
			continue
		}

		step := cycles
		if !d.done {
			step = min(step, d.waiting)
			d.waiting -= step
		}
		d.target.Tick(step)
		d.elapsed += int64(step)
		cycles -= step
	}
	return nil
}

func (d *Driver) resume() error {
	st, err, values := d.L.Resume(d.co, d.fn)
	switch st {
	case lua.ResumeError:
		d.done = true
		d.close()
		if ctxErr := d.ctx.Err(); ctxErr != nil {
			d.err = fmt.Errorf("%w: %s: %w", ErrScriptTimeout, d.name, ctxErr)
		} else {
			d.err = fmt.Errorf("%w: %s: %w", ErrScriptFailed, d.name, err)
		}
		return d.err

	case lua.ResumeOK:
		d.done = true
		d.close()

	case lua.ResumeYield:
		d.waiting = 1
		if len(values) > 0 {
			if n, ok := values[0].(lua.LNumber); ok && n >= 1 {
				d.waiting = int(n)
			}
		}
	}
	return nil
}

// Done reports whether the script has returned or failed.
func (d *Driver) Done() bool {
	return d.done
}

// Err returns the error that stopped the script, if any.
func (d *Driver) Err() error {
	return d.err
}

// Elapsed returns the number of CPU cycles fed to the target.
func (d *Driver) Elapsed() int64 {
	return d.elapsed
}

// Name returns the script name.
func (d *Driver) Name() string {
	return d.name
}

// Close releases the Lua state. It is safe to call more than once.
func (d *Driver) Close() {
	d.done = true
	d.close()
}

func (d *Driver) close() {
	if d.L == nil {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.L.Close()
	d.L = nil
}
