// Package runner runs APU scripts headlessly and reports their trace.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/richardwooding/nesapu/internal/emulator"
	"github.com/richardwooding/nesapu/internal/script"
)

// DefaultTimeout bounds a run when Options.Timeout is not set.
const DefaultTimeout = 30 * time.Second

// Options configures a headless run.
type Options struct {
	ScriptPath string
	ROMPath    string // Optional iNES file backing DMC samples
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Result represents the result of running a script.
type Result struct {
	Output  string
	Trace   *emulator.Trace
	Passed  bool
	Failed  bool
	Timeout bool
	Error   error
}

// Run executes a script and returns the result. Lua errors (including
// failed assert calls) mark the run as failed rather than errored.
func Run(opts Options) *Result {
	result := &Result{}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	// #nosec G304 - paths are provided by the user via CLI arguments
	src, err := os.ReadFile(opts.ScriptPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to read script: %w", err)
		return result
	}

	var rom []byte
	if opts.ROMPath != "" {
		// #nosec G304
		rom, err = os.ReadFile(opts.ROMPath)
		if err != nil {
			result.Error = fmt.Errorf("failed to read ROM: %w", err)
			return result
		}
	}

	// Lua code gets the same budget as emulated time, so a script that never
	// yields is stopped too.
	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	emu, err := emulator.New(emulator.Config{
		Script:     string(src),
		ScriptName: filepath.Base(opts.ScriptPath),
		ROM:        rom,
		Trace:      true,
		Render:     true,
		Logger:     opts.Logger,
		Context:    ctx,
	})
	if err != nil {
		result.Error = fmt.Errorf("failed to create emulator: %w", err)
		result.Failed = errors.Is(err, script.ErrScriptFailed)
		return result
	}
	defer emu.Close()

	trace, err := emu.RunUntilDone(opts.Timeout)
	result.Trace = trace
	result.Output = trace.String()

	switch {
	case errors.Is(err, emulator.ErrTimeout), errors.Is(err, script.ErrScriptTimeout):
		result.Timeout = true
		result.Error = err
	case errors.Is(err, script.ErrScriptFailed):
		result.Failed = true
		result.Error = err
	case err != nil:
		result.Error = err
	default:
		result.Passed = true
	}
	return result
}

// String returns a human-readable representation of the result.
func (r *Result) String() string {
	if r.Timeout {
		return "TIMEOUT"
	}

	if r.Failed {
		return fmt.Sprintf("FAILED: %v", r.Error)
	}

	if r.Error != nil {
		return fmt.Sprintf("ERROR: %v", r.Error)
	}

	if r.Passed {
		return "PASSED"
	}

	return "UNKNOWN"
}

// IsSuccess returns true if the script ran to completion.
func (r *Result) IsSuccess() bool {
	return r.Passed && !r.Failed && r.Error == nil
}
