package main

import (
	"fmt"
	"os"
	"time"

	"github.com/richardwooding/nesapu/internal/runner"
)

// TraceCmd runs a script without an audio device and reports its trace.
type TraceCmd struct {
	Script  string        `arg:"" type:"existingfile" help:"Path to Lua script."`
	ROM     string        `type:"existingfile" help:"iNES ROM whose PRG ROM backs DMC samples." env:"NESAPU_ROM"`
	Timeout time.Duration `default:"30s" help:"Wall-clock limit for the run."`
	Verbose bool          `short:"v" help:"Show the trace even when the script passes."`
}

// Run executes the trace command.
func (c *TraceCmd) Run(g *Globals) error {
	fmt.Printf("Running script: %s\n", c.Script)

	result := runner.Run(runner.Options{
		ScriptPath: c.Script,
		ROMPath:    c.ROM,
		Timeout:    c.Timeout,
		Logger:     g.Logger(os.Stderr),
	})

	fmt.Printf("Result: %s\n", result.String())

	if c.Verbose || !result.IsSuccess() {
		fmt.Printf("\nOutput:\n%s\n", result.Output)
	}

	if !result.IsSuccess() {
		return ErrScriptFailed
	}

	return nil
}
