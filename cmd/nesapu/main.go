// Package main provides the nesapu CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

var (
	// ErrScriptFailed indicates a traced script failed or timed out.
	ErrScriptFailed = errors.New("script failed")

	// ErrInvalidScale indicates the scale factor is out of valid range.
	ErrInvalidScale = errors.New("scale must be between 1 and 10")

	// ErrInvalidVolume indicates the volume is out of valid range.
	ErrInvalidVolume = errors.New("volume must be between 0 and 1")
)

// Globals holds the flags shared by every command.
type Globals struct {
	LogLevel  string `help:"Log level." enum:"debug,info,warn,error" default:"warn" env:"NESAPU_LOG_LEVEL"`
	LogFormat string `help:"Log format." enum:"text,json" default:"text" env:"NESAPU_LOG_FORMAT"`
}

// Logger builds the logger the flags describe, writing to w.
func (g *Globals) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.LogLevel)); err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}

	if g.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// CLI represents the command-line interface structure.
type CLI struct {
	Globals

	Info  InfoCmd  `cmd:"" help:"Display iNES cartridge information."`
	Play  PlayCmd  `cmd:"" help:"Play an APU script through an audio device."`
	Trace TraceCmd `cmd:"" help:"Run an APU script headlessly and print its trace."`
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("nesapu"),
		kong.Description("An NES APU (2A03 sound) emulator driven by Lua scripts."),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
