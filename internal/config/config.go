// Package config handles application configuration and setup
package config

import (
	"github.com/mnafees/chip8engine/internal"
	"github.com/mnafees/chip8engine/internal/options"
	"github.com/mnafees/chip8engine/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateVM creates a VM configured from the program options.
func CreateVM(logger *log.Logger, opts options.Program) (*internal.C8VM, error) {
	var rnd internal.ByteSource
	if opts.Seed != 0 {
		rnd = internal.NewRandom(opts.Seed)
	} else {
		rnd = internal.NewTimeSeededRandom()
	}

	return internal.NewC8VM(
		internal.WithLogger(logger),
		internal.WithRandom(rnd),
		internal.WithQuirks(internal.Quirks{ShiftUsesVY: opts.ShiftQuirk}),
	)
}

// RunnerConfig returns the runner pacing for the program options.
func RunnerConfig(opts options.Program) runner.Config {
	return runner.Config{
		CyclesPerFrame: opts.CyclesPerFrame,
		TimerHz:        runner.DefaultTimerHz,
	}
}
