// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mnafees/chip8engine/internal/options"
	"github.com/mnafees/chip8engine/internal/runner"
	"github.com/mnafees/chip8engine/internal/statsview"
)

const (
	defaultScale = 20
	maxScale     = 64
)

// ParseFlags parses command line flags and returns the program options.
// name is the front-end binary name shown in the usage text.
func ParseFlags(name string) (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.Usage = func() {}
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) != 1 {
		return opts, &UsageError{name: name, flags: flags}
	}
	opts.Input = args[0]

	if err := validateOptions(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	name  string
	flags *flag.FlagSet
}

func (e *UsageError) Error() string {
	return "invalid arguments"
}

// ShowUsage prints the usage text and all flag defaults.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: %s [options] <CHIP-8 program>\n\n", e.name)
	e.flags.SetOutput(os.Stdout)
	e.flags.PrintDefaults()
	fmt.Println()
}

func validateOptions(opts options.Program) error {
	if opts.Scale < 1 || opts.Scale > maxScale {
		return fmt.Errorf("invalid scale %d, must be between 1 and %d", opts.Scale, maxScale)
	}
	if opts.CyclesPerFrame < 1 {
		return fmt.Errorf("invalid cycles per frame %d, must be at least 1", opts.CyclesPerFrame)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.IntVar(&opts.Scale, "scale", defaultScale, "window pixels per CHIP-8 pixel")
	flags.IntVar(&opts.CyclesPerFrame, "cycles", runner.DefaultCyclesPerFrame, "CPU cycles executed per 60 Hz frame")
	flags.Int64Var(&opts.Seed, "seed", 0, "random number seed, 0 seeds from the current time")
	flags.BoolVar(&opts.ShiftQuirk, "shiftvy", false, "8xy6 and 8xyE shift Vy into Vx (CHIP-48 behaviour)")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.StatsView, "statsview", false, "serve runtime statistics on "+statsview.Address)
}
