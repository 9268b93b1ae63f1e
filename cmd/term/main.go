// Package main implements the terminal front-end of the CHIP-8 emulator
package main

import (
	"errors"
	"os"

	"github.com/mnafees/chip8engine/internal/cli"
	"github.com/mnafees/chip8engine/internal/config"
	"github.com/mnafees/chip8engine/internal/runner"
	"github.com/mnafees/chip8engine/internal/statsview"
	"github.com/mnafees/chip8engine/pkg/term"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags("chopper-term")
	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage()
		} else {
			logger.Error("Invalid options", log.Err(err))
		}
		os.Exit(1)
	}

	logger.Info("Chopper | CHIP-8 Emulator", log.String("version", buildinfo.Version(version, commit, date)))
	if opts.StatsView {
		statsview.Launch(logger)
	}

	vm, err := config.CreateVM(logger, opts)
	if err != nil {
		logger.Fatal(err.Error())
	}
	if err := vm.LoadProgramFile(opts.Input); err != nil {
		logger.Fatal(err.Error())
	}

	io := term.NewIO(vm, logger)
	if err := io.Setup(); err != nil {
		logger.Fatal(err.Error())
	}

	runnerConfig := config.RunnerConfig(opts)
	err = io.Loop(ctx, runner.New(vm, runnerConfig))
	io.Destroy()
	if err != nil {
		logger.Error("Emulation halted",
			log.Err(err),
			log.Hex("pc", vm.PC()),
			log.Hex("opcode", vm.Opcode()))
		os.Exit(1)
	}
}
