// Package runner drives a CHIP-8 VM at a fixed frame rate, executing a
// number of CPU cycles per frame and advancing the timers once per frame.
package runner

import (
	"context"
	"fmt"
	"time"
)

// Default pacing values, roughly matching the speed of the original hardware.
const (
	DefaultCyclesPerFrame = 10
	DefaultTimerHz        = 60
)

// Machine is the part of the VM the runner drives.
type Machine interface {
	Tick() error
	AdvanceTimers() (soundStopped bool)
}

// Config contains the runner pacing options.
type Config struct {
	CyclesPerFrame int     // CPU ticks executed per timer tick
	TimerHz        float64 // frames per second, the timer rate

	// OnSoundStop is called when the sound timer runs out.
	OnSoundStop func()
}

// Runner executes frames of a Machine.
type Runner struct {
	vm     Machine
	config Config
	frames uint64
}

// New returns a runner for vm. Zero config values are replaced by defaults.
func New(vm Machine, config Config) *Runner {
	if config.CyclesPerFrame <= 0 {
		config.CyclesPerFrame = DefaultCyclesPerFrame
	}
	if config.TimerHz <= 0 {
		config.TimerHz = DefaultTimerHz
	}
	return &Runner{
		vm:     vm,
		config: config,
	}
}

// Frame executes CyclesPerFrame ticks followed by one timer advance.
// The first fault stops the frame and the timers are not advanced.
func (r *Runner) Frame() error {
	for i := 0; i < r.config.CyclesPerFrame; i++ {
		if err := r.vm.Tick(); err != nil {
			return fmt.Errorf("frame %d, cycle %d: %w", r.frames, i, err)
		}
	}
	if r.vm.AdvanceTimers() && r.config.OnSoundStop != nil {
		r.config.OnSoundStop()
	}
	r.frames++
	return nil
}

// Frames returns the number of completed frames.
func (r *Runner) Frames() uint64 {
	return r.frames
}

// FrameDuration returns the wall clock time of one frame.
func (r *Runner) FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / r.config.TimerHz)
}

// Run executes frames at the timer rate until the context is cancelled,
// a frame faults or present returns an error. present is called after every
// frame and may be nil. Cancellation returns nil.
func (r *Runner) Run(ctx context.Context, present func() error) error {
	ticker := time.NewTicker(r.FrameDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := r.Frame(); err != nil {
			return err
		}
		if present != nil {
			if err := present(); err != nil {
				return err
			}
		}
	}
}
