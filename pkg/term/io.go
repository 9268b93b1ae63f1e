// Package term is a terminal front-end for the VM built on termbox.
// Two CHIP-8 rows are packed into one terminal row using half block characters.
package term

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mnafees/chip8engine/internal"
	"github.com/mnafees/chip8engine/internal/runner"
	"github.com/nsf/termbox-go"
	"github.com/retroenv/retrogolib/log"
)

// Terminals report no key releases, a key counts as held for this many frames
// after its last press or auto-repeat.
const keyHoldFrames = 6

const (
	upperHalf = '▀'
	lowerHalf = '▄'
	fullBlock = '█'
)

var errQuit = errors.New("quit requested")

// IO is the terminal input/output layer for the VM.
type IO struct {
	vm     *internal.C8VM
	logger *log.Logger

	events   chan termbox.Event
	done     chan struct{} // closed by Destroy to stop the polling goroutine
	stopOnce sync.Once
	held     [16]int // frames left until a key is released
}

// NewIO returns a new I/O instance for the terminal front-end.
func NewIO(vm *internal.C8VM, logger *log.Logger) *IO {
	return &IO{
		vm:     vm,
		logger: logger,
		events: make(chan termbox.Event, 16),
		done:   make(chan struct{}),
	}
}

// Setup initialises the terminal and starts polling for key events.
func (io *IO) Setup() error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("initialising terminal: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()
	_ = termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt || !io.forward(ev) {
				return
			}
		}
	}()
	return nil
}

// forward hands a polled event to the loop. It returns false once the IO
// has been destroyed.
func (io *IO) forward(ev termbox.Event) bool {
	select {
	case io.events <- ev:
		return true
	case <-io.done:
		return false
	}
}

// Destroy stops event polling and restores the terminal.
func (io *IO) Destroy() {
	io.stopOnce.Do(func() {
		close(io.done)
		termbox.Interrupt()
		termbox.Close()
	})
}

// Loop is the main application loop. It returns nil when Esc or Ctrl+C is
// pressed or the context is cancelled, and the fault if the VM halts.
func (io *IO) Loop(ctx context.Context, r *runner.Runner) error {
	err := r.Run(ctx, io.present)
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

func (io *IO) present() error {
	if err := io.handleEvents(); err != nil {
		return err
	}
	io.releaseKeys()

	if io.vm.IsClearFlagSet() || io.vm.IsDrawFlagSet() {
		io.vm.UnsetClearFlag()
		io.vm.UnsetDrawFlag()
		return io.draw()
	}
	return nil
}

func (io *IO) handleEvents() error {
	for {
		select {
		case ev := <-io.events:
			switch ev.Type {
			case termbox.EventKey:
				if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC {
					return errQuit
				}
				io.pressKey(ev.Ch)
			case termbox.EventError:
				return fmt.Errorf("reading terminal: %w", ev.Err)
			case termbox.EventResize:
				return io.draw()
			}
		default:
			return nil
		}
	}
}

func (io *IO) pressKey(ch rune) {
	code, ok := keymap[ch]
	if !ok {
		return
	}
	io.held[code] = keyHoldFrames
	if err := io.vm.SetKey(code, true); err != nil {
		io.logger.Error("Setting key failed", log.Err(err))
	}
}

func (io *IO) releaseKeys() {
	for code := range io.held {
		if io.held[code] == 0 {
			continue
		}
		io.held[code]--
		if io.held[code] == 0 {
			_ = io.vm.SetKey(uint8(code), false)
		}
	}
}

func (io *IO) draw() error {
	pixels := io.vm.Pixels()
	for y := 0; y < internal.ScreenHeight; y += 2 {
		for x := 0; x < internal.ScreenWidth; x++ {
			termbox.SetCell(x, y/2, cell(pixels[y][x], pixels[y+1][x]), termbox.ColorWhite, termbox.ColorDefault)
		}
	}
	if err := termbox.Flush(); err != nil {
		return fmt.Errorf("flushing terminal: %w", err)
	}
	return nil
}

// cell returns the character showing an upper and a lower pixel.
func cell(upper, lower uint8) rune {
	switch {
	case upper == 1 && lower == 1:
		return fullBlock
	case upper == 1:
		return upperHalf
	case lower == 1:
		return lowerHalf
	}
	return ' '
}

// keymap maps the QWERTY key grid 1234/QWER/ASDF/ZXCV to the CHIP-8 keypad.
var keymap = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}
