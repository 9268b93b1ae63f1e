package sdl

import (
	"context"
	"errors"
	"fmt"

	"github.com/mnafees/chip8engine/internal"
	"github.com/mnafees/chip8engine/internal/runner"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	screenColor = 0x1A237E
	spriteColor = 0x9FA8DA
)

var errQuit = errors.New("window closed")

// IO is the input/output abstraction layer for the VM
type IO struct {
	window    *sdl.Window
	surface   *sdl.Surface
	pixelSize int32

	vm     *internal.C8VM
	logger *log.Logger
}

// NewIO returns a new I/O instance for the SDL frontend
func NewIO(vm *internal.C8VM, logger *log.Logger) *IO {
	return &IO{
		vm:     vm,
		logger: logger,
	}
}

// SetupWindow initialises and sets up the main SDL window
func (io *IO) SetupWindow(title string, scale int) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("initialising SDL: %w", err)
	}

	io.pixelSize = int32(scale)
	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		internal.ScreenWidth*io.pixelSize, internal.ScreenHeight*io.pixelSize, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("creating window: %w", err)
	}
	io.window = window
	io.surface, err = window.GetSurface()
	if err != nil {
		io.Destroy()
		return fmt.Errorf("getting window surface: %w", err)
	}
	return io.surface.FillRect(nil, screenColor)
}

// Destroy should be called before quitting the application
func (io *IO) Destroy() {
	if io.window != nil {
		_ = io.window.Destroy()
	}
	sdl.Quit()
}

// Loop is the main application loop. It returns nil when the window is
// closed or the context is cancelled, and the fault if the VM halts.
func (io *IO) Loop(ctx context.Context, r *runner.Runner) error {
	err := r.Run(ctx, io.present)
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

// present redraws the screen if needed and processes pending window events.
func (io *IO) present() error {
	if io.vm.IsClearFlagSet() || io.vm.IsDrawFlagSet() {
		if err := io.draw(); err != nil {
			return err
		}
	}

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.KeyboardEvent:
			keycode := t.Keysym.Scancode
			switch t.GetType() {
			case sdl.KEYDOWN:
				io.setKey(keycode, true)
			case sdl.KEYUP:
				io.setKey(keycode, false)
			}
		case *sdl.QuitEvent:
			return errQuit
		}
	}
	return nil
}

// Draws the current sprite configuration on screen
func (io *IO) draw() error {
	if err := io.surface.FillRect(nil, screenColor); err != nil {
		return fmt.Errorf("clearing surface: %w", err)
	}
	pixels := io.vm.Pixels()
	for h := int32(0); h < internal.ScreenHeight; h++ {
		for w := int32(0); w < internal.ScreenWidth; w++ {
			if pixels[h][w] == 1 {
				rect := &sdl.Rect{X: w * io.pixelSize, Y: h * io.pixelSize, W: io.pixelSize, H: io.pixelSize}
				if err := io.surface.FillRect(rect, spriteColor); err != nil {
					return fmt.Errorf("drawing pixel: %w", err)
				}
			}
		}
	}
	if err := io.window.UpdateSurface(); err != nil {
		return fmt.Errorf("updating window: %w", err)
	}
	io.vm.UnsetClearFlag()
	io.vm.UnsetDrawFlag()
	return nil
}

// Maps keys from a QWERTY keyboard to the keypad used by CHIP-8
// Below we have a mapping QWERTY keyboard to the CHIP-8 keypad
// +--------+--------+--------+--------+
// | 1 -> 1 | 2 -> 2 | 3 -> 3 | 4 -> C |
// +--------+--------+--------+--------+
// | Q -> 4 | W -> 5 | E -> 6 | R -> D |
// +--------+--------+--------+--------+
// | A -> 7 | S -> 8 | D -> 9 | F -> E |
// +--------+--------+--------+--------+
// | Z -> A | X -> 0 | C -> B | V -> F |
// +--------+--------+--------+--------+
var keymap = map[sdl.Scancode]uint8{
	sdl.SCANCODE_1: 0x1,
	sdl.SCANCODE_2: 0x2,
	sdl.SCANCODE_3: 0x3,
	sdl.SCANCODE_4: 0xC,
	sdl.SCANCODE_Q: 0x4,
	sdl.SCANCODE_W: 0x5,
	sdl.SCANCODE_E: 0x6,
	sdl.SCANCODE_R: 0xD,
	sdl.SCANCODE_A: 0x7,
	sdl.SCANCODE_S: 0x8,
	sdl.SCANCODE_D: 0x9,
	sdl.SCANCODE_F: 0xE,
	sdl.SCANCODE_Z: 0xA,
	sdl.SCANCODE_X: 0x0,
	sdl.SCANCODE_C: 0xB,
	sdl.SCANCODE_V: 0xF,
}

func (io *IO) setKey(keycode sdl.Scancode, pressed bool) {
	code, ok := keymap[keycode]
	if !ok {
		return
	}
	if err := io.vm.SetKey(code, pressed); err != nil {
		io.logger.Error("Setting key failed", log.Err(err))
	}
}
