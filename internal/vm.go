package internal

// Follows the CHIP-8 technical reference found at http://devernay.free.fr/hacks/chip8/C8TECH10.HTM

import (
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"
)

// CHIP-8 VM constants
const (
	totalMemory    = 0x1000
	pcStartAddr    = 0x200
	maxProgramSize = totalMemory - pcStartAddr
	stackSize      = 16
	numKeys        = 16

	ScreenWidth  = 64
	ScreenHeight = 32
)

// C8VM is an emulated CHIP-8 VM
type C8VM struct {
	opcode     uint16             // 16-bit opcode of the current instruction
	regV       [16]uint8          // 16 general purpose 8-bit registers
	regI       uint16             // 16-bit register that is generally used to store memory addresses
	delayTimer uint8              // Delay timer
	soundTimer uint8              // Sound timer
	pc         uint16             // Program counter
	sp         uint8              // Stack pointer
	stack      [stackSize]uint16  // A stack of 16 16-bit values
	memory     [totalMemory]uint8 // 4 KB global memory

	clearFlag bool // Clear screen flag
	drawFlag  bool // Draw sprite flag

	keys   [numKeys]bool // keypad state, indexed by key 0x0-0xF
	pixels Framebuffer   // 64 px x 32 px display

	fault          error // fatal fault that halted the VM, nil while running
	unknownOpcodes int

	logger *log.Logger
	rnd    ByteSource
	quirks Quirks
}

// Quirks selects between incompatible behaviours of CHIP-8 interpreters.
type Quirks struct {
	// ShiftUsesVY makes 8xy6 and 8xyE shift Vy into Vx as CHIP-48 and
	// SUPER-CHIP do. The default shifts Vx in place as the COSMAC VIP does.
	ShiftUsesVY bool
}

// Option configures a VM created by NewC8VM.
type Option func(vm *C8VM)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(vm *C8VM) {
		vm.logger = logger
	}
}

// WithRandom sets the byte source used by the Cxkk instruction.
func WithRandom(rnd ByteSource) Option {
	return func(vm *C8VM) {
		vm.rnd = rnd
	}
}

// WithQuirks sets the interpreter compatibility behaviours.
func WithQuirks(quirks Quirks) Option {
	return func(vm *C8VM) {
		vm.quirks = quirks
	}
}

// NewC8VM creates a new instance of an emulated CHIP-8 VM in its power-on state.
func NewC8VM(options ...Option) (*C8VM, error) {
	vm := &C8VM{}
	for _, option := range options {
		option(vm)
	}
	if vm.logger == nil {
		vm.logger = log.NewWithConfig(log.DefaultConfig())
	}
	if vm.rnd == nil {
		vm.rnd = NewTimeSeededRandom()
	}
	vm.Reset()
	return vm, nil
}

// Reset returns the VM to its power-on state. Options passed to NewC8VM are kept.
func (vm *C8VM) Reset() {
	vm.opcode = 0
	vm.regV = [16]uint8{}
	vm.regI = 0
	vm.delayTimer = 0
	vm.soundTimer = 0
	vm.pc = pcStartAddr
	vm.sp = 0
	vm.stack = [stackSize]uint16{}
	vm.memory = [totalMemory]uint8{}
	copy(vm.memory[:], fontset[:])
	vm.clearFlag = false
	vm.drawFlag = false
	vm.keys = [numKeys]bool{}
	vm.pixels = Framebuffer{}
	vm.fault = nil
	vm.unknownOpcodes = 0
}

// LoadProgram loads a given CHIP-8 program into the VM's memory at 0x200.
// The VM is left untouched if the program does not fit.
func (vm *C8VM) LoadProgram(data []byte) error {
	size := len(data)
	if size > maxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrRomTooLarge, size, maxProgramSize)
	}
	copy(vm.memory[pcStartAddr:], data)
	return nil
}

// LoadProgramFile reads a CHIP-8 program from disk and loads it.
func (vm *C8VM) LoadProgramFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	return vm.LoadProgram(data)
}

// Tick runs a single fetch, decode and execute cycle. Timers are not touched.
// A returned error is a fatal fault, the VM stays halted until Reset.
func (vm *C8VM) Tick() error {
	if vm.fault != nil {
		return fmt.Errorf("%w: %w", ErrHalted, vm.fault)
	}

	opcode, err := vm.fetch()
	if err != nil {
		return vm.halt(err)
	}
	vm.opcode = opcode

	if err := vm.execute(Decode(opcode)); err != nil {
		return vm.halt(err)
	}
	if int(vm.pc) >= totalMemory {
		return vm.halt(fmt.Errorf("%w: pc advanced to %04X", ErrProgramCounterOutOfBounds, vm.pc))
	}
	return nil
}

// fetch reads the big-endian opcode at pc and advances pc past it.
func (vm *C8VM) fetch() (uint16, error) {
	if int(vm.pc)+1 >= totalMemory {
		return 0, fmt.Errorf("%w: fetch at %04X", ErrProgramCounterOutOfBounds, vm.pc)
	}
	opcode := uint16(vm.memory[vm.pc])<<8 | uint16(vm.memory[vm.pc+1]) // 16-bit instruction opcode
	vm.pc += 2
	return opcode, nil
}

func (vm *C8VM) halt(err error) error {
	vm.fault = err
	vm.logger.Debug("VM halted",
		log.Hex("pc", vm.pc),
		log.Hex("opcode", vm.opcode),
		log.String("instruction", Decode(vm.opcode).String()),
		log.Err(err))
	return err
}

// Halted returns the fault that halted the VM, or nil if it is running.
func (vm *C8VM) Halted() error {
	return vm.fault
}

// UnknownOpcodes returns the number of unknown opcodes skipped since the last reset.
func (vm *C8VM) UnknownOpcodes() int {
	return vm.unknownOpcodes
}

// PC returns the program counter
func (vm *C8VM) PC() uint16 {
	return vm.pc
}

// I returns the index register
func (vm *C8VM) I() uint16 {
	return vm.regI
}

// V returns the value of register Vx, x is masked to 0x0-0xF.
func (vm *C8VM) V(x uint8) uint8 {
	return vm.regV[x&0x0F]
}

// SP returns the number of return addresses on the call stack
func (vm *C8VM) SP() uint8 {
	return vm.sp
}

// Opcode returns the most recently fetched opcode
func (vm *C8VM) Opcode() uint16 {
	return vm.opcode
}

// Memory returns the byte at addr, addresses outside of memory read as 0.
func (vm *C8VM) Memory(addr uint16) uint8 {
	if int(addr) >= totalMemory {
		return 0
	}
	return vm.memory[addr]
}

// IsClearFlagSet returns whether the screen was cleared since UnsetClearFlag
func (vm *C8VM) IsClearFlagSet() bool {
	return vm.clearFlag
}

// UnsetClearFlag unsets the clear flag
func (vm *C8VM) UnsetClearFlag() {
	vm.clearFlag = false
}

// IsDrawFlagSet returns whether a sprite was drawn since UnsetDrawFlag
func (vm *C8VM) IsDrawFlagSet() bool {
	return vm.drawFlag
}

// UnsetDrawFlag unsets the draw flag
func (vm *C8VM) UnsetDrawFlag() {
	vm.drawFlag = false
}
