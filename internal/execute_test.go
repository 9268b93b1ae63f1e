package internal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestC8VM_ClearScreen(t *testing.T) {
	vm := newTestVM(t, 0x00E0)
	for y := range vm.pixels {
		for x := range vm.pixels[y] {
			vm.pixels[y][x] = uint8((x + y) % 2)
		}
	}

	run(t, vm, 1)
	assert.Equal(t, Framebuffer{}, vm.Pixels())
	assert.True(t, vm.IsClearFlagSet())
	vm.UnsetClearFlag()
	assert.False(t, vm.IsClearFlagSet())
}

func TestC8VM_Nop(t *testing.T) {
	vm := newTestVM(t, 0x0000, 0x6001)
	run(t, vm, 2)
	assert.Equal(t, uint16(0x204), vm.PC())
	assert.Equal(t, uint8(1), vm.V(0))
}

func TestC8VM_Jump(t *testing.T) {
	vm := newTestVM(t, 0x1ABC)
	run(t, vm, 1)
	assert.Equal(t, uint16(0xABC), vm.PC())
}

func TestC8VM_JumpV0(t *testing.T) {
	vm := newTestVM(t, 0xB300)
	vm.regV[0] = 0x10
	run(t, vm, 1)
	assert.Equal(t, uint16(0x310), vm.PC())

	vm = newTestVM(t, 0xBFFF)
	vm.regV[0] = 0x01
	err := vm.Tick()
	assert.True(t, errors.Is(err, ErrProgramCounterOutOfBounds))
}

func TestC8VM_CallReturn(t *testing.T) {
	tests := []struct {
		name  string
		depth int
	}{
		{"depth 1", 1},
		{"depth 8", 8},
		{"depth 16", 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, 0x2300)
			// subroutine k at 0x300+4k calls subroutine k+1 and returns,
			// the innermost one only returns
			for k := 0; k < tt.depth; k++ {
				addr := 0x300 + 4*k
				if k < tt.depth-1 {
					next := addr + 4
					vm.memory[addr] = 0x20 | uint8(next>>8)
					vm.memory[addr+1] = uint8(next)
					addr += 2
				}
				vm.memory[addr] = 0x00
				vm.memory[addr+1] = 0xEE
			}

			run(t, vm, 1)
			assert.Equal(t, uint16(0x300), vm.PC())
			run(t, vm, tt.depth-1)
			assert.Equal(t, uint8(tt.depth), vm.SP())

			run(t, vm, tt.depth)
			assert.Equal(t, uint16(0x202), vm.PC())
			assert.Equal(t, uint8(0), vm.SP())
		})
	}
}

func TestC8VM_CallOverflow(t *testing.T) {
	vm := newTestVM(t, 0x2200) // calls itself forever
	run(t, vm, stackSize)
	assert.Equal(t, uint8(stackSize), vm.SP())

	err := vm.Tick()
	assert.True(t, errors.Is(err, ErrCallStackOverflow))
	assert.Equal(t, uint8(stackSize), vm.SP())
	assert.True(t, errors.Is(vm.Halted(), ErrCallStackOverflow))
}

func TestC8VM_ReturnUnderflow(t *testing.T) {
	vm := newTestVM(t, 0x00EE)
	err := vm.Tick()
	assert.True(t, errors.Is(err, ErrCallStackUnderflow))
	assert.Equal(t, uint8(0), vm.SP())
}

func TestC8VM_Skip(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		v1, v2 uint8
		skip   bool
	}{
		{"SE byte equal", 0x3142, 0x42, 0, true},
		{"SE byte not equal", 0x3142, 0x41, 0, false},
		{"SNE byte equal", 0x4142, 0x42, 0, false},
		{"SNE byte not equal", 0x4142, 0x41, 0, true},
		{"SE reg equal", 0x5120, 7, 7, true},
		{"SE reg not equal", 0x5120, 7, 8, false},
		{"SNE reg equal", 0x9120, 7, 7, false},
		{"SNE reg not equal", 0x9120, 7, 8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, tt.opcode)
			vm.regV[1] = tt.v1
			vm.regV[2] = tt.v2
			run(t, vm, 1)
			want := uint16(0x202)
			if tt.skip {
				want = 0x204
			}
			assert.Equal(t, want, vm.PC())
		})
	}
}

func TestC8VM_AddImmediateNeverSetsVF(t *testing.T) {
	for vx := 0; vx < 256; vx += 5 {
		for nn := 0; nn < 256; nn += 3 {
			vm := newTestVM(t, 0x7100|uint16(nn))
			vm.regV[1] = uint8(vx)
			vm.regV[0xF] = 0x55
			run(t, vm, 1)
			assert.Equal(t, uint8(vx+nn), vm.V(1))
			assert.Equal(t, uint8(0x55), vm.V(0xF))
		}
	}
}

func TestC8VM_AddCarry(t *testing.T) {
	for vx := 0; vx < 256; vx += 7 {
		for vy := 0; vy < 256; vy += 11 {
			vm := newTestVM(t, 0x8124)
			vm.regV[1] = uint8(vx)
			vm.regV[2] = uint8(vy)
			run(t, vm, 1)
			assert.Equal(t, uint8(vx+vy), vm.V(1))
			var carry uint8
			if vx+vy > 255 {
				carry = 1
			}
			assert.Equal(t, carry, vm.V(0xF))
		}
	}
}

func TestC8VM_SubBorrow(t *testing.T) {
	for a := 0; a < 256; a += 3 {
		for b := 0; b < 256; b += 5 {
			// 8xy5: Vx = Vx - Vy
			vm := newTestVM(t, 0x8125)
			vm.regV[1] = uint8(a)
			vm.regV[2] = uint8(b)
			run(t, vm, 1)
			assert.Equal(t, uint8(a-b), vm.V(1))
			assert.Equal(t, boolFlag(a >= b), vm.V(0xF))

			// 8xy7: Vx = Vy - Vx
			vm = newTestVM(t, 0x8127)
			vm.regV[1] = uint8(a)
			vm.regV[2] = uint8(b)
			run(t, vm, 1)
			assert.Equal(t, uint8(b-a), vm.V(1))
			assert.Equal(t, boolFlag(b >= a), vm.V(0xF))
		}
	}
}

func boolFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func TestC8VM_Logic(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		want   uint8
	}{
		{"LD", 0x8120, 0x0F},
		{"OR", 0x8121, 0x3F},
		{"AND", 0x8122, 0x0C},
		{"XOR", 0x8123, 0x33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, tt.opcode)
			vm.regV[1] = 0x3C
			vm.regV[2] = 0x0F
			run(t, vm, 1)
			assert.Equal(t, tt.want, vm.V(1))
			assert.Equal(t, uint8(0x0F), vm.V(2))
		})
	}
}

func TestC8VM_Shift(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		quirks Quirks
		vx, vy uint8
		want   uint8
		flag   uint8
	}{
		{"SHR lsb set", 0x8126, Quirks{}, 0x05, 0xF0, 0x02, 1},
		{"SHR lsb clear", 0x8126, Quirks{}, 0x04, 0xF1, 0x02, 0},
		{"SHL msb set", 0x812E, Quirks{}, 0x81, 0x00, 0x02, 1},
		{"SHL msb clear", 0x812E, Quirks{}, 0x41, 0xFF, 0x82, 0},
		{"SHR from Vy", 0x8126, Quirks{ShiftUsesVY: true}, 0x00, 0x03, 0x01, 1},
		{"SHL from Vy", 0x812E, Quirks{ShiftUsesVY: true}, 0x00, 0x40, 0x80, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, tt.opcode)
			vm.quirks = tt.quirks
			vm.regV[1] = tt.vx
			vm.regV[2] = tt.vy
			run(t, vm, 1)
			assert.Equal(t, tt.want, vm.V(1))
			assert.Equal(t, tt.flag, vm.V(0xF))
		})
	}
}

func TestC8VM_FlagWrittenLast(t *testing.T) {
	// VF as destination ends up holding the flag
	vm := newTestVM(t, 0x8F14)
	vm.regV[0xF] = 0xFF
	vm.regV[1] = 0x02
	run(t, vm, 1)
	assert.Equal(t, uint8(1), vm.V(0xF))
}

func TestC8VM_LoadIndex(t *testing.T) {
	vm := newTestVM(t, 0xA123, 0x6010, 0xF01E)
	run(t, vm, 1)
	assert.Equal(t, uint16(0x123), vm.I())
	run(t, vm, 2)
	assert.Equal(t, uint16(0x133), vm.I())
}

func TestC8VM_AddIndexNoFlag(t *testing.T) {
	vm := newTestVM(t, 0xF01E)
	vm.regI = 0xFFF
	vm.regV[0] = 0x02
	vm.regV[0xF] = 0x07
	run(t, vm, 1)
	assert.Equal(t, uint16(0x1001), vm.I())
	assert.Equal(t, uint8(0x07), vm.V(0xF))
}

func TestC8VM_Random(t *testing.T) {
	vm := newTestVM(t, 0xC10F, 0xC2F0)
	vm.rnd = &FixedBytes{Bytes: []uint8{0xAB, 0xCD}}
	run(t, vm, 2)
	assert.Equal(t, uint8(0x0B), vm.V(1))
	assert.Equal(t, uint8(0xC0), vm.V(2))
}

func TestC8VM_SkipKey(t *testing.T) {
	tests := []struct {
		name    string
		opcode  uint16
		pressed bool
		skip    bool
	}{
		{"SKP pressed", 0xE19E, true, true},
		{"SKP released", 0xE19E, false, false},
		{"SKNP pressed", 0xE1A1, true, false},
		{"SKNP released", 0xE1A1, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, tt.opcode)
			vm.regV[1] = 0xA
			assert.NoError(t, vm.SetKey(0xA, tt.pressed))
			run(t, vm, 1)
			want := uint16(0x202)
			if tt.skip {
				want = 0x204
			}
			assert.Equal(t, want, vm.PC())
		})
	}
}

func TestC8VM_WaitForKey(t *testing.T) {
	vm := newTestVM(t, 0xF30A)
	vm.delayTimer = 10

	for i := 0; i < 5; i++ {
		run(t, vm, 1)
		assert.Equal(t, uint16(0x200), vm.PC())
		vm.AdvanceTimers()
	}
	assert.Equal(t, uint8(5), vm.DelayTimer())

	assert.NoError(t, vm.SetKey(0xC, true))
	assert.NoError(t, vm.SetKey(0x7, true))
	run(t, vm, 1)
	assert.Equal(t, uint16(0x202), vm.PC())
	assert.Equal(t, uint8(0x7), vm.V(3))
}

func TestC8VM_Timers(t *testing.T) {
	vm := newTestVM(t, 0x6A20, 0xFA15, 0xFA18, 0xFB07)
	run(t, vm, 3)
	assert.Equal(t, uint8(0x20), vm.DelayTimer())
	assert.Equal(t, uint8(0x20), vm.SoundTimer())
	vm.AdvanceTimers()
	run(t, vm, 1)
	assert.Equal(t, uint8(0x1F), vm.V(0xB))
}

func TestC8VM_FontAddress(t *testing.T) {
	for digit := uint8(0); digit < 16; digit++ {
		vm := newTestVM(t, 0xF129)
		vm.regV[1] = digit
		run(t, vm, 1)
		assert.Equal(t, uint16(digit)*5, vm.I())
		assert.Equal(t, fontset[int(digit)*5], vm.Memory(vm.I()))
	}
}

func TestC8VM_BCD(t *testing.T) {
	tests := []struct {
		value uint8
		want  [3]uint8
	}{
		{0, [3]uint8{0, 0, 0}},
		{7, [3]uint8{0, 0, 7}},
		{42, [3]uint8{0, 4, 2}},
		{100, [3]uint8{1, 0, 0}},
		{255, [3]uint8{2, 5, 5}},
	}
	for _, tt := range tests {
		vm := newTestVM(t, 0xF033)
		vm.regV[0] = tt.value
		vm.regI = 0x400
		run(t, vm, 1)
		got := [3]uint8{vm.Memory(0x400), vm.Memory(0x401), vm.Memory(0x402)}
		assert.Equal(t, tt.want, got)
	}
}

func TestC8VM_StoreLoadRegisters(t *testing.T) {
	vm := newTestVM(t, 0xF355, 0x6000, 0x6100, 0xA400, 0xF265)
	for i := range vm.regV {
		vm.regV[i] = uint8(0x10 + i)
	}
	vm.regI = 0x400

	run(t, vm, 1)
	assert.Equal(t, uint8(0x10), vm.Memory(0x400))
	assert.Equal(t, uint8(0x13), vm.Memory(0x403))
	assert.Equal(t, uint8(0x00), vm.Memory(0x404))
	assert.Equal(t, uint16(0x400), vm.I())

	run(t, vm, 4)
	assert.Equal(t, uint8(0x10), vm.V(0))
	assert.Equal(t, uint8(0x11), vm.V(1))
	assert.Equal(t, uint8(0x12), vm.V(2))
	assert.Equal(t, uint8(0x13), vm.V(3))
}

func TestC8VM_MemoryBounds(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		i      uint16
	}{
		{"BCD", 0xF033, 0xFFE},
		{"store registers", 0xF255, 0xFFE},
		{"load registers", 0xF265, 0xFFE},
		{"draw", 0xD015, 0xFFC},
		{"index past memory", 0xF055, 0x1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, tt.opcode)
			vm.regI = tt.i
			err := vm.Tick()
			assert.True(t, errors.Is(err, ErrMemoryOutOfBounds))
			assert.Equal(t, Framebuffer{}, vm.Pixels())
		})
	}
}

func TestC8VM_UnknownOpcode(t *testing.T) {
	vm := newTestVM(t, 0x5121, 0x0123, 0xE1FF, 0xF0FF, 0x8128, 0x6001)
	run(t, vm, 6)
	assert.Equal(t, 5, vm.UnknownOpcodes())
	assert.Equal(t, uint8(1), vm.V(0))
	assert.Nil(t, vm.Halted())
}

func TestC8VM_UnknownOpcode_Logged(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
	}{
		{name: "5xy1", opcode: 0x5121},
		{name: "ExFF", opcode: 0xE1FF},
		{name: "8xy8", opcode: 0x8128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg := log.DefaultConfig()
			cfg.Output = &out
			vm, err := NewC8VM(
				WithLogger(log.NewWithConfig(cfg)),
				WithRandom(&FixedBytes{Bytes: []uint8{0xFF}}),
			)
			assert.NoError(t, err)
			assert.NoError(t, vm.LoadProgram(program(tt.opcode)))

			run(t, vm, 1)
			assert.Contains(t, out.String(), ErrUnknownOpcode.Error())
			assert.Contains(t, out.String(), Decode(tt.opcode).String())
		})
	}
}
