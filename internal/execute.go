package internal

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// execute applies a decoded instruction. pc already points at the next instruction.
func (vm *C8VM) execute(ins Instruction) error {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpNop:
	case OpCls:
		vm.clearScreen()
	case OpRet:
		return vm.ret()
	case OpJp:
		vm.pc = ins.NNN
	case OpCall:
		return vm.call(ins.NNN)
	case OpSeByte:
		vm.skipIf(vm.regV[x] == ins.NN)
	case OpSneByte:
		vm.skipIf(vm.regV[x] != ins.NN)
	case OpSeReg:
		vm.skipIf(vm.regV[x] == vm.regV[y])
	case OpSneReg:
		vm.skipIf(vm.regV[x] != vm.regV[y])
	case OpLdByte:
		vm.regV[x] = ins.NN
	case OpAddByte:
		vm.regV[x] += ins.NN // wraps, VF is not affected
	case OpLdReg:
		vm.regV[x] = vm.regV[y]
	case OpOr:
		vm.regV[x] |= vm.regV[y]
	case OpAnd:
		vm.regV[x] &= vm.regV[y]
	case OpXor:
		vm.regV[x] ^= vm.regV[y]
	case OpAddReg:
		sum := uint16(vm.regV[x]) + uint16(vm.regV[y])
		vm.setWithFlag(x, uint8(sum), sum > 0xFF)
	case OpSub:
		vm.setWithFlag(x, vm.regV[x]-vm.regV[y], vm.regV[x] >= vm.regV[y])
	case OpSubn:
		vm.setWithFlag(x, vm.regV[y]-vm.regV[x], vm.regV[y] >= vm.regV[x])
	case OpShr:
		src := vm.shiftSource(x, y)
		vm.setWithFlag(x, src>>1, src&0x01 == 1)
	case OpShl:
		src := vm.shiftSource(x, y)
		vm.setWithFlag(x, src<<1, (src>>7)&0x01 == 1)
	case OpLdI:
		vm.regI = ins.NNN
	case OpJpV0:
		return vm.jump(ins.NNN + uint16(vm.regV[0]))
	case OpRnd:
		vm.regV[x] = vm.rnd.RandomByte() & ins.NN
	case OpDrw:
		return vm.drawSprite(vm.regV[x], vm.regV[y], ins.N)
	case OpSkp:
		vm.skipIf(vm.keys[vm.regV[x]&0x0F])
	case OpSknp:
		vm.skipIf(!vm.keys[vm.regV[x]&0x0F])
	case OpLdVxDT:
		vm.regV[x] = vm.delayTimer
	case OpLdVxK:
		vm.waitForKey(x)
	case OpLdDTVx:
		vm.delayTimer = vm.regV[x]
	case OpLdSTVx:
		vm.soundTimer = vm.regV[x]
	case OpAddI:
		vm.addIndex(vm.regV[x])
	case OpLdF:
		vm.regI = uint16(vm.regV[x]&0x0F) * glyphSize
	case OpLdB:
		return vm.storeBCD(vm.regV[x])
	case OpLdIVx:
		return vm.storeRegisters(x)
	case OpLdVxI:
		return vm.loadRegisters(x)
	default:
		vm.unknownOpcode(ins)
	}
	return nil
}

// setWithFlag stores value in Vx and then the flag in VF, so that VF holds
// the flag when x is 0xF.
func (vm *C8VM) setWithFlag(x, value uint8, flag bool) {
	vm.regV[x] = value
	if flag {
		vm.regV[0xF] = 1
	} else {
		vm.regV[0xF] = 0
	}
}

func (vm *C8VM) shiftSource(x, y uint8) uint8 {
	if vm.quirks.ShiftUsesVY {
		return vm.regV[y]
	}
	return vm.regV[x]
}

func (vm *C8VM) skipIf(cond bool) {
	if cond {
		vm.pc += 2
	}
}

func (vm *C8VM) jump(addr uint16) error {
	if int(addr) >= totalMemory {
		return fmt.Errorf("%w: jump to %04X", ErrProgramCounterOutOfBounds, addr)
	}
	vm.pc = addr
	return nil
}

func (vm *C8VM) call(addr uint16) error {
	if vm.sp >= stackSize {
		return fmt.Errorf("%w: call to %03X at depth %d", ErrCallStackOverflow, addr, vm.sp)
	}
	vm.stack[vm.sp] = vm.pc
	vm.sp++
	vm.pc = addr
	return nil
}

func (vm *C8VM) ret() error {
	if vm.sp == 0 {
		return fmt.Errorf("%w: return with empty stack", ErrCallStackUnderflow)
	}
	vm.sp--
	vm.pc = vm.stack[vm.sp]
	return nil
}

// waitForKey stores the lowest pressed key in Vx. While no key is pressed pc
// is rewound so the instruction runs again on the next tick.
func (vm *C8VM) waitForKey(x uint8) {
	for key, pressed := range vm.keys {
		if pressed {
			vm.regV[x] = uint8(key)
			return
		}
	}
	vm.pc -= 2
}

func (vm *C8VM) addIndex(value uint8) {
	sum := uint32(vm.regI) + uint32(value)
	if sum >= totalMemory {
		vm.logger.Debug("Index register overflow",
			log.Hex("pc", vm.pc-2),
			log.Hex("i", vm.regI),
			log.Hex("value", value))
	}
	vm.regI = uint16(sum)
}

// checkMemory verifies that the size bytes starting at I are addressable.
func (vm *C8VM) checkMemory(size int) error {
	if int(vm.regI)+size > totalMemory {
		return fmt.Errorf("%w: %d bytes at %04X", ErrMemoryOutOfBounds, size, vm.regI)
	}
	return nil
}

func (vm *C8VM) storeBCD(value uint8) error {
	if err := vm.checkMemory(3); err != nil {
		return err
	}
	vm.memory[vm.regI] = value / 100
	vm.memory[vm.regI+1] = (value / 10) % 10
	vm.memory[vm.regI+2] = value % 10
	return nil
}

func (vm *C8VM) storeRegisters(x uint8) error {
	if err := vm.checkMemory(int(x) + 1); err != nil {
		return err
	}
	copy(vm.memory[vm.regI:], vm.regV[:x+1])
	return nil
}

func (vm *C8VM) loadRegisters(x uint8) error {
	if err := vm.checkMemory(int(x) + 1); err != nil {
		return err
	}
	copy(vm.regV[:x+1], vm.memory[vm.regI:])
	return nil
}

func (vm *C8VM) unknownOpcode(ins Instruction) {
	vm.unknownOpcodes++
	vm.logger.Warn("Skipping instruction",
		log.Err(ErrUnknownOpcode),
		log.Hex("opcode", ins.Opcode),
		log.String("instruction", ins.String()),
		log.Hex("pc", vm.pc-2),
		log.Int("count", vm.unknownOpcodes))
}
