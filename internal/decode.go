package internal

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Op identifies the kind of a decoded instruction.
type Op uint8

// Instruction kinds, named after the Cowgod mnemonics.
const (
	OpUnknown Op = iota
	OpNop        // 0000
	OpCls        // 00E0
	OpRet        // 00EE
	OpJp         // 1nnn
	OpCall       // 2nnn
	OpSeByte     // 3xkk
	OpSneByte    // 4xkk
	OpSeReg      // 5xy0
	OpLdByte     // 6xkk
	OpAddByte    // 7xkk
	OpLdReg      // 8xy0
	OpOr         // 8xy1
	OpAnd        // 8xy2
	OpXor        // 8xy3
	OpAddReg     // 8xy4
	OpSub        // 8xy5
	OpShr        // 8xy6
	OpSubn       // 8xy7
	OpShl        // 8xyE
	OpSneReg     // 9xy0
	OpLdI        // Annn
	OpJpV0       // Bnnn
	OpRnd        // Cxkk
	OpDrw        // Dxyn
	OpSkp        // Ex9E
	OpSknp       // ExA1
	OpLdVxDT     // Fx07
	OpLdVxK      // Fx0A
	OpLdDTVx     // Fx15
	OpLdSTVx     // Fx18
	OpAddI       // Fx1E
	OpLdF        // Fx29
	OpLdB        // Fx33
	OpLdIVx      // Fx55
	OpLdVxI      // Fx65
)

// Instruction is a fetched opcode split into its operand fields.
type Instruction struct {
	Opcode uint16
	Op     Op
	X      uint8  // the lower 4 bits of the high byte of the instruction
	Y      uint8  // the upper 4 bits of the low byte of the instruction
	N      uint8  // the lowest 4 bits of the instruction
	NN     uint8  // the lowest 8 bits of the instruction
	NNN    uint16 // the lowest 12 bits of the instruction
}

// Decode splits an opcode into its fields and resolves the instruction kind.
// Opcodes not part of the CHIP-8 instruction set decode to OpUnknown.
func Decode(opcode uint16) Instruction {
	ins := Instruction{
		Opcode: opcode,
		X:      uint8((opcode >> 8) & 0x000F),
		Y:      uint8((opcode >> 4) & 0x000F),
		N:      uint8(opcode & 0x000F),
		NN:     uint8(opcode & 0x00FF),
		NNN:    opcode & 0x0FFF,
	}
	ins.Op = decodeOp(opcode, ins.N, ins.NN)
	return ins
}

func decodeOp(opcode uint16, n, nn uint8) Op {
	switch opcode & 0xF000 { // Compare against the first 4 bits of the instruction only
	case 0x0000:
		switch opcode {
		case 0x0000:
			return OpNop
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRet
		}
	case 0x1000:
		return OpJp
	case 0x2000:
		return OpCall
	case 0x3000:
		return OpSeByte
	case 0x4000:
		return OpSneByte
	case 0x5000:
		if n == 0x0 {
			return OpSeReg
		}
	case 0x6000:
		return OpLdByte
	case 0x7000:
		return OpAddByte
	case 0x8000:
		return decodeALU(n)
	case 0x9000:
		if n == 0x0 {
			return OpSneReg
		}
	case 0xA000:
		return OpLdI
	case 0xB000:
		return OpJpV0
	case 0xC000:
		return OpRnd
	case 0xD000:
		return OpDrw
	case 0xE000:
		switch nn {
		case 0x9E:
			return OpSkp
		case 0xA1:
			return OpSknp
		}
	case 0xF000:
		return decodeMisc(nn)
	}
	return OpUnknown
}

func decodeALU(n uint8) Op {
	switch n {
	case 0x0:
		return OpLdReg
	case 0x1:
		return OpOr
	case 0x2:
		return OpAnd
	case 0x3:
		return OpXor
	case 0x4:
		return OpAddReg
	case 0x5:
		return OpSub
	case 0x6:
		return OpShr
	case 0x7:
		return OpSubn
	case 0xE:
		return OpShl
	}
	return OpUnknown
}

func decodeMisc(nn uint8) Op {
	switch nn {
	case 0x07:
		return OpLdVxDT
	case 0x0A:
		return OpLdVxK
	case 0x15:
		return OpLdDTVx
	case 0x18:
		return OpLdSTVx
	case 0x1E:
		return OpAddI
	case 0x29:
		return OpLdF
	case 0x33:
		return OpLdB
	case 0x55:
		return OpLdIVx
	case 0x65:
		return OpLdVxI
	}
	return OpUnknown
}

// Mnemonic returns the assembler name of the instruction, looked up in the
// retrogolib CHIP-8 opcode table.
func (ins Instruction) Mnemonic() string {
	switch ins.Op {
	case OpUnknown:
		return "unknown"
	case OpNop:
		return "nop"
	}

	firstNibble := (ins.Opcode & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&ins.Opcode == op.Info.Value && op.Instruction != nil {
			return op.Instruction.Name
		}
	}
	return "unknown"
}

// String returns the opcode and mnemonic, e.g. "8014 add".
func (ins Instruction) String() string {
	return fmt.Sprintf("%04X %s", ins.Opcode, ins.Mnemonic())
}
