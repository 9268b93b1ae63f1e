package internal

import "errors"

// Faults reported by the VM. Tick and LoadProgram wrap these, match them with errors.Is.
var (
	ErrRomTooLarge               = errors.New("program size exceeds the maximum size")
	ErrProgramCounterOutOfBounds = errors.New("program counter out of bounds")
	ErrCallStackOverflow         = errors.New("call stack overflow")
	ErrCallStackUnderflow        = errors.New("call stack underflow")
	ErrMemoryOutOfBounds         = errors.New("memory access out of bounds")
	ErrInvalidKey                = errors.New("invalid key")
	ErrHalted                    = errors.New("vm is halted")

	// ErrUnknownOpcode is never returned by Tick, it is attached to the
	// diagnostic logged when an unknown opcode is counted and skipped.
	ErrUnknownOpcode = errors.New("unknown opcode")
)
