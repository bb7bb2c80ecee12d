package vm

import (
	"errors"
	"fmt"
)

var (
	ErrROMTooLarge    = errors.New("rom too large")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
)

// InstructionError is returned when an instruction cannot be executed.
// PC is the address the opcode was fetched from.
type InstructionError struct {
	Opcode uint16
	PC     uint16
	Err    error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("%v: opcode 0x%04X at 0x%04X", e.Err, e.Opcode, e.PC)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}
