package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrStackOverflow is returned by a CALL with all 16 stack slots in use.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned by a RET with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrUnimplementedOpcode is the sentinel wrapped by OpcodeError.
	ErrUnimplementedOpcode = errors.New("unimplemented opcode")
)

// OpcodeError reports an instruction word that does not decode.
type OpcodeError struct {
	Opcode  uint16
	Address uint16
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("unimplemented opcode 0x%04X at 0x%03X", e.Opcode, e.Address)
}

func (e *OpcodeError) Unwrap() error {
	return ErrUnimplementedOpcode
}

// Fault is a fatal execution error. Once a fault is raised the CPU refuses to
// execute further instructions until Reset is called.
type Fault struct {
	PC     uint16 // address of the faulting instruction
	Opcode uint16 // zero if the fault happened while fetching
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("cpu fault at 0x%03X (opcode 0x%04X): %v", f.PC, f.Opcode, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
