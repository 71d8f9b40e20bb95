package debug

import "github.com/valerio/go-chip8/chip8/input"

// CPUState contains all CPU register information for debugging
type CPUState struct {
	V     [16]uint8
	I     uint16
	PC    uint16
	SP    uint8
	Stack []uint16

	DT uint8
	ST uint8

	Keys [input.KeyCount]bool

	Cycles      uint64
	Opcode      uint16 // last executed opcode
	Instruction string // decoded instruction at PC
}

// MemorySnapshot contains a window of memory for the debug panel
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
	DebuggerStepFrame
	DebuggerHalted
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerRunning:
		return "running"
	case DebuggerPaused:
		return "paused"
	case DebuggerStepInstruction:
		return "step instruction"
	case DebuggerStepFrame:
		return "step frame"
	case DebuggerHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// Data contains all debug information needed by debug displays
type Data struct {
	CPU           *CPUState
	Memory        *MemorySnapshot
	DebuggerState DebuggerState
	Frames        uint64
	Fault         string // empty while the machine is healthy
}
