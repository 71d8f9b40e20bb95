package memory

import (
	"errors"
	"fmt"
	"log/slog"
)

// Memory map
//
//	0x000-0x04F: font glyphs
//	0x050-0x1FF: reserved for the interpreter
//	0x200-0xFFF: program space
const (
	Size           = 0x1000
	FontStart      = 0x000
	FontSize       = 80
	ProgramStart   = 0x200
	MaxProgramSize = Size - ProgramStart
)

var (
	// ErrProgramTooLarge is returned when a program does not fit in program space.
	ErrProgramTooLarge = errors.New("program exceeds available program space")
	// ErrAddressOutOfRange is returned for any access beyond the 4 KiB address space.
	ErrAddressOutOfRange = errors.New("memory address out of range")
)

// Memory is the 4 KiB addressable memory of the machine.
type Memory struct {
	data [Size]byte
}

// New returns a zeroed memory with the font table installed.
func New() *Memory {
	m := &Memory{}
	m.Reset()
	return m
}

// Reset zeroes the whole address space and re-installs the font table.
func (m *Memory) Reset() {
	m.data = [Size]byte{}
	copy(m.data[FontStart:], Font[:])
}

// LoadProgram copies the program verbatim into memory starting at ProgramStart.
// Programs larger than MaxProgramSize are rejected and memory is left untouched.
func (m *Memory) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	copy(m.data[ProgramStart:], program)
	slog.Debug("Loaded program", "bytes", len(program), "start", fmt.Sprintf("0x%03X", ProgramStart))
	return nil
}

// Contains reports whether the length bytes starting at address are all addressable.
func (m *Memory) Contains(address uint16, length int) bool {
	return length >= 0 && int(address)+length <= Size
}

// Check returns ErrAddressOutOfRange if the range is not fully addressable.
func (m *Memory) Check(address uint16, length int) error {
	if !m.Contains(address, length) {
		return fmt.Errorf("%w: 0x%04X+%d", ErrAddressOutOfRange, address, length)
	}
	return nil
}

// Read returns the byte at address. The caller is responsible for bounds checking.
func (m *Memory) Read(address uint16) byte {
	return m.data[address]
}

// Write stores value at address. The caller is responsible for bounds checking.
func (m *Memory) Write(address uint16, value byte) {
	m.data[address] = value
}

// ReadWord reads the big-endian 16 bit word at address and address+1.
func (m *Memory) ReadWord(address uint16) (uint16, error) {
	if err := m.Check(address, 2); err != nil {
		return 0, err
	}
	return uint16(m.data[address])<<8 | uint16(m.data[address+1]), nil
}

// Slice returns a copy of length bytes starting at address, truncated at the end
// of the address space.
func (m *Memory) Slice(address uint16, length int) []byte {
	if int(address) >= Size || length <= 0 {
		return nil
	}
	end := int(address) + length
	if end > Size {
		end = Size
	}
	out := make([]byte, end-int(address))
	copy(out, m.data[address:end])
	return out
}
