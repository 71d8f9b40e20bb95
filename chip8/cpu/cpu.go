package cpu

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-chip8/chip8/audio"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	RegisterCount = 16
	StackSize     = 16
	flagRegister  = 0xF
	opcodeSize    = 2
)

// CPU holds the whole machine state: registers, stack, timers, memory,
// keypad and display. It is not safe for concurrent use.
type CPU struct {
	// registers
	v  [RegisterCount]uint8
	i  uint16
	pc uint16
	sp uint8

	stack [StackSize]uint16

	// timers
	dt uint8
	st uint8

	mem     *memory.Memory
	display *video.FrameBuffer
	keys    *input.Keypad

	rng    RandomSource
	buzzer audio.Buzzer

	// metadata
	currentOpcode uint16
	cycles        uint64
	fault         *Fault
}

// Option configures optional collaborators of the CPU.
type Option func(*CPU)

// WithRandomSource replaces the process-wide generator used by RND.
func WithRandomSource(rng RandomSource) Option {
	return func(c *CPU) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithBuzzer registers the sink notified when the sound timer runs out.
func WithBuzzer(b audio.Buzzer) Option {
	return func(c *CPU) {
		c.buzzer = b
	}
}

// New returns a zeroed machine with the font installed and PC at 0x200.
func New(opts ...Option) *CPU {
	c := &CPU{
		mem:     memory.New(),
		display: video.NewFrameBuffer(),
		keys:    input.NewKeypad(),
		rng:     NewSystemRandom(),
		pc:      memory.ProgramStart,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset restores the state New returns, dropping any loaded program.
// The random source and buzzer are kept.
func (c *CPU) Reset() {
	c.v = [RegisterCount]uint8{}
	c.i = 0
	c.pc = memory.ProgramStart
	c.sp = 0
	c.stack = [StackSize]uint16{}
	c.dt = 0
	c.st = 0
	c.currentOpcode = 0
	c.cycles = 0
	c.fault = nil

	c.mem.Reset()
	c.display.Clear()
	c.keys.Reset()

	slog.Debug("CPU reset")
}

// LoadProgram copies a ROM image to 0x200. Registers are not touched.
func (c *CPU) LoadProgram(program []byte) error {
	return c.mem.LoadProgram(program)
}

// SetKey latches the pressed state of a keypad key (0x0-0xF).
func (c *CPU) SetKey(key uint8, pressed bool) error {
	return c.keys.Set(key, pressed)
}

// Framebuffer returns a copy of the display.
func (c *CPU) Framebuffer() video.Frame {
	return c.display.Snapshot()
}

// Tick fetches, decodes and executes exactly one instruction.
func (c *CPU) Tick() error {
	if c.fault != nil {
		return c.fault
	}

	address := c.pc
	opcode, err := c.fetch()
	if err != nil {
		return c.raise(address, 0, err)
	}
	c.currentOpcode = opcode

	// opcodes matching no pattern decode to OpInvalid, whose handler fails
	ins, _ := Decode(opcode)
	if err := opcodes[ins.Kind](c, ins); err != nil {
		return c.raise(address, opcode, err)
	}

	c.cycles++
	return nil
}

// fetch reads the big endian word at PC and advances PC past it.
func (c *CPU) fetch() (uint16, error) {
	opcode, err := c.mem.ReadWord(c.pc)
	if err != nil {
		return 0, err
	}
	c.pc += opcodeSize
	return opcode, nil
}

func (c *CPU) raise(address, opcode uint16, err error) error {
	c.fault = &Fault{PC: address, Opcode: opcode, Err: err}
	slog.Error("CPU fault", "pc", fmt.Sprintf("0x%03X", address), "opcode", fmt.Sprintf("0x%04X", opcode), "error", err)
	return c.fault
}

func (c *CPU) skip() {
	c.pc += opcodeSize
}

func (c *CPU) pushStack(address uint16) error {
	if int(c.sp) >= StackSize {
		return ErrStackOverflow
	}
	c.stack[c.sp] = address
	c.sp++
	return nil
}

func (c *CPU) popStack() (uint16, error) {
	if c.sp == 0 {
		return 0, ErrStackUnderflow
	}
	c.sp--
	return c.stack[c.sp], nil
}

func (c *CPU) setFlag(condition bool) {
	if condition {
		c.v[flagRegister] = 1
		return
	}
	c.v[flagRegister] = 0
}

// Debug getter methods for register display
func (c *CPU) GetV(index uint8) uint8 { return c.v[index&0xF] }
func (c *CPU) GetI() uint16           { return c.i }
func (c *CPU) GetPC() uint16          { return c.pc }
func (c *CPU) GetSP() uint8           { return c.sp }
func (c *CPU) GetDT() uint8           { return c.dt }
func (c *CPU) GetST() uint8           { return c.st }
func (c *CPU) GetCycles() uint64      { return c.cycles }
func (c *CPU) GetOpcode() uint16      { return c.currentOpcode }

// GetRegisters returns a copy of V0-VF.
func (c *CPU) GetRegisters() [RegisterCount]uint8 { return c.v }

// GetStack returns the active part of the call stack, oldest entry first.
func (c *CPU) GetStack() []uint16 {
	out := make([]uint16, c.sp)
	copy(out, c.stack[:c.sp])
	return out
}

// GetKeys returns a copy of the keypad latches.
func (c *CPU) GetKeys() [input.KeyCount]bool { return c.keys.State() }

// ReadMemory returns a copy of up to length bytes starting at address.
func (c *CPU) ReadMemory(address uint16, length int) []byte {
	return c.mem.Slice(address, length)
}

// Fault returns the latched fatal error, or nil while the CPU is healthy.
func (c *CPU) Fault() error {
	if c.fault == nil {
		return nil
	}
	return c.fault
}
