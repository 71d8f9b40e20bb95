package chip8

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/go-chip8/chip8/audio"
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

// VM drives a CPU in 60 Hz frames: a fixed number of instruction ticks
// followed by one timer tick. It adds pause and single stepping on top.
type VM struct {
	cpu     *cpu.CPU
	program []byte

	frame                video.Frame
	instructionsPerFrame int
	limiter              timing.Limiter
	state                debug.DebuggerState

	frames       uint64
	instructions uint64
}

type config struct {
	instructionsPerFrame int
	limiter              timing.Limiter
	cpuOpts              []cpu.Option
}

// Option configures a VM.
type Option func(*config)

// WithInstructionsPerFrame sets how many instructions run per 60 Hz frame.
// Values below 1 are ignored.
func WithInstructionsPerFrame(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.instructionsPerFrame = n
		}
	}
}

// WithSeed makes RND deterministic. A zero seed keeps the system generator.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		if seed != 0 {
			c.cpuOpts = append(c.cpuOpts, cpu.WithRandomSource(cpu.NewSeededRandom(seed)))
		}
	}
}

// WithRandomSource injects the generator used by RND.
func WithRandomSource(rng cpu.RandomSource) Option {
	return func(c *config) {
		c.cpuOpts = append(c.cpuOpts, cpu.WithRandomSource(rng))
	}
}

// WithBuzzer registers the sink notified when the sound timer runs out.
func WithBuzzer(b audio.Buzzer) Option {
	return func(c *config) {
		c.cpuOpts = append(c.cpuOpts, cpu.WithBuzzer(b))
	}
}

// WithLimiter paces RunUntilFrame. The default never waits.
func WithLimiter(l timing.Limiter) Option {
	return func(c *config) {
		c.limiter = l
	}
}

// New creates a VM with no program loaded.
func New(opts ...Option) *VM {
	cfg := config{
		instructionsPerFrame: timing.DefaultInstructionsPerFrame,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	vm := &VM{
		cpu:                  cpu.New(cfg.cpuOpts...),
		instructionsPerFrame: cfg.instructionsPerFrame,
	}
	vm.SetFrameLimiter(cfg.limiter)
	vm.refreshFrame()
	return vm
}

// NewWithProgram creates a VM and loads program at 0x200.
func NewWithProgram(program []byte, opts ...Option) (*VM, error) {
	vm := New(opts...)
	if err := vm.LoadProgram(program); err != nil {
		return nil, err
	}
	return vm, nil
}

// NewWithFile creates a VM and loads the ROM at path into it.
func NewWithFile(path string, opts ...Option) (*VM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM: %w", err)
	}

	slog.Info("Loaded ROM", "path", path, "bytes", len(data))

	return NewWithProgram(data, opts...)
}

// LoadProgram loads a ROM image. It is kept so Reset can reload it.
func (vm *VM) LoadProgram(program []byte) error {
	if err := vm.cpu.LoadProgram(program); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}
	vm.program = append([]byte(nil), program...)
	return nil
}

// RunUntilFrame runs one frame worth of instructions and ticks the timers
// once. While paused it only waits for the limiter. A fault stops the frame
// early, halts the VM and is returned on every later call until Reset.
func (vm *VM) RunUntilFrame() error {
	switch vm.state {
	case debug.DebuggerHalted:
		vm.limiter.WaitForNextFrame()
		return vm.cpu.Fault()
	case debug.DebuggerPaused:
		vm.limiter.WaitForNextFrame()
		return nil
	case debug.DebuggerStepInstruction:
		vm.state = debug.DebuggerPaused
		err := vm.step()
		vm.refreshFrame()
		return err
	case debug.DebuggerStepFrame:
		vm.state = debug.DebuggerPaused
	}

	for i := 0; i < vm.instructionsPerFrame; i++ {
		if err := vm.step(); err != nil {
			vm.refreshFrame()
			return err
		}
	}

	vm.cpu.TickTimers()
	vm.frames++
	vm.refreshFrame()
	vm.limiter.WaitForNextFrame()
	return nil
}

func (vm *VM) step() error {
	if err := vm.cpu.Tick(); err != nil {
		vm.state = debug.DebuggerHalted
		return err
	}
	vm.instructions++
	return nil
}

func (vm *VM) refreshFrame() {
	vm.frame = vm.cpu.Framebuffer()
}

// GetCurrentFrame returns the frame produced by the last RunUntilFrame.
func (vm *VM) GetCurrentFrame() *video.Frame {
	return &vm.frame
}

// SetKey implements input.KeySetter.
func (vm *VM) SetKey(key uint8, pressed bool) error {
	return vm.cpu.SetKey(key, pressed)
}

// HandleAction applies keypad and emulator control actions.
func (vm *VM) HandleAction(act action.Action, pressed bool) {
	if key, ok := act.Key(); ok {
		if err := vm.SetKey(key, pressed); err != nil {
			slog.Warn("Failed to latch key", "key", key, "error", err)
		}
		return
	}

	if !pressed {
		return
	}

	switch act {
	case action.EmulatorPauseToggle:
		vm.TogglePause()
	case action.EmulatorStepFrame:
		vm.requestStep(debug.DebuggerStepFrame)
	case action.EmulatorStepInstruction:
		vm.requestStep(debug.DebuggerStepInstruction)
	case action.EmulatorReset:
		vm.Reset()
	}
}

// TogglePause switches between running and paused. A halted VM stays halted.
func (vm *VM) TogglePause() {
	switch vm.state {
	case debug.DebuggerHalted:
		return
	case debug.DebuggerRunning:
		vm.state = debug.DebuggerPaused
	default:
		vm.state = debug.DebuggerRunning
	}
	vm.limiter.Reset()
	slog.Info("Pause toggled", "state", vm.state)
}

func (vm *VM) requestStep(step debug.DebuggerState) {
	if vm.state != debug.DebuggerPaused {
		slog.Debug("Step ignored, VM is not paused", "state", vm.state)
		return
	}
	vm.state = step
}

// Reset restores power-on state, reloads the last program and resumes a
// halted VM. Pause is kept.
func (vm *VM) Reset() {
	vm.cpu.Reset()
	if len(vm.program) > 0 {
		// the program fitted before, it still fits
		_ = vm.cpu.LoadProgram(vm.program)
	}
	if vm.state != debug.DebuggerPaused {
		vm.state = debug.DebuggerRunning
	}
	vm.frames = 0
	vm.instructions = 0
	vm.refreshFrame()
	vm.limiter.Reset()
	slog.Info("VM reset", "program_bytes", len(vm.program))
}

func (vm *VM) SetFrameLimiter(limiter timing.Limiter) {
	if limiter == nil {
		vm.limiter = timing.NewNoOpLimiter()
	} else {
		vm.limiter = limiter
	}
}

func (vm *VM) ResetFrameTiming() {
	vm.limiter.Reset()
}

// Frames returns the number of completed frames since the last reset.
func (vm *VM) Frames() uint64 { return vm.frames }

// Instructions returns the number of executed instructions since the last reset.
func (vm *VM) Instructions() uint64 { return vm.instructions }

// State returns the debugger state.
func (vm *VM) State() debug.DebuggerState { return vm.state }

// Fault returns the latched fatal error, or nil.
func (vm *VM) Fault() error { return vm.cpu.Fault() }

// ExtractDebugData snapshots registers, stack, timers, keys and the memory
// around PC.
func (vm *VM) ExtractDebugData() *debug.Data {
	c := vm.cpu
	pc := c.GetPC()

	state := &debug.CPUState{
		V:      c.GetRegisters(),
		I:      c.GetI(),
		PC:     pc,
		SP:     c.GetSP(),
		Stack:  c.GetStack(),
		DT:     c.GetDT(),
		ST:     c.GetST(),
		Keys:   c.GetKeys(),
		Cycles: c.GetCycles(),
		Opcode: c.GetOpcode(),
	}
	if word := c.ReadMemory(pc, 2); len(word) == 2 {
		ins, _ := cpu.Decode(bit.Combine(word[0], word[1]))
		state.Instruction = ins.String()
	}

	data := &debug.Data{
		CPU:           state,
		Memory:        debug.ExtractMemoryWindow(c, pc, debug.DefaultWindowSize),
		DebuggerState: vm.state,
		Frames:        vm.frames,
	}
	if err := c.Fault(); err != nil {
		data.Fault = err.Error()
	}
	return data
}
