package chip8

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/audio"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/memory"
)

// countLoop increments V0 forever: 0x200 ADD V0, 1; 0x202 JP 0x200
var countLoop = []byte{0x70, 0x01, 0x12, 0x00}

type countingLimiter struct {
	waits  int
	resets int
}

func (l *countingLimiter) WaitForNextFrame() { l.waits++ }
func (l *countingLimiter) Reset()            { l.resets++ }

func TestNewWithProgram(t *testing.T) {
	vm, err := NewWithProgram([]byte{0x60, 0x0A, 0x61, 0x05, 0x80, 0x14}, WithInstructionsPerFrame(3))
	require.NoError(t, err)

	require.NoError(t, vm.RunUntilFrame())

	data := vm.ExtractDebugData()
	assert.Equal(t, uint8(15), data.CPU.V[0])
	assert.Equal(t, uint8(0), data.CPU.V[0xF])
	assert.Equal(t, uint16(0x206), data.CPU.PC)
	assert.Equal(t, uint64(1), vm.Frames())
	assert.Equal(t, uint64(3), vm.Instructions())
}

func TestNewWithProgram_TooLarge(t *testing.T) {
	_, err := NewWithProgram(make([]byte, memory.MaxProgramSize+1))
	assert.ErrorIs(t, err, memory.ErrProgramTooLarge)
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.ch8")
	require.NoError(t, os.WriteFile(path, countLoop, 0o644))

	vm, err := NewWithFile(path, WithInstructionsPerFrame(10))
	require.NoError(t, err)
	require.NoError(t, vm.RunUntilFrame())

	assert.Equal(t, uint8(5), vm.ExtractDebugData().CPU.V[0])
}

func TestNewWithFile_Missing(t *testing.T) {
	_, err := NewWithFile(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunUntilFrame_TicksTimersOncePerFrame(t *testing.T) {
	// LD V0, 10; LD DT, V0; LD ST, V0; JP 0x206
	program := []byte{0x60, 0x0A, 0xF0, 0x15, 0xF0, 0x18, 0x12, 0x06}
	buzzer := audio.NewLogBuzzer()
	vm, err := NewWithProgram(program, WithInstructionsPerFrame(20), WithBuzzer(buzzer))
	require.NoError(t, err)

	require.NoError(t, vm.RunUntilFrame())
	data := vm.ExtractDebugData()
	assert.Equal(t, uint8(9), data.CPU.DT)
	assert.Equal(t, uint8(9), data.CPU.ST)

	for i := 0; i < 9; i++ {
		require.NoError(t, vm.RunUntilFrame())
	}
	data = vm.ExtractDebugData()
	assert.Equal(t, uint8(0), data.CPU.DT)
	assert.Equal(t, uint8(0), data.CPU.ST)
	assert.Equal(t, uint64(1), buzzer.Count())
}

func TestRunUntilFrame_UsesLimiter(t *testing.T) {
	limiter := &countingLimiter{}
	vm, err := NewWithProgram(countLoop, WithLimiter(limiter))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, vm.RunUntilFrame())
	}

	assert.Equal(t, 3, limiter.waits)
}

func TestRunUntilFrame_FrameIsACopy(t *testing.T) {
	// LD I, font 0; DRW V0, V0, 5; JP 0x204
	vm, err := NewWithProgram([]byte{0xA0, 0x00, 0xD0, 0x05, 0x12, 0x04})
	require.NoError(t, err)
	require.NoError(t, vm.RunUntilFrame())

	frame := vm.GetCurrentFrame()
	require.True(t, frame.At(0, 0))

	frame[0] = false
	assert.True(t, vm.cpu.Framebuffer().At(0, 0), "hosts cannot reach machine state through the frame")
}

func TestRunUntilFrame_FaultHalts(t *testing.T) {
	// LD V0, 1; then an invalid opcode
	vm, err := NewWithProgram([]byte{0x60, 0x01, 0xFF, 0xFF, 0x60, 0x02})
	require.NoError(t, err)

	err = vm.RunUntilFrame()
	require.Error(t, err)

	var opErr *cpu.OpcodeError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, uint16(0x202), opErr.Address)
	assert.Equal(t, debug.DebuggerHalted, vm.State())
	assert.Equal(t, uint64(0), vm.Frames())
	assert.Equal(t, uint64(1), vm.Instructions())

	assert.Equal(t, err, vm.RunUntilFrame(), "the fault is reported again")
	data := vm.ExtractDebugData()
	assert.NotEmpty(t, data.Fault)
	assert.Equal(t, uint8(1), data.CPU.V[0])

	vm.TogglePause()
	assert.Equal(t, debug.DebuggerHalted, vm.State(), "pause does not clear a halt")

	vm.HandleAction(action.EmulatorReset, true)
	assert.Equal(t, debug.DebuggerRunning, vm.State())
	assert.NoError(t, vm.Fault())
}

func TestPauseAndStep(t *testing.T) {
	vm, err := NewWithProgram(countLoop, WithInstructionsPerFrame(4))
	require.NoError(t, err)

	vm.HandleAction(action.EmulatorPauseToggle, true)
	require.Equal(t, debug.DebuggerPaused, vm.State())

	require.NoError(t, vm.RunUntilFrame())
	assert.Equal(t, uint64(0), vm.Instructions(), "paused VM does not execute")

	vm.HandleAction(action.EmulatorStepInstruction, true)
	require.NoError(t, vm.RunUntilFrame())
	assert.Equal(t, uint64(1), vm.Instructions())
	assert.Equal(t, uint64(0), vm.Frames())
	assert.Equal(t, debug.DebuggerPaused, vm.State())

	vm.HandleAction(action.EmulatorStepFrame, true)
	require.NoError(t, vm.RunUntilFrame())
	assert.Equal(t, uint64(5), vm.Instructions())
	assert.Equal(t, uint64(1), vm.Frames())
	assert.Equal(t, debug.DebuggerPaused, vm.State())

	vm.HandleAction(action.EmulatorPauseToggle, true)
	require.NoError(t, vm.RunUntilFrame())
	assert.Equal(t, uint64(9), vm.Instructions())
	assert.Equal(t, debug.DebuggerRunning, vm.State())
}

func TestStepIgnoredWhileRunning(t *testing.T) {
	vm, err := NewWithProgram(countLoop, WithInstructionsPerFrame(4))
	require.NoError(t, err)

	vm.HandleAction(action.EmulatorStepInstruction, true)
	assert.Equal(t, debug.DebuggerRunning, vm.State())

	require.NoError(t, vm.RunUntilFrame())
	assert.Equal(t, uint64(4), vm.Instructions())
}

func TestReleaseIgnoredForControls(t *testing.T) {
	vm := New()
	vm.HandleAction(action.EmulatorPauseToggle, false)
	assert.Equal(t, debug.DebuggerRunning, vm.State())
}

func TestReset_ReloadsProgram(t *testing.T) {
	limiter := &countingLimiter{}
	vm, err := NewWithProgram(countLoop, WithInstructionsPerFrame(10), WithLimiter(limiter))
	require.NoError(t, err)
	require.NoError(t, vm.RunUntilFrame())
	require.Equal(t, uint8(5), vm.ExtractDebugData().CPU.V[0])

	vm.Reset()

	data := vm.ExtractDebugData()
	assert.Equal(t, uint8(0), data.CPU.V[0])
	assert.Equal(t, uint16(0x200), data.CPU.PC)
	assert.Equal(t, uint64(0), vm.Frames())
	assert.Equal(t, 1, limiter.resets)

	require.NoError(t, vm.RunUntilFrame())
	assert.Equal(t, uint8(5), vm.ExtractDebugData().CPU.V[0])
}

func TestKeyActions(t *testing.T) {
	// 0x200 SKP V0; 0x202 JP 0x200; 0x204 LD V1, 1; 0x206 JP 0x206
	program := []byte{0xE0, 0x9E, 0x12, 0x00, 0x61, 0x01, 0x12, 0x06}
	vm, err := NewWithProgram(program, WithInstructionsPerFrame(2))
	require.NoError(t, err)

	require.NoError(t, vm.RunUntilFrame())
	assert.Equal(t, uint8(0), vm.ExtractDebugData().CPU.V[1])

	vm.HandleAction(action.Key0, true)
	assert.True(t, vm.ExtractDebugData().CPU.Keys[0x0])
	require.NoError(t, vm.RunUntilFrame())
	assert.Equal(t, uint8(1), vm.ExtractDebugData().CPU.V[1])

	vm.HandleAction(action.Key0, false)
	assert.False(t, vm.ExtractDebugData().CPU.Keys[0x0])

	assert.Error(t, vm.SetKey(0x10, true))
}

func TestSeedIsDeterministic(t *testing.T) {
	// RND V0, 0xFF; RND V1, 0xFF; JP 0x204
	program := []byte{0xC0, 0xFF, 0xC1, 0xFF, 0x12, 0x04}

	a, err := NewWithProgram(program, WithSeed(7))
	require.NoError(t, err)
	b, err := NewWithProgram(program, WithSeed(7))
	require.NoError(t, err)

	require.NoError(t, a.RunUntilFrame())
	require.NoError(t, b.RunUntilFrame())

	assert.Equal(t, a.ExtractDebugData().CPU.V, b.ExtractDebugData().CPU.V)
}

func TestWithRandomSource(t *testing.T) {
	vm, err := NewWithProgram([]byte{0xC3, 0x0F, 0x12, 0x02},
		WithRandomSource(cpu.RandomFunc(func() uint8 { return 0x5A })))
	require.NoError(t, err)

	require.NoError(t, vm.RunUntilFrame())

	assert.Equal(t, uint8(0x0A), vm.ExtractDebugData().CPU.V[3])
}

func TestExtractDebugData(t *testing.T) {
	vm, err := NewWithProgram(countLoop)
	require.NoError(t, err)

	data := vm.ExtractDebugData()

	require.NotNil(t, data.CPU)
	require.NotNil(t, data.Memory)
	assert.Equal(t, "7001 ADD Vx, byte", data.CPU.Instruction)
	assert.Equal(t, debug.DebuggerRunning, data.DebuggerState)
	assert.Len(t, data.Memory.Bytes, debug.DefaultWindowSize)
	assert.Equal(t, uint16(0x1F0), data.Memory.StartAddr)
	assert.Equal(t, countLoop, data.Memory.Bytes[0x10:0x14])
	assert.Empty(t, data.Fault)
}
