package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    options
		wantErr bool
	}{
		{"rom", options{romPath: "pong.ch8", instructions: 11}, false},
		{"missing rom", options{instructions: 11}, true},
		{"test pattern needs no rom", options{testPattern: true, instructions: 11}, false},
		{"headless without frames", options{romPath: "pong.ch8", headless: true, instructions: 11}, true},
		{"headless with frames", options{romPath: "pong.ch8", headless: true, frames: 10, instructions: 11}, false},
		{"zero ipf", options{romPath: "pong.ch8"}, true},
		{"ticker limiter", options{romPath: "pong.ch8", instructions: 11, limiter: "ticker"}, false},
		{"unknown limiter", options{romPath: "pong.ch8", instructions: 11, limiter: "busy"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewBackend_Unknown(t *testing.T) {
	_, err := newBackend(options{backendName: "vga"})
	assert.Error(t, err)
}

func TestRun_Headless(t *testing.T) {
	// ADD V0, 1; JP 0x200
	vm, err := chip8.NewWithProgram([]byte{0x70, 0x01, 0x12, 0x00}, chip8.WithInstructionsPerFrame(10))
	require.NoError(t, err)

	be := headless.New(5, headless.SnapshotConfig{})
	require.NoError(t, run(vm, vm, be, backend.BackendConfig{}, true))

	assert.Equal(t, 5, be.Frames())
	assert.Equal(t, uint64(5), vm.Frames())
	assert.Equal(t, uint8(25), vm.ExtractDebugData().CPU.V[0])
}

func TestRun_HeadlessSingleFrame(t *testing.T) {
	// ADD V0, 1; JP 0x200
	vm, err := chip8.NewWithProgram([]byte{0x70, 0x01, 0x12, 0x00}, chip8.WithInstructionsPerFrame(4))
	require.NoError(t, err)

	dir := t.TempDir()
	snapshots, err := headless.CreateSnapshotConfig(1, dir, "add.ch8", true)
	require.NoError(t, err)
	be := headless.New(1, snapshots)
	require.NoError(t, run(vm, vm, be, backend.BackendConfig{}, true))

	assert.Equal(t, uint64(1), vm.Frames())
	assert.Equal(t, uint64(4), vm.Instructions())
	assert.Equal(t, uint8(2), vm.ExtractDebugData().CPU.V[0])

	texts, err := filepath.Glob(filepath.Join(dir, "add_frame_1_*.txt"))
	require.NoError(t, err)
	assert.Len(t, texts, 1)
}

// resetCountingLimiter records limiter resets.
type resetCountingLimiter struct {
	resets int
}

func (l *resetCountingLimiter) WaitForNextFrame() {}
func (l *resetCountingLimiter) Reset()            { l.resets++ }

func TestRun_ResetsFrameTimingAfterInit(t *testing.T) {
	vm, err := chip8.NewWithProgram([]byte{0x12, 0x00})
	require.NoError(t, err)
	limiter := &resetCountingLimiter{}
	vm.SetFrameLimiter(limiter)

	require.NoError(t, run(vm, vm, &scriptedBackend{}, backend.BackendConfig{}, false))

	assert.Equal(t, 1, limiter.resets)
}

func TestNewLimiter(t *testing.T) {
	tests := []struct {
		name string
		opts options
		want any
	}{
		{"headless", options{headless: true, limiter: "ticker"}, timing.NewNoOpLimiter()},
		{"default", options{}, &timing.AdaptiveLimiter{}},
		{"ticker", options{limiter: "ticker"}, &timing.TickerLimiter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newLimiter(tt.opts)
			if ticker, ok := got.(*timing.TickerLimiter); ok {
				defer ticker.Stop()
			}
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestRun_HeadlessStopsOnFault(t *testing.T) {
	vm, err := chip8.NewWithProgram([]byte{0x00, 0xEE})
	require.NoError(t, err)

	err = run(vm, vm, headless.New(5, headless.SnapshotConfig{}), backend.BackendConfig{}, true)

	assert.ErrorIs(t, err, cpu.ErrStackUnderflow)
}

// scriptedBackend replays one batch of events per Update.
type scriptedBackend struct {
	script  [][]backend.InputEvent
	updates int
	actions []action.Action
}

func (s *scriptedBackend) Init(config backend.BackendConfig) error { return nil }
func (s *scriptedBackend) Cleanup() error                         { return nil }

func (s *scriptedBackend) Update(frame *video.Frame) ([]backend.InputEvent, error) {
	s.updates++
	if s.updates > len(s.script) {
		return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
	}
	return s.script[s.updates-1], nil
}

func (s *scriptedBackend) HandleAction(act action.Action) {
	s.actions = append(s.actions, act)
}

func TestRun_RoutesActions(t *testing.T) {
	// SKNP V0 (key 0); JP 0x200; LD V1, 1; JP 0x206
	vm, err := chip8.NewWithProgram([]byte{0xE0, 0xA1, 0x12, 0x00, 0x61, 0x01, 0x12, 0x06}, chip8.WithInstructionsPerFrame(2))
	require.NoError(t, err)

	be := &scriptedBackend{script: [][]backend.InputEvent{
		{{Action: action.Key0, Type: event.Press}},
		{{Action: action.EmulatorDebugToggle, Type: event.Press}},
		{{Action: action.EmulatorPauseToggle, Type: event.Press}},
	}}

	require.NoError(t, run(vm, vm, be, backend.BackendConfig{}, false))

	data := vm.ExtractDebugData()
	assert.True(t, data.CPU.Keys[0])
	assert.Equal(t, []action.Action{action.EmulatorDebugToggle}, be.actions)
	assert.Equal(t, uint64(2), vm.Frames(), "paused on the third update")
}

func TestRun_InteractiveKeepsRunningAfterFault(t *testing.T) {
	vm, err := chip8.NewWithProgram([]byte{0xFF, 0xFF})
	require.NoError(t, err)

	be := &scriptedBackend{script: make([][]backend.InputEvent, 3)}
	require.NoError(t, run(vm, vm, be, backend.BackendConfig{}, false))

	assert.Equal(t, 4, be.updates)
	assert.Error(t, vm.Fault())
}
