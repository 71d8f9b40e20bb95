package backend

import (
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend represents a complete emulator platform (rendering + input + buzzer)
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, SDL window, etc.)
// - Translating platform-specific input events to Actions
// - Handling backend-specific features (snapshots, debug panels)
//
// Backends that can make a sound also implement audio.Buzzer.
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling Update.
	Init(config BackendConfig) error

	// Update polls platform events and renders the provided frame.
	// The returned events are fed to the input manager by the caller.
	// The frame is owned by the emulator and must not be retained.
	Update(frame *video.Frame) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// InputEvent is a host input translated to an emulator action.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// DebugDataProvider supplies machine state to debug panels.
type DebugDataProvider func() *debug.Data

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title       string
	Scale       int
	ShowDebug   bool             // Backends may ignore unsupported features
	TestPattern bool             // Display test pattern instead of emulation
	Callbacks   BackendCallbacks // Callbacks for backend communication
	DebugData   DebugDataProvider
}

// BackendCallbacks allows backends to communicate with the emulator
type BackendCallbacks struct {
	// OnQuit is called when the backend requests shutdown (e.g., window close).
	OnQuit func()
}
