package chip8

import (
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

// Emulator is the interface for all emulator implementations
type Emulator interface {
	// RunUntilFrame advances emulation by one 60 Hz frame.
	RunUntilFrame() error
	// GetCurrentFrame returns the last completed frame. The frame is a copy
	// owned by the emulator and is overwritten by the next RunUntilFrame.
	GetCurrentFrame() *video.Frame
	HandleAction(act action.Action, pressed bool)
	ExtractDebugData() *debug.Data
	SetFrameLimiter(limiter timing.Limiter)
	// ResetFrameTiming restarts frame pacing from now.
	ResetFrameTiming()
}

var (
	_ Emulator = (*VM)(nil)
	_ Emulator = (*TestPatternEmulator)(nil)
)
