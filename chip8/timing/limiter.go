package timing

import "time"

// Limiter paces the emulation loop to the display refresh rate.
type Limiter interface {
	// WaitForNextFrame blocks until the next frame is due.
	// It returns immediately when the loop is behind schedule.
	WaitForNextFrame()

	// Reset drops accumulated timing state, e.g. after a pause.
	Reset()
}

// NewNoOpLimiter returns a limiter that never waits, used by headless runs.
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

const (
	// TimerFrequency is the rate in Hz at which DT and ST count down. One
	// emulated frame corresponds to one timer tick.
	TimerFrequency = 60

	// DefaultInstructionsPerFrame gives roughly 660 instructions per second.
	DefaultInstructionsPerFrame = 11
)

// FrameDuration returns the wall clock length of one frame.
func FrameDuration() time.Duration {
	return time.Second / TimerFrequency
}

// InstructionsPerSecond converts a per-frame instruction budget to a clock rate.
func InstructionsPerSecond(perFrame int) int {
	return perFrame * TimerFrequency
}
