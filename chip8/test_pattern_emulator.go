package chip8

import (
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

// TestPatternEmulator displays test patterns without actual emulation
type TestPatternEmulator struct {
	frameBuffer      *video.FrameBuffer
	frame            video.Frame
	patternType      int
	animationCounter int
	limiter          timing.Limiter
}

func NewTestPatternEmulator() *TestPatternEmulator {
	e := &TestPatternEmulator{
		frameBuffer: video.NewFrameBuffer(),
		limiter:     timing.NewNoOpLimiter(),
	}
	e.drawPattern(0)
	return e
}

func (e *TestPatternEmulator) RunUntilFrame() error {
	e.animationCounter++
	if e.animationCounter%display.TestPatternAnimationFrames == 0 {
		e.drawPattern(e.animationCounter / display.TestPatternAnimationFrames)
	}
	e.limiter.WaitForNextFrame()
	return nil
}

func (e *TestPatternEmulator) GetCurrentFrame() *video.Frame {
	return &e.frame
}

func (e *TestPatternEmulator) HandleAction(act action.Action, pressed bool) {
	if act == action.EmulatorTestPatternCycle && pressed {
		e.CycleTestPattern()
	}
}

func (e *TestPatternEmulator) ExtractDebugData() *debug.Data {
	return &debug.Data{
		DebuggerState: debug.DebuggerRunning,
		Frames:        uint64(e.animationCounter),
	}
}

func (e *TestPatternEmulator) CycleTestPattern() {
	e.patternType = (e.patternType + 1) % display.TestPatternCount
	e.animationCounter = 0
	e.drawPattern(0)
}

// PatternType returns the index of the pattern on screen.
func (e *TestPatternEmulator) PatternType() int {
	return e.patternType
}

// drawPattern renders the current pattern shifted by step animation steps.
func (e *TestPatternEmulator) drawPattern(step int) {
	e.frameBuffer.Clear()

	switch e.patternType {
	case 0: // Checkerboard, static
		e.fill(func(x, y int) bool {
			return ((x/display.TestPatternTileSize)+(y/display.TestPatternTileSize))%2 == 0
		})
	case 1: // Vertical stripes
		shift := step * display.TestPatternStripeSpeed
		e.fill(func(x, y int) bool {
			return ((x+shift)/display.TestPatternStripeWidth)%2 == 0
		})
	case 2: // Diagonal lines
		shift := step * display.TestPatternDiagonalSpeed
		e.fill(func(x, y int) bool {
			return ((x+y+shift)/display.TestPatternTileSize)%2 == 0
		})
	case 3: // Font sheet
		e.drawGlyphs()
	}

	e.frame = e.frameBuffer.Snapshot()
}

func (e *TestPatternEmulator) fill(on func(x, y int) bool) {
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			e.frameBuffer.SetPixel(uint(x), uint(y), on(x, y))
		}
	}
}

// drawGlyphs lays out the 16 built-in digits in two rows of eight.
func (e *TestPatternEmulator) drawGlyphs() {
	const (
		cellWidth  = 8
		cellHeight = 8
		marginY    = 8
	)

	for digit := 0; digit < 16; digit++ {
		originX := (digit%8)*cellWidth + 2
		originY := (digit/8)*cellHeight + marginY
		start := int(memory.GlyphAddress(uint8(digit)) - memory.FontStart)

		for row := 0; row < memory.GlyphSize; row++ {
			sprite := memory.Font[start+row]
			for col := uint8(0); col < 4; col++ {
				if bit.IsSet(7-col, sprite) {
					e.frameBuffer.SetPixel(uint(originX)+uint(col), uint(originY+row), true)
				}
			}
		}
	}
}

func (e *TestPatternEmulator) SetFrameLimiter(limiter timing.Limiter) {
	if limiter == nil {
		e.limiter = timing.NewNoOpLimiter()
	} else {
		e.limiter = limiter
	}
}

func (e *TestPatternEmulator) ResetFrameTiming() {
	e.limiter.Reset()
}
