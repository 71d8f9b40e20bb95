package display

import "github.com/valerio/go-chip8/chip8/video"

// RGBA pixel format constants
const (
	// RGBABytesPerPixel is the number of bytes per pixel in RGBA format
	RGBABytesPerPixel = 4
	// FullAlpha is the alpha value for fully opaque pixels
	FullAlpha = 255
)

// Backend scaling and window constants
const (
	// DefaultPixelScale is the default scaling factor for CHIP-8 pixels
	DefaultPixelScale = 10
	// DefaultWindowWidth is the default window width (64 * scale)
	DefaultWindowWidth = video.FramebufferWidth * DefaultPixelScale // 640
	// DefaultWindowHeight is the default window height (32 * scale)
	DefaultWindowHeight = video.FramebufferHeight * DefaultPixelScale // 320
)

// Color is a packed 0xRRGGBB value.
type Color uint32

// Default palette, a phosphor green on near black.
const (
	PixelOnColor  Color = 0x33FF66
	PixelOffColor Color = 0x0A0F0A
)

// RGB splits a packed color into its components.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// PixelColor maps a framebuffer bit to the palette.
func PixelColor(on bool) Color {
	if on {
		return PixelOnColor
	}
	return PixelOffColor
}

// Test pattern constants
const (
	// TestPatternCount is the number of available test patterns
	TestPatternCount = 4
	// TestPatternTileSize is the size of tiles for checkerboard and diagonal patterns
	TestPatternTileSize = 4
	// TestPatternStripeWidth is the width of stripes in the stripe pattern
	TestPatternStripeWidth = 2
	// TestPatternAnimationFrames is the number of frames between test pattern animations
	TestPatternAnimationFrames = 15
	// TestPatternStripeSpeed is the animation speed for stripe patterns
	TestPatternStripeSpeed = 1
	// TestPatternDiagonalSpeed is the animation speed for diagonal patterns
	TestPatternDiagonalSpeed = 2
)

// TestPatternNames are used in snapshot file names, indexed by pattern.
var TestPatternNames = [TestPatternCount]string{"checkerboard", "stripes", "diagonal", "glyphs"}
