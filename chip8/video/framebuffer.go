package video

const (
	FramebufferWidth  = 64
	FramebufferHeight = 32
	FramebufferSize   = FramebufferWidth * FramebufferHeight
)

// Frame is an immutable copy of the display, row-major, indexed as x + 64*y.
type Frame [FramebufferSize]bool

// At returns whether the pixel at (x, y) is on.
func (f *Frame) At(x, y int) bool {
	return f[y*FramebufferWidth+x]
}

// Lit returns the number of pixels that are on.
func (f *Frame) Lit() int {
	count := 0
	for _, on := range f {
		if on {
			count++
		}
	}
	return count
}

// FrameBuffer is the 64x32 monochrome display.
type FrameBuffer struct {
	buffer Frame
}

// NewFrameBuffer creates an all-off frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Clear turns every pixel off.
func (fb *FrameBuffer) Clear() {
	fb.buffer = Frame{}
}

// GetPixel returns whether the pixel at (x, y) is on. Coordinates wrap around.
func (fb *FrameBuffer) GetPixel(x, y uint) bool {
	return fb.buffer[index(x, y)]
}

// SetPixel sets the pixel at (x, y). Coordinates wrap around.
func (fb *FrameBuffer) SetPixel(x, y uint, on bool) {
	fb.buffer[index(x, y)] = on
}

// Flip XORs the pixel at (x, y) and reports whether it was turned off.
// Coordinates wrap around both axes.
func (fb *FrameBuffer) Flip(x, y uint) (erased bool) {
	i := index(x, y)
	erased = fb.buffer[i]
	fb.buffer[i] = !fb.buffer[i]
	return erased
}

// Snapshot returns a copy of the current display contents.
func (fb *FrameBuffer) Snapshot() Frame {
	return fb.buffer
}

func index(x, y uint) uint {
	return (y%FramebufferHeight)*FramebufferWidth + x%FramebufferWidth
}
