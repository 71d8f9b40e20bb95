package debug

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/video"
)

type fakeMemory [MemorySize]byte

func (m *fakeMemory) ReadMemory(addr uint16, length int) []byte {
	end := int(addr) + length
	if end > MemorySize {
		end = MemorySize
	}
	out := make([]byte, end-int(addr))
	copy(out, m[addr:end])
	return out
}

func TestExtractMemoryWindow(t *testing.T) {
	mem := &fakeMemory{}
	for i := range mem {
		mem[i] = byte(i)
	}

	tests := []struct {
		name      string
		addr      uint16
		size      int
		wantStart uint16
		wantLen   int
	}{
		{"centred on pc", 0x220, 32, 0x210, 32},
		{"clamped at start", 0x004, 32, 0x000, 32},
		{"clamped at end", 0xFFE, 32, 0xFE0, 32},
		{"aligned to even address", 0x221, 32, 0x210, 32},
		{"oversized window", 0x200, 0x2000, 0x000, MemorySize},
		{"empty window", 0x200, 0, 0x200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := ExtractMemoryWindow(mem, tt.addr, tt.size)
			assert.Equal(t, tt.wantStart, snap.StartAddr)
			assert.Len(t, snap.Bytes, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, byte(tt.wantStart), snap.Bytes[0])
			}
		})
	}
}

func TestDebuggerStateString(t *testing.T) {
	assert.Equal(t, "running", DebuggerRunning.String())
	assert.Equal(t, "paused", DebuggerPaused.String())
	assert.Equal(t, "halted", DebuggerHalted.String())
	assert.Equal(t, "unknown", DebuggerState(99).String())
}

func testFrame() *video.Frame {
	fb := video.NewFrameBuffer()
	fb.SetPixel(0, 0, true)
	fb.SetPixel(63, 31, true)
	frame := fb.Snapshot()
	return &frame
}

func TestWriteFrameText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrameText(&buf, testFrame()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, video.FramebufferHeight)
	assert.Equal(t, "#"+strings.Repeat(".", 63), lines[0])
	assert.Equal(t, strings.Repeat(".", 63)+"#", lines[31])
	assert.Equal(t, strings.Repeat(".", 64), lines[10])
}

func TestFrameImage(t *testing.T) {
	img := FrameImage(testFrame(), 2)

	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())

	r, g, b := display.PixelOnColor.RGB()
	on := img.RGBAAt(1, 1)
	assert.Equal(t, []uint8{r, g, b, 255}, []uint8{on.R, on.G, on.B, on.A})

	r, g, b = display.PixelOffColor.RGB()
	off := img.RGBAAt(2, 0)
	assert.Equal(t, []uint8{r, g, b, 255}, []uint8{off.R, off.G, off.B, off.A})
}

func TestSaveFramePNGToDir(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveFramePNGToDir(testFrame(), "test", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "test_"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, display.DefaultWindowWidth, img.Bounds().Dx())
	assert.Equal(t, display.DefaultWindowHeight, img.Bounds().Dy())
}

func TestSaveFramePNGToDir_MissingDirectory(t *testing.T) {
	_, err := SaveFramePNGToDir(testFrame(), "test", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
