package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/video"
)

// TakeSnapshot handles the snapshot action for backends
func TakeSnapshot(frame *video.Frame, isTestPattern bool, testPatternType int) {
	if frame == nil {
		slog.Warn("No frame data available for snapshot")
		return
	}

	baseName := "chip8_snapshot"
	if isTestPattern && testPatternType >= 0 && testPatternType < display.TestPatternCount {
		baseName = fmt.Sprintf("chip8_snapshot_%s", display.TestPatternNames[testPatternType])
	}

	if _, err := SaveFramePNGToDir(frame, baseName, ""); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}

// FrameImage renders a frame with the default palette, each CHIP-8 pixel
// becoming a scale×scale block.
func FrameImage(frame *video.Frame, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth*scale, video.FramebufferHeight*scale))
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			r, g, b := display.PixelColor(frame.At(x, y)).RGB()
			c := color.RGBA{R: r, G: g, B: b, A: display.FullAlpha}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetRGBA(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return img
}

// SaveFramePNGToDir saves a frame as PNG with a timestamp in the given
// directory, or the working directory when empty. It returns the file path.
func SaveFramePNGToDir(frame *video.Frame, baseName, directory string) (string, error) {
	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	timestamp := time.Now().Format("20060102_150405.000")
	filePath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.png", baseName, timestamp))

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, FrameImage(frame, display.DefaultPixelScale)); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", display.DefaultWindowWidth, display.DefaultWindowHeight), "format", "PNG")
	return filePath, nil
}

// WriteFrameText dumps a frame as rows of '#' (on) and '.' (off).
func WriteFrameText(w io.Writer, frame *video.Frame) error {
	var sb strings.Builder
	sb.Grow((video.FramebufferWidth + 1) * video.FramebufferHeight)
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			if frame.At(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
