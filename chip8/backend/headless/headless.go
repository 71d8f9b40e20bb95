package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend implements the Backend interface for automated testing and batch processing
type Backend struct {
	config         backend.BackendConfig
	frameCount     int
	maxFrames      int
	started        bool
	snapshotConfig SnapshotConfig
	beeps          int
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	ROMName   string // ROM name for snapshot filenames
	Text      bool   // Also write a text dump next to each PNG
}

func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	h.config = config

	if config.TestPattern {
		slog.Info("Headless test pattern mode, exiting after the first frame")
		return nil
	}

	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	level := slog.LevelInfo
	if config.ShowDebug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return nil
}

// Update processes a frame and handles snapshots. The first call sees the
// frame before any emulation ran, so it is not counted: the quit event comes
// with the Update that follows frame maxFrames.
func (h *Backend) Update(frame *video.Frame) ([]backend.InputEvent, error) {
	quit := []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}

	if h.config.TestPattern {
		return quit, nil
	}

	if !h.started {
		h.started = true
		return nil, nil
	}

	h.frameCount++

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	if h.frameCount%60 == 0 {
		slog.Debug("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.maxFrames > 0 && h.frameCount >= h.maxFrames {
		// final snapshot unless one was just saved
		if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot(frame)
		}

		if h.snapshotConfig.Enabled {
			slog.Info("Headless execution completed", "frames", h.frameCount, "beeps", h.beeps, "png_snapshots_saved_to", h.snapshotConfig.Directory)
		} else {
			slog.Info("Headless execution completed", "frames", h.frameCount, "beeps", h.beeps)
		}

		return quit, nil
	}

	return nil, nil
}

// Beep counts sound timer expirations for the completion log.
func (h *Backend) Beep() {
	h.beeps++
}

// Frames returns how many emulated frames were processed.
func (h *Backend) Frames() int {
	return h.frameCount
}

func (h *Backend) Cleanup() error {
	return nil
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, romPath string, text bool) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
		Text:     text,
	}

	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "chip8-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	config.ROMName = strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
	if config.ROMName == "" || config.ROMName == "." {
		config.ROMName = "chip8"
	}

	return config, nil
}

// saveSnapshot saves a PNG (and optionally text) snapshot for the current frame
func (h *Backend) saveSnapshot(frame *video.Frame) {
	baseName := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.ROMName, h.frameCount)

	pngPath, err := debug.SaveFramePNGToDir(frame, baseName, h.snapshotConfig.Directory)
	if err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
		return
	}

	if !h.snapshotConfig.Text {
		return
	}

	textPath := strings.TrimSuffix(pngPath, ".png") + ".txt"
	f, err := os.Create(textPath)
	if err != nil {
		slog.Error("Failed to save text snapshot", "frame", h.frameCount, "error", err)
		return
	}
	defer f.Close()

	if err := debug.WriteFrameText(f, frame); err != nil {
		slog.Error("Failed to save text snapshot", "frame", h.frameCount, "error", err)
	}
}
