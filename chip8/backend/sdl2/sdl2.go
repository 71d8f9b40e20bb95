//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	audioFrequency = 44100
	toneFrequency  = 440
	toneSamples    = audioFrequency / 10 // 100ms
	toneVolume     = 24
)

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed backend, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	audio    sdl.AudioDeviceID
	tone     []byte
	running  bool
	config   backend.BackendConfig
	events   []backend.InputEvent
	pixels   []byte

	currentFrame *video.Frame
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config

	scale := config.Scale
	if scale <= 0 {
		scale = display.DefaultPixelScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*scale),
		int32(video.FramebufferHeight*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture
	s.pixels = make([]byte, video.FramebufferSize*display.RGBABytesPerPixel)

	if err := s.openAudio(); err != nil {
		slog.Warn("Audio unavailable, buzzer disabled", "error", err)
	}

	s.running = true
	slog.Info("SDL2 backend initialized", "scale", scale, "test_pattern", config.TestPattern)
	return nil
}

func (s *Backend) openAudio() error {
	spec := &sdl.AudioSpec{
		Freq:     audioFrequency,
		Format:   sdl.AUDIO_S8,
		Channels: 1,
		Samples:  2048,
	}
	dev, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		return err
	}
	s.audio = dev

	// square wave
	period := audioFrequency / toneFrequency
	s.tone = make([]byte, toneSamples)
	for i := range s.tone {
		sample := int8(toneVolume)
		if (i/(period/2))%2 == 1 {
			sample = -toneVolume
		}
		s.tone[i] = byte(sample)
	}

	sdl.PauseAudioDevice(dev, false)
	return nil
}

// Update renders a frame and processes events
func (s *Backend) Update(frame *video.Frame) ([]backend.InputEvent, error) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		s.handleEvent(ev)
	}

	events := s.events
	s.events = nil

	if !s.running {
		return events, nil
	}

	s.currentFrame = frame
	if err := s.renderFrame(frame); err != nil {
		return events, err
	}
	return events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.audio != 0 {
		sdl.CloseAudioDevice(s.audio)
	}
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}

// Beep queues a short tone on the audio device.
func (s *Backend) Beep() {
	if s.audio == 0 {
		return
	}
	if err := sdl.QueueAudio(s.audio, s.tone); err != nil {
		slog.Debug("Failed to queue tone", "error", err)
	}
}

// HandleAction processes backend-specific actions
func (s *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(s.currentFrame, false, 0)
	case action.EmulatorDebugToggle:
		s.config.ShowDebug = !s.config.ShowDebug
		s.updateTitle()
	}
}

// updateTitle shows the debug summary in the window title, SDL has no text
// rendering without extra libraries.
func (s *Backend) updateTitle() {
	title := s.config.Title
	if s.config.ShowDebug && s.config.DebugData != nil {
		if data := s.config.DebugData(); data != nil && data.CPU != nil {
			title = fmt.Sprintf("%s | PC=%03X I=%03X %s | %s", title, data.CPU.PC, data.CPU.I, data.CPU.Instruction, data.DebuggerState)
		}
	}
	s.window.SetTitle(title)
}

func (s *Backend) handleEvent(ev sdl.Event) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		s.running = false
		s.events = append(s.events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
		if s.config.Callbacks.OnQuit != nil {
			s.config.Callbacks.OnQuit()
		}

	case *sdl.KeyboardEvent:
		// key repeat would turn into duplicate presses
		if e.Repeat != 0 {
			return
		}
		act, ok := keyMapping[e.Keysym.Sym]
		if !ok {
			return
		}
		switch e.Type {
		case sdl.KEYDOWN:
			if act == action.EmulatorQuit {
				s.running = false
			}
			s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Press})
		case sdl.KEYUP:
			if _, isKey := act.Key(); isKey {
				s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Release})
			}
		}
	}
}

// sdlKeyNameMap converts SDL keycodes to key names used in default mappings
var sdlKeyNameMap = map[sdl.Keycode]string{
	sdl.K_1: "1", sdl.K_2: "2", sdl.K_3: "3", sdl.K_4: "4",
	sdl.K_q: "q", sdl.K_w: "w", sdl.K_e: "e", sdl.K_r: "r",
	sdl.K_a: "a", sdl.K_s: "s", sdl.K_d: "d", sdl.K_f: "f",
	sdl.K_z: "z", sdl.K_x: "x", sdl.K_c: "c", sdl.K_v: "v",

	sdl.K_SPACE:     "Space",
	sdl.K_p:         "p",
	sdl.K_o:         "o",
	sdl.K_i:         "i",
	sdl.K_BACKSPACE: "Back",
	sdl.K_F5:        "F5",
	sdl.K_F9:        "F9",
	sdl.K_F10:       "F10",
	sdl.K_F12:       "F12",
	sdl.K_ESCAPE:    "Escape",
	sdl.K_EQUALS:    "=",
	sdl.K_MINUS:     "-",
}

func buildKeyMapping() map[sdl.Keycode]action.Action {
	mapping := make(map[sdl.Keycode]action.Action)
	for key, keyName := range sdlKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	return mapping
}

var keyMapping = buildKeyMapping()

func (s *Backend) renderFrame(frame *video.Frame) error {
	for i, on := range frame {
		r, g, b := display.PixelColor(on).RGB()
		idx := i * display.RGBABytesPerPixel
		// ABGR byte order for little-endian RGBA8888
		s.pixels[idx] = display.FullAlpha
		s.pixels[idx+1] = b
		s.pixels[idx+2] = g
		s.pixels[idx+3] = r
	}

	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), video.FramebufferWidth*display.RGBABytesPerPixel); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	s.renderer.SetDrawColor(0, 0, 0, display.FullAlpha)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()

	if s.config.ShowDebug {
		s.updateTitle()
	}
	return nil
}
