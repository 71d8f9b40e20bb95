package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/terminal/render"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	// two pixel rows per terminal cell
	gameAreaWidth  = width
	gameAreaHeight = height / 2

	dividerX       = gameAreaWidth + 2
	registerHeight = 14
	minTermWidth   = 100
	minTermHeight  = 24
	logBufferSize  = 200
)

// keyTimeout is how long a key counts as held after its last key event.
// Terminals report no releases, so a key is released once repeats stop.
const keyTimeout = 150 * time.Millisecond

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen     tcell.Screen
	running    bool
	logBuffer  *render.LogBuffer
	logLevel   slog.Level
	config     backend.BackendConfig
	eventQueue []backend.InputEvent
	signals    chan os.Signal
	now        func() time.Time

	keyStates  map[action.Action]time.Time // last key event per keypad action
	activeKeys map[action.Action]bool      // keypad actions held last frame

	pixelOn  tcell.Style
	pixelOff tcell.Style

	currentFrame *video.Frame
}

// New creates a terminal backend drawing to the process terminal
func New() *Backend {
	return &Backend{logLevel: slog.LevelInfo, now: time.Now}
}

// NewWithScreen creates a terminal backend drawing to screen, e.g. a
// tcell.SimulationScreen in tests.
func NewWithScreen(screen tcell.Screen) *Backend {
	b := New()
	b.screen = screen
	return b
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.running = true

	t.logBuffer = render.NewLogBuffer(logBufferSize)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))

	onColor := tcellColor(display.PixelOnColor)
	offColor := tcellColor(display.PixelOffColor)
	t.pixelOn = tcell.StyleDefault.Foreground(onColor).Background(offColor)
	t.pixelOff = tcell.StyleDefault.Foreground(offColor).Background(offColor)

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	if config.TestPattern {
		slog.Info("Terminal backend initialized in test pattern mode")
	} else {
		slog.Info("Terminal backend initialized")
	}
	if config.ShowDebug {
		slog.Debug("Debug mode enabled")
	}
	return nil
}

func tcellColor(c display.Color) tcell.Color {
	r, g, b := c.RGB()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Update renders a frame and processes events
func (t *Backend) Update(frame *video.Frame) ([]backend.InputEvent, error) {
	now := t.now()

	select {
	case sig := <-t.signals:
		slog.Info("Received signal, quitting", "signal", sig)
		t.running = false
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	default:
	}

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	events := t.keypadEvents(now)
	events = append(events, t.eventQueue...)
	t.eventQueue = nil

	if !t.running {
		return events, nil
	}

	t.currentFrame = frame
	t.render(frame)
	t.screen.Show()

	return events, nil
}

// keypadEvents turns the timestamps of keypad key events into press, hold
// and release transitions.
func (t *Backend) keypadEvents(now time.Time) []backend.InputEvent {
	var events []backend.InputEvent
	held := make(map[action.Action]bool)

	for act, last := range t.keyStates {
		if now.Sub(last) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		held[act] = true
		if t.activeKeys[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		} else {
			slog.Debug("Key press", "action", action.GetInfo(act).Description)
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		}
	}

	for act := range t.activeKeys {
		if !held[act] {
			slog.Debug("Key release", "action", action.GetInfo(act).Description)
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}

	t.activeKeys = held
	return events
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

// Beep rings the terminal bell when the sound timer expires.
func (t *Backend) Beep() {
	if t.screen == nil {
		return
	}
	if err := t.screen.Beep(); err != nil {
		slog.Debug("Terminal bell failed", "error", err)
	}
}

// HandleAction processes backend-specific actions
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(t.currentFrame, false, 0)
	case action.EmulatorDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		slog.Info("Debug display toggled", "enabled", t.config.ShowDebug)
	case action.DebugLogLevelIncrease:
		t.changeLogLevel(1)
	case action.DebugLogLevelDecrease:
		t.changeLogLevel(-1)
	}
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[unicode.ToLower(ev.Rune())]
	}
	if !ok {
		return
	}

	if act == action.EmulatorQuit {
		t.running = false
	}

	if action.GetInfo(act).Category == action.CategoryGameInput {
		t.keyStates[act] = now
		return
	}
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEscape:     "Escape",
	tcell.KeyBackspace:  "Back",
	tcell.KeyBackspace2: "Back",
	tcell.KeyF5:         "F5",
	tcell.KeyF9:         "F9",
	tcell.KeyF10:        "F10",
	tcell.KeyF12:        "F12",
}

// tcellRuneNameMap converts runes to key names used in default mappings
var tcellRuneNameMap = map[rune]string{
	' ': "Space",
	'+': "+",
	'=': "=",
	'-': "-",
	'_': "_",
}

func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.EmulatorQuit
	return mapping
}

// buildRuneMapping maps every single character key of the default mapping,
// plus the named runes above.
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)
	for keyName, act := range input.DefaultKeyMap {
		if r := []rune(keyName); len(r) == 1 {
			mapping[r[0]] = act
		}
	}
	for r, keyName := range tcellRuneNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[r] = act
		}
	}
	return mapping
}

var (
	keyMapping  = buildKeyMapping()
	runeMapping = buildRuneMapping()
)

var logLevels = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

// changeLogLevel moves the panel filter; positive direction shows more.
func (t *Backend) changeLogLevel(direction int) {
	idx := 0
	for i, level := range logLevels {
		if level == t.logLevel {
			idx = i
		}
	}
	idx -= direction
	if idx < 0 || idx >= len(logLevels) {
		return
	}

	oldLevel := t.logLevel
	t.logLevel = logLevels[idx]
	slog.Info("Log filter changed", "from", oldLevel, "to", t.logLevel)
}

func (t *Backend) render(frame *video.Frame) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	rightX := dividerX + 2
	rightWidth := termWidth - rightX

	t.drawBorders(termWidth, termHeight)
	t.drawScreen(frame)

	logsY := 1
	if t.config.ShowDebug && t.config.DebugData != nil {
		t.drawRegisters(rightX, 1, rightWidth, t.config.DebugData())
		logsY = registerHeight + 2
	}
	t.drawLogs(rightX, logsY, rightWidth, termHeight-1)
}

func (t *Backend) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	for i, ch := range []rune(render.Truncate(text, maxWidth)) {
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func (t *Backend) drawBorders(termWidth, termHeight int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}
	for x := 0; x < dividerX; x++ {
		t.screen.SetContent(x, gameAreaHeight+1, '─', nil, borderStyle)
	}
	t.screen.SetContent(dividerX, gameAreaHeight+1, '┤', nil, borderStyle)

	title := " CHIP-8 "
	if t.config.Title != "" {
		title = " " + t.config.Title + " "
	}
	t.drawText(1, 0, dividerX-1, title, titleStyle)

	if t.config.ShowDebug {
		t.drawText(dividerX+2, 0, termWidth-dividerX-2, " Registers ", titleStyle)
		for x := dividerX + 1; x < termWidth; x++ {
			t.screen.SetContent(x, registerHeight+1, '─', nil, borderStyle)
		}
		t.screen.SetContent(dividerX, registerHeight+1, '├', nil, borderStyle)
	}

	keypadHelp := []string{
		"Keypad   Keys",
		"1 2 3 C  1 2 3 4",
		"4 5 6 D  Q W E R",
		"7 8 9 E  A S D F",
		"A 0 B F  Z X C V",
	}
	for i, line := range keypadHelp {
		t.drawText(1, gameAreaHeight+2+i, dividerX-1, line, borderStyle)
	}

	help := " SPACE=pause O=frame I=step BKSP=reset F9=snapshot F10=debug +/- logs ESC=quit "
	t.drawText(0, termHeight-1, termWidth, help, borderStyle)
}

// drawScreen renders the 64x32 frame as 64x16 half-block cells.
func (t *Backend) drawScreen(frame *video.Frame) {
	if frame == nil {
		return
	}
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := frame.At(x, y)
			bottom := frame.At(x, y+1)
			style := t.pixelOn
			if !top && !bottom {
				style = t.pixelOff
			}
			t.screen.SetContent(x+1, y/2+1, render.HalfBlock(top, bottom), nil, style)
		}
	}
}

func (t *Backend) drawRegisters(x, y, w int, data *debug.Data) {
	if data == nil || data.CPU == nil {
		t.drawText(x, y, w, "no machine state", tcell.StyleDefault.Foreground(tcell.ColorGray))
		return
	}

	valueStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	labelStyle := tcell.StyleDefault.Foreground(tcell.ColorTeal)
	cpu := data.CPU

	for row := 0; row < 4; row++ {
		var sb strings.Builder
		for col := 0; col < 4; col++ {
			r := row*4 + col
			fmt.Fprintf(&sb, "V%X=%02X  ", r, cpu.V[r])
		}
		t.drawText(x, y+row, w, sb.String(), valueStyle)
	}

	lines := []string{
		fmt.Sprintf("PC=%03X  I=%03X  SP=%X  DT=%02X  ST=%02X", cpu.PC, cpu.I, cpu.SP, cpu.DT, cpu.ST),
		fmt.Sprintf("Next: %s", cpu.Instruction),
		fmt.Sprintf("Stack: %s", formatStack(cpu.Stack)),
		fmt.Sprintf("Keys: %s", formatKeys(cpu.Keys)),
		fmt.Sprintf("Cycles: %d  Frames: %d  State: %s", cpu.Cycles, data.Frames, data.DebuggerState),
	}
	for i, line := range lines {
		t.drawText(x, y+4+i, w, line, valueStyle)
	}

	if data.Memory != nil {
		t.drawText(x, y+9, w, "Memory", labelStyle)
		for i := 0; i < 2; i++ {
			lo := i * 16
			if lo >= len(data.Memory.Bytes) {
				break
			}
			hi := min(lo+16, len(data.Memory.Bytes))
			line := fmt.Sprintf("%03X: % X", int(data.Memory.StartAddr)+lo, data.Memory.Bytes[lo:hi])
			t.drawText(x, y+10+i, w, line, valueStyle)
		}
	}

	if data.Fault != "" {
		t.drawText(x, y+12, w, "FAULT: "+data.Fault, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true))
	}
}

func formatStack(stack []uint16) string {
	if len(stack) == 0 {
		return "-"
	}
	parts := make([]string, len(stack))
	for i, addr := range stack {
		parts[i] = fmt.Sprintf("%03X", addr)
	}
	return strings.Join(parts, " ")
}

func formatKeys(keys [input.KeyCount]bool) string {
	var sb strings.Builder
	for k, pressed := range keys {
		if pressed {
			fmt.Fprintf(&sb, "%X", k)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

func (t *Backend) drawLogs(x, y, w, bottom int) {
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	t.drawText(x, y, w, fmt.Sprintf(" Logs [%s] (-/+ filter) ", t.logLevel), titleStyle)

	available := bottom - y - 1
	if available <= 0 {
		return
	}

	var logs []render.LogEntry
	for _, entry := range t.logBuffer.GetRecent(0) {
		if entry.Level >= t.logLevel {
			logs = append(logs, entry)
			if len(logs) >= available {
				break
			}
		}
	}

	for i, entry := range logs {
		style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
		switch {
		case entry.Level >= slog.LevelError:
			style = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
		case entry.Level >= slog.LevelWarn:
			style = tcell.StyleDefault.Foreground(tcell.ColorYellow)
		case entry.Level < slog.LevelInfo:
			style = tcell.StyleDefault.Foreground(tcell.ColorGray)
		}
		t.drawText(x, y+1+i, w, render.FormatLogEntry(entry), style)
	}
}
