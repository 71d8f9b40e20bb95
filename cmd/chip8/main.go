package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/audio"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/backend/sdl2"
	"github.com/valerio/go-chip8/chip8/backend/terminal"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/timing"
	"golang.org/x/term"
)

func main() {
	app := cli.NewApp()
	app.Name = "chip8"
	app.Description = "A CHIP-8 virtual machine"
	app.Usage = "chip8 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: terminal or sdl2",
			Value: "terminal",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a display",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "ipf",
			Usage: "Instructions executed per 60 Hz frame",
			Value: timing.DefaultInstructionsPerFrame,
		},
		cli.Uint64Flag{
			Name:  "seed",
			Usage: "Seed for the RND instruction (0 = random)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "snapshot-text",
			Usage: "Also write a text dump of the frame next to each PNG snapshot",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing for interactive backends: adaptive or ticker",
			Value: "adaptive",
		},
		cli.BoolFlag{
			Name:  "test-pattern",
			Usage: "Display a test pattern instead of emulation (for debugging display)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show the debug panel and enable debug logging",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

type options struct {
	romPath          string
	backendName      string
	headless         bool
	frames           int
	instructions     int
	seed             uint64
	snapshotInterval int
	snapshotDir      string
	snapshotText     bool
	limiter          string
	testPattern      bool
	debug            bool
}

func optionsFromContext(c *cli.Context) (options, error) {
	opts := options{
		romPath:          c.String("rom"),
		backendName:      c.String("backend"),
		headless:         c.Bool("headless"),
		frames:           c.Int("frames"),
		instructions:     c.Int("ipf"),
		seed:             c.Uint64("seed"),
		snapshotInterval: c.Int("snapshot-interval"),
		snapshotDir:      c.String("snapshot-dir"),
		snapshotText:     c.Bool("snapshot-text"),
		limiter:          c.String("limiter"),
		testPattern:      c.Bool("test-pattern"),
		debug:            c.Bool("debug"),
	}
	if opts.romPath == "" && c.NArg() > 0 {
		opts.romPath = c.Args().Get(0)
	}
	return opts, opts.validate()
}

func (o options) validate() error {
	if o.romPath == "" && !o.testPattern {
		return errors.New("no ROM path provided")
	}
	if o.headless && o.frames <= 0 {
		return errors.New("headless mode requires --frames option with a positive value")
	}
	if o.instructions <= 0 {
		return fmt.Errorf("--ipf must be positive, got %d", o.instructions)
	}
	switch o.limiter {
	case "", "adaptive", "ticker":
	default:
		return fmt.Errorf("unknown limiter %q", o.limiter)
	}
	return nil
}

func runEmulator(c *cli.Context) error {
	opts, err := optionsFromContext(c)
	if err != nil {
		if opts.romPath == "" && !opts.testPattern {
			cli.ShowAppHelp(c)
		}
		return err
	}

	if opts.debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	be, err := newBackend(opts)
	if err != nil {
		return err
	}

	emu, keys, err := newEmulator(opts, be)
	if err != nil {
		return err
	}

	limiter := newLimiter(opts)
	if ticker, ok := limiter.(*timing.TickerLimiter); ok {
		defer ticker.Stop()
	}
	emu.SetFrameLimiter(limiter)

	slog.Info("Starting emulator",
		"instructions_per_frame", opts.instructions,
		"instructions_per_second", timing.InstructionsPerSecond(opts.instructions))

	config := backend.BackendConfig{
		Title:       "CHIP-8",
		ShowDebug:   opts.debug,
		TestPattern: opts.testPattern,
		DebugData:   emu.ExtractDebugData,
	}
	if opts.romPath != "" {
		config.Title = "CHIP-8 - " + opts.romPath
	}

	return run(emu, keys, be, config, opts.headless)
}

// newLimiter picks the frame pacing. Headless runs go as fast as possible.
func newLimiter(opts options) timing.Limiter {
	switch {
	case opts.headless:
		return timing.NewNoOpLimiter()
	case opts.limiter == "ticker":
		return timing.NewTickerLimiter()
	default:
		return timing.NewAdaptiveLimiter()
	}
}

func newBackend(opts options) (backend.Backend, error) {
	if opts.headless {
		snapshots, err := headless.CreateSnapshotConfig(opts.snapshotInterval, opts.snapshotDir, opts.romPath, opts.snapshotText)
		if err != nil {
			return nil, err
		}
		return headless.New(opts.frames, snapshots), nil
	}

	switch opts.backendName {
	case "terminal":
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, errors.New("terminal backend needs a TTY on stdout, use --headless or --backend sdl2")
		}
		return terminal.New(), nil
	case "sdl2":
		return sdl2.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.backendName)
	}
}

// newEmulator builds the emulator selected by opts. The returned KeySetter is
// nil when the emulator has no keypad.
func newEmulator(opts options, be backend.Backend) (chip8.Emulator, input.KeySetter, error) {
	if opts.testPattern {
		slog.Info("Running in test pattern mode")
		return chip8.NewTestPatternEmulator(), nil, nil
	}

	var buzzerOpts []audio.LogBuzzerOption
	if sink, ok := be.(audio.Buzzer); ok {
		buzzerOpts = append(buzzerOpts, audio.WithForward(sink))
	}

	vm, err := chip8.NewWithFile(opts.romPath,
		chip8.WithInstructionsPerFrame(opts.instructions),
		chip8.WithSeed(opts.seed),
		chip8.WithBuzzer(audio.NewLogBuzzer(buzzerOpts...)),
	)
	if err != nil {
		return nil, nil, err
	}
	return vm, vm, nil
}

// actionHandler is implemented by backends with backend-specific actions.
type actionHandler interface {
	HandleAction(act action.Action)
}

// run drives the frame loop until the backend or the user quits. A machine
// fault ends a headless run; interactive runs keep showing the halted machine
// so it can be inspected or reset.
func run(emu chip8.Emulator, keys input.KeySetter, be backend.Backend, config backend.BackendConfig, stopOnFault bool) error {
	running := true
	config.Callbacks.OnQuit = func() { running = false }

	if err := be.Init(config); err != nil {
		return err
	}
	defer be.Cleanup()

	// backend setup may take a while, do not count it against the first frame
	emu.ResetFrameTiming()

	manager := input.NewManager(keys)
	manager.On(action.EmulatorQuit, event.Press, func() { running = false })

	for _, act := range []action.Action{
		action.EmulatorPauseToggle,
		action.EmulatorStepFrame,
		action.EmulatorStepInstruction,
		action.EmulatorReset,
		action.EmulatorTestPatternCycle,
	} {
		manager.On(act, event.Press, func() { emu.HandleAction(act, true) })
	}

	if handler, ok := be.(actionHandler); ok {
		for _, act := range []action.Action{
			action.EmulatorSnapshot,
			action.EmulatorDebugToggle,
			action.DebugLogLevelIncrease,
			action.DebugLogLevelDecrease,
		} {
			manager.On(act, event.Press, func() { handler.HandleAction(act) })
		}
	}

	var reported error
	for running {
		events, err := be.Update(emu.GetCurrentFrame())
		if err != nil {
			return err
		}
		for _, ev := range events {
			manager.Trigger(ev.Action, ev.Type)
		}
		if !running {
			break
		}

		err = emu.RunUntilFrame()
		if err == nil {
			reported = nil
			continue
		}
		if stopOnFault {
			return err
		}
		if err != reported {
			reportFault(err)
			reported = err
		}
	}

	if vm, ok := emu.(*chip8.VM); ok {
		slog.Info("Emulation finished", "frames", vm.Frames(), "instructions", vm.Instructions())
	}
	return nil
}

func reportFault(err error) {
	var fault *cpu.Fault
	if errors.As(err, &fault) {
		slog.Error("Machine halted, press reset to restart",
			"pc", fmt.Sprintf("0x%03X", fault.PC),
			"opcode", fmt.Sprintf("0x%04X", fault.Opcode),
			"error", fault.Err)
		return
	}
	slog.Error("Machine halted", "error", err)
}
