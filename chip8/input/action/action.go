package action

import "fmt"

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// CHIP-8 hexadecimal keypad
	Key0 Action = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF

	// Emulator features
	EmulatorDebugToggle
	EmulatorSnapshot
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorStepInstruction
	EmulatorReset
	EmulatorTestPatternCycle
	EmulatorQuit

	// Debug controls
	DebugLogLevelIncrease
	DebugLogLevelDecrease
)

// Category groups actions by who consumes them.
type Category int

const (
	CategoryGameInput Category = iota
	CategoryEmulator
	CategoryDebug
)

// Info describes an action for logs and help output.
type Info struct {
	Description string
	Category    Category
}

var infos = map[Action]Info{
	EmulatorDebugToggle:      {"Toggle debug panel", CategoryEmulator},
	EmulatorSnapshot:         {"Save frame snapshot", CategoryEmulator},
	EmulatorPauseToggle:      {"Pause/resume", CategoryEmulator},
	EmulatorStepFrame:        {"Step one frame", CategoryEmulator},
	EmulatorStepInstruction:  {"Step one instruction", CategoryEmulator},
	EmulatorReset:            {"Reset machine", CategoryEmulator},
	EmulatorTestPatternCycle: {"Cycle test pattern", CategoryEmulator},
	EmulatorQuit:             {"Quit", CategoryEmulator},
	DebugLogLevelIncrease:    {"Increase log verbosity", CategoryDebug},
	DebugLogLevelDecrease:    {"Decrease log verbosity", CategoryDebug},
}

// GetInfo returns the description and category of an action.
func GetInfo(act Action) Info {
	if key, ok := act.Key(); ok {
		return Info{Description: fmt.Sprintf("Key %X", key), Category: CategoryGameInput}
	}
	if info, ok := infos[act]; ok {
		return info
	}
	return Info{Description: "Unknown", Category: CategoryEmulator}
}

// Key returns the keypad index for keypad actions.
func (a Action) Key() (uint8, bool) {
	if a >= Key0 && a <= KeyF {
		return uint8(a - Key0), true
	}
	return 0, false
}
