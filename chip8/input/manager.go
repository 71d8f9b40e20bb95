package input

import (
	"log/slog"
	"time"

	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
)

const (
	// debounceDuration is the minimum time between debounced events
	debounceDuration = 300 * time.Millisecond
)

// KeySetter receives keypad transitions. The machine implements it.
type KeySetter interface {
	SetKey(key uint8, pressed bool) error
}

// Manager handles input actions and their associated callbacks
type Manager struct {
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]map[event.Type]time.Time
	keys          KeySetter
	now           func() time.Time
}

func NewManager(keys KeySetter) *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]map[event.Type]time.Time),
		keys:          keys,
		now:           time.Now,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}

	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	// Keypad actions are latched straight into the machine, never debounced:
	// games poll keys every frame and need every transition.
	if key, ok := act.Key(); ok {
		if m.keys == nil {
			return
		}
		switch evt {
		case event.Press:
			m.setKey(key, true)
		case event.Release:
			m.setKey(key, false)
		}
		m.dispatch(act, evt)
		return
	}

	if evt == event.Press || evt == event.Release {
		now := m.now()
		if m.lastTriggered[act] == nil {
			m.lastTriggered[act] = make(map[event.Type]time.Time)
		}
		if last, ok := m.lastTriggered[act][evt]; ok && now.Sub(last) < debounceDuration {
			return
		}
		m.lastTriggered[act][evt] = now
	}

	m.dispatch(act, evt)
}

func (m *Manager) setKey(key uint8, pressed bool) {
	if err := m.keys.SetKey(key, pressed); err != nil {
		slog.Warn("Failed to latch key", "key", key, "pressed", pressed, "error", err)
	}
}

func (m *Manager) dispatch(act action.Action, evt event.Type) {
	for _, callback := range m.handlers[act][evt] {
		callback()
	}
}
