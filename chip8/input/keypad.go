package input

import (
	"errors"
	"fmt"
)

// KeyCount is the number of keys on the hexadecimal keypad.
const KeyCount = 16

// ErrInvalidKey is returned for key indexes outside 0x0-0xF.
var ErrInvalidKey = errors.New("invalid keypad key")

// Keypad holds the pressed state of the 16 hexadecimal keys.
type Keypad struct {
	keys [KeyCount]bool
}

// NewKeypad returns a keypad with no key pressed.
func NewKeypad() *Keypad {
	return &Keypad{}
}

// Set latches the state of a key.
func (k *Keypad) Set(key uint8, pressed bool) error {
	if key >= KeyCount {
		return fmt.Errorf("%w: 0x%X", ErrInvalidKey, key)
	}
	k.keys[key] = pressed
	return nil
}

// IsPressed returns whether key is currently held down.
func (k *Keypad) IsPressed(key uint8) (bool, error) {
	if key >= KeyCount {
		return false, fmt.Errorf("%w: 0x%X", ErrInvalidKey, key)
	}
	return k.keys[key], nil
}

// FirstPressed returns the lowest-indexed key that is held down, if any.
func (k *Keypad) FirstPressed() (uint8, bool) {
	for i, pressed := range k.keys {
		if pressed {
			return uint8(i), true
		}
	}
	return 0, false
}

// State returns a copy of all key latches.
func (k *Keypad) State() [KeyCount]bool {
	return k.keys
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.keys = [KeyCount]bool{}
}
