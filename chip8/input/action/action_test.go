package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	for act := Key0; act <= KeyF; act++ {
		got, ok := act.Key()
		assert.True(t, ok)
		assert.Equal(t, uint8(act-Key0), got)
	}

	_, ok := EmulatorQuit.Key()
	assert.False(t, ok)
}

func TestGetInfo(t *testing.T) {
	assert.Equal(t, CategoryGameInput, GetInfo(KeyA).Category)
	assert.Equal(t, "Key A", GetInfo(KeyA).Description)
	assert.Equal(t, CategoryEmulator, GetInfo(EmulatorReset).Category)
	assert.Equal(t, CategoryDebug, GetInfo(DebugLogLevelDecrease).Category)
}
