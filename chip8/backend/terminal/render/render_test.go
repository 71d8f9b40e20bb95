package render

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBuffer(t *testing.T) {
	lb := NewLogBuffer(3)
	assert.Nil(t, lb.GetRecent(10))

	for i := 0; i < 5; i++ {
		lb.Add(LogEntry{Message: string(rune('a' + i))})
	}

	recent := lb.GetRecent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "e", recent[0].Message)
	assert.Equal(t, "d", recent[1].Message)
	assert.Equal(t, "c", recent[2].Message)

	assert.Len(t, lb.GetRecent(2), 2)
	assert.Equal(t, 3, lb.Len())

	lb.Clear()
	assert.Equal(t, 0, lb.Len())
	assert.Nil(t, lb.GetRecent(1))
}

func TestLogBufferHandler(t *testing.T) {
	lb := NewLogBuffer(10)
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	logger := slog.New(NewLogBufferHandler(lb, level))

	logger.Debug("hidden")
	logger.Info("loaded", "bytes", 246)
	logger.With("component", "cpu").WithGroup("fault").Warn("halted", "pc", "0x200")

	recent := lb.GetRecent(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "halted component=cpu fault.pc=0x200", recent[0].Message)
	assert.Equal(t, slog.LevelWarn, recent[0].Level)
	assert.Equal(t, "loaded bytes=246", recent[1].Message)

	level.Set(slog.LevelDebug)
	logger.Debug("visible")
	assert.Equal(t, "visible", lb.GetRecent(1)[0].Message)
}

func TestFormatLogEntry(t *testing.T) {
	entry := LogEntry{
		Time:    time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC),
		Level:   slog.LevelError,
		Message: "boom",
	}
	assert.Equal(t, "13:04:05 [ERR] boom", FormatLogEntry(entry))
	assert.Equal(t, "DBG", LevelTag(slog.LevelDebug))
	assert.Equal(t, "WRN", LevelTag(slog.LevelWarn))
}

func TestHalfBlock(t *testing.T) {
	tests := []struct {
		top, bottom bool
		want        rune
	}{
		{false, false, ' '},
		{true, false, '▀'},
		{false, true, '▄'},
		{true, true, '█'},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HalfBlock(tt.top, tt.bottom))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd...", Truncate("abcdefghij", 7))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "", Truncate("abcdef", -1))
	assert.Equal(t, strings.Repeat("█", 2)+"...", Truncate(strings.Repeat("█", 10), 5))
}
