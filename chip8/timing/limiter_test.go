package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameDuration(t *testing.T) {
	assert.Equal(t, time.Second/60, FrameDuration())
	assert.Equal(t, 660, InstructionsPerSecond(DefaultInstructionsPerFrame))
}

func TestNoOpLimiter(t *testing.T) {
	l := NewNoOpLimiter()

	start := time.Now()
	for i := 0; i < 1000; i++ {
		l.WaitForNextFrame()
	}
	l.Reset()

	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAdaptiveLimiter_Paces(t *testing.T) {
	l := NewAdaptiveLimiterWithDuration(5 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 5; i++ {
		l.WaitForNextFrame()
	}

	// the first frame is due immediately
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, int64(5), l.Frames())

	l.Reset()
	assert.Equal(t, int64(0), l.Frames())
}

func TestAdaptiveLimiter_ResyncsWhenBehind(t *testing.T) {
	l := NewAdaptiveLimiterWithDuration(time.Millisecond)
	l.nextFrameTime = time.Now().Add(-time.Second)

	start := time.Now()
	l.WaitForNextFrame()
	l.WaitForNextFrame()

	assert.Equal(t, int64(1), l.resyncs)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "must not try to replay the missed second")
}

func TestTickerLimiter(t *testing.T) {
	l := NewTickerLimiterWithDuration(2 * time.Millisecond)
	defer l.Stop()

	start := time.Now()
	l.WaitForNextFrame()
	l.WaitForNextFrame()
	l.Reset()
	l.WaitForNextFrame()

	assert.GreaterOrEqual(t, time.Since(start), 4*time.Millisecond)
}
