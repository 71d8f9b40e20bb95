package timing

import (
	"log/slog"
	"time"
)

const (
	busyWaitThreshold = 2 * time.Millisecond
	resyncThreshold   = 5 * time.Millisecond
	driftThreshold    = 10 * time.Millisecond
)

// AdaptiveLimiter sleeps for most of the frame and busy-waits the last
// stretch, correcting accumulated drift once per second.
type AdaptiveLimiter struct {
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	frameCounter    int64
	resyncs         int64
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return NewAdaptiveLimiterWithDuration(FrameDuration())
}

// NewAdaptiveLimiterWithDuration paces frames every d instead of at 60 Hz.
func NewAdaptiveLimiterWithDuration(d time.Duration) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		targetFrameTime: d,
		nextFrameTime:   time.Now(),
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := time.Now()
	sleepTime := a.nextFrameTime.Sub(now)

	switch {
	case sleepTime > busyWaitThreshold:
		time.Sleep(sleepTime - time.Millisecond)
		a.spinUntil(a.nextFrameTime)
	case sleepTime > 0:
		a.spinUntil(a.nextFrameTime)
	case sleepTime < -resyncThreshold:
		// too far behind to catch up, start over from now
		a.nextFrameTime = now
		a.resyncs++
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%TimerFrequency == 0 {
		drift := time.Since(a.nextFrameTime)
		if drift.Abs() > driftThreshold {
			a.nextFrameTime = a.nextFrameTime.Add(drift / 10)
			slog.Debug("Frame timing drift correction",
				"drift_ms", drift.Milliseconds(),
				"frames", a.frameCounter,
				"resyncs", a.resyncs)
		}
	}
}

func (a *AdaptiveLimiter) spinUntil(deadline time.Time) {
	for time.Now().Before(deadline) {
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextFrameTime = time.Now()
	a.frameCounter = 0
	a.resyncs = 0
}

// Frames returns how many frames were paced since the last Reset.
func (a *AdaptiveLimiter) Frames() int64 {
	return a.frameCounter
}
