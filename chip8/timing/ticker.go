package timing

import "time"

// TickerLimiter paces frames with a time.Ticker. It is less precise than
// AdaptiveLimiter but costs no CPU while waiting.
type TickerLimiter struct {
	ticker   *time.Ticker
	duration time.Duration
}

func NewTickerLimiter() *TickerLimiter {
	return NewTickerLimiterWithDuration(FrameDuration())
}

// NewTickerLimiterWithDuration paces frames every d instead of at 60 Hz.
func NewTickerLimiterWithDuration(d time.Duration) *TickerLimiter {
	return &TickerLimiter{
		ticker:   time.NewTicker(d),
		duration: d,
	}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.duration)
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
