package audio

import (
	"log/slog"
	"sync/atomic"
)

// Buzzer is notified when the sound timer runs out. Sound itself is not
// synthesized: hosts decide how to signal it (terminal bell, log line, ...).
type Buzzer interface {
	Beep()
}

// BuzzerFunc adapts a plain function to a Buzzer.
type BuzzerFunc func()

func (f BuzzerFunc) Beep() {
	f()
}

// LogBuzzer implements a dummy buzzer that just logs and counts beeps. It
// logs through slog.Default at beep time, so a handler installed later by a
// backend receives the lines.
type LogBuzzer struct {
	beeps atomic.Uint64
	next  Buzzer
}

type LogBuzzerOption func(*LogBuzzer)

// WithForward chains another buzzer that is notified after logging.
func WithForward(next Buzzer) LogBuzzerOption {
	return func(b *LogBuzzer) { b.next = next }
}

func NewLogBuzzer(opts ...LogBuzzerOption) *LogBuzzer {
	b := &LogBuzzer{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *LogBuzzer) Beep() {
	count := b.beeps.Add(1)
	slog.Debug("Buzzer", "beeps", count)
	if b.next != nil {
		b.next.Beep()
	}
}

// Count returns how many beeps were emitted so far.
func (b *LogBuzzer) Count() uint64 {
	return b.beeps.Load()
}

var _ Buzzer = (*LogBuzzer)(nil)
