package cpu

// TickTimers decrements the delay and sound timers once. It is meant to be
// called at 60 Hz, independently of the instruction rate.
// It returns true on the tick that consumes the last unit of the sound timer,
// which is also when the buzzer is notified.
func (c *CPU) TickTimers() bool {
	if c.dt > 0 {
		c.dt--
	}

	if c.st == 0 {
		return false
	}

	c.st--
	if c.st != 0 {
		return false
	}

	if c.buzzer != nil {
		c.buzzer.Beep()
	}
	return true
}
