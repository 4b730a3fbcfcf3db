package core

// Unit denominators for realTimeSleep
const (
	perMillisecond = 1000
	perMicrosecond = 1000 * 1000
	perNanosecond  = 1000 * 1000 * 1000
)

// Sleep suspends the calling thread for approximately ticks timer ticks.
// The sleep queue blocks the caller; no CPU is spent waiting.
func (t *Timer) Sleep(ticks int64) {
	if ticks < 0 {
		t.halt("sleep for negative ticks " + itoa(ticks))
	}
	if !t.intr.Enabled() {
		t.halt("sleep with interrupts disabled")
	}

	start := t.Ticks()
	t.stats.wakeups.Add(1)
	t.recordFromThread(EvtWakeup, uint32(ticks))
	t.wakeups.RegisterWakeup(start + ticks)
}

// MSleep suspends execution for approximately ms milliseconds
func (t *Timer) MSleep(ms int64) {
	t.realTimeSleep(ms, perMillisecond)
}

// USleep suspends execution for approximately us microseconds
func (t *Timer) USleep(us int64) {
	t.realTimeSleep(us, perMicrosecond)
}

// NSleep suspends execution for approximately ns nanoseconds
func (t *Timer) NSleep(ns int64) {
	t.realTimeSleep(ns, perNanosecond)
}

// realTimeSleep sleeps for approximately num/denom seconds
func (t *Timer) realTimeSleep(num int64, denom int32) {
	// (num / denom) s / (1 s / freq ticks) = num * freq / denom ticks, rounded down
	ticks := num * t.freq / int64(denom)

	if num < 0 {
		t.halt("sleep for negative duration " + itoa(num))
	}
	if !t.intr.Enabled() {
		t.halt("sleep with interrupts disabled")
	}
	if ticks > 0 {
		// At least one full tick: yield the CPU to other threads
		t.Sleep(ticks)
		return
	}

	// Sub-tick: busy-wait for accuracy. Numerator and denominator are
	// scaled down by 1000 to avoid overflow.
	if denom%1000 != 0 {
		t.halt("sleep denominator " + itoa(denom) + " not a multiple of 1000")
	}
	loops := int64(t.loopsPerTick) * num / 1000 * t.freq / int64(denom/1000)
	t.stats.busy.Add(1)
	t.recordFromThread(EvtBusyWait, uint32(loops))
	t.spin(loops)
}
