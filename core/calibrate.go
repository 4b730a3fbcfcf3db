package core

const (
	calibrationStart = 1 << 10 // First loop count tried
	refinementBits   = 9       // Bits refined below the leading bit
)

// Calibrate measures loops per tick, used to implement brief delays.
// It must run once at boot, with interrupts enabled, before any sub-tick sleep.
func (t *Timer) Calibrate() {
	if !t.intr.Enabled() {
		t.halt("calibrate with interrupts disabled")
	}
	Println("Calibrating timer...")

	t.loopsPerTick = t.calibrateLoops(t.tooManyLoops)
	t.recordFromThread(EvtCalibrated, t.loopsPerTick)

	Println(groupDigits(utoa(uint64(t.loopsPerTick)*uint64(t.freq))) + " loops/s.")
}

// calibrateLoops finds the largest loop count that still fits in one tick.
// tooMany reports whether running the given number of loops crosses a tick.
func (t *Timer) calibrateLoops(tooMany func(loops uint32) bool) uint32 {
	// Approximate as the largest power of two still less than one tick
	loops := uint32(calibrationStart)
	for !tooMany(loops << 1) {
		loops <<= 1
		if loops == 0 {
			t.halt("calibration overflow: tick counter not advancing")
		}
	}

	// Refine the next bits below the leading one. Each bit is tried on top
	// of the bits already accepted, not on the leading bit alone, so the
	// result never exceeds one tick.
	highBit := loops
	for testBit := highBit >> 1; testBit != highBit>>(refinementBits+1); testBit >>= 1 {
		if !tooMany(loops | testBit) {
			loops |= testBit
		}
	}
	return loops
}

// tooManyLoops reports whether loops iterations take longer than one tick
func (t *Timer) tooManyLoops(loops uint32) bool {
	// Wait for a tick boundary
	start := t.ticks.Load()
	for t.ticks.Load() == start {
		barrier()
	}

	// Run the loops
	start = t.ticks.Load()
	t.spin(int64(loops))

	// If the tick count changed, we iterated too long
	barrier()
	return start != t.ticks.Load()
}

// busyWait iterates loops times, for implementing brief delays.
// Not inlined: code placement changes its timing, and every call site must
// run the same loop that was calibrated.
//
//go:noinline
func busyWait(loops int64) {
	for loops > 0 {
		loops--
		barrier()
	}
}
