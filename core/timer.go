package core

import "sync/atomic"

// Thread is an opaque handle to a schedulable execution context
type Thread interface{}

// Scheduler is the thread scheduler as seen from the tick handler
type Scheduler interface {
	// Tick accounts one tick of CPU time to the running thread
	Tick()

	// Current returns the running thread
	Current() Thread

	// FeedbackEnabled reports whether the feedback (MLFQS) scheduler is active
	FeedbackEnabled() bool
}

// FeedbackScheduler exposes the feedback scheduler's recompute hooks.
// All methods run in interrupt context and must not block.
type FeedbackScheduler interface {
	// Increment charges the running thread's recent CPU, every tick
	Increment()

	// RecomputePriority recomputes the priority of one thread
	RecomputePriority(t Thread)

	// RecomputeLoadAvg updates the system load average
	RecomputeLoadAvg()

	// RecomputeAll updates recent CPU and priority of every thread
	RecomputeAll()
}

// WakeupRegistry is the sleep queue.
type WakeupRegistry interface {
	// RegisterWakeup blocks the caller until tick wake has been released
	RegisterWakeup(wake int64)

	// ReleaseDue readies every sleeper whose wake tick is <= now.
	// Called from interrupt context.
	ReleaseDue(now int64)
}

// Hooks are the collaborators a Timer drives
type Hooks struct {
	Ports      PortIO
	Interrupts InterruptController
	Scheduler  Scheduler
	Feedback   FeedbackScheduler // Optional; nil disables the feedback cadence
	Wakeups    WakeupRegistry
}

// Timer owns the tick counter and calibration constant of one PIT
type Timer struct {
	freq   int64
	vector uint8

	ports    PortIO
	intr     InterruptController
	sched    Scheduler
	feedback FeedbackScheduler
	wakeups  WakeupRegistry

	// Written only by HandleInterrupt
	ticks atomic.Int64

	// Written once by Calibrate before any sleep
	loopsPerTick uint32

	initialized bool

	// spin runs the delay loop; tests substitute a recorder
	spin func(loops int64)

	lock   queueLock
	timing timingRing
	stats  timerCounters
}

// New creates a timer. Invalid configuration or missing hooks halt.
func New(cfg Config, hooks Hooks) *Timer {
	if err := cfg.Validate(); err != nil {
		Halt(err.Error() + ", got " + utoa(cfg.Frequency))
	}
	switch {
	case hooks.Ports == nil:
		Halt("no port I/O")
	case hooks.Interrupts == nil:
		Halt("no interrupt controller")
	case hooks.Scheduler == nil:
		Halt("no scheduler")
	case hooks.Wakeups == nil:
		Halt("no wakeup registry")
	}

	return &Timer{
		freq:     int64(cfg.Frequency),
		vector:   cfg.Vector,
		ports:    hooks.Ports,
		intr:     hooks.Interrupts,
		sched:    hooks.Scheduler,
		feedback: hooks.Feedback,
		wakeups:  hooks.Wakeups,
		spin:     busyWait,
	}
}

// Init programs the PIT to interrupt at the configured frequency
// and registers the tick handler
func (t *Timer) Init() {
	if t.initialized {
		t.halt("timer initialized twice")
	}
	programPIT(t.ports, uint32(t.freq))
	t.intr.RegisterExternal(t.vector, "8254 Timer", t.HandleInterrupt)
	t.initialized = true

	DebugPrintln("[TIMER] PIT divisor " + utoa(PITDivisor(uint32(t.freq))) +
		" for " + itoa(t.freq) + " Hz on vector " + utoa(t.vector))
}

// Ticks returns the number of timer ticks since boot
func (t *Timer) Ticks() int64 {
	state := t.intr.Disable()
	now := t.ticks.Load()
	t.intr.Restore(state)
	barrier()
	return now
}

// Elapsed returns the number of ticks since then, a value returned by Ticks
func (t *Timer) Elapsed(then int64) int64 {
	return t.Ticks() - then
}

// Frequency returns the tick rate in Hz
func (t *Timer) Frequency() uint32 {
	return uint32(t.freq)
}

// LoopsPerTick returns the calibrated busy-wait iterations per tick
func (t *Timer) LoopsPerTick() uint32 {
	return t.loopsPerTick
}

// PrintStats prints the tick count
func (t *Timer) PrintStats() {
	Println("Timer: " + itoa(t.Ticks()) + " ticks")
}

// halt dumps the timing ring and stops the machine
func (t *Timer) halt(reason string) {
	t.DumpTiming()
	Halt(reason)
}
