package core

import "unsafe"

const priorityInterval = 4 // Ticks between priority recomputes of the running thread

// HandleInterrupt is the timer interrupt handler.
// It runs with interrupts disabled and must never block.
func (t *Timer) HandleInterrupt(_ unsafe.Pointer) {
	defer func() {
		if r := recover(); r != nil {
			t.halt("panic in timer interrupt: " + panicString(r))
		}
	}()

	// The handler is the only writer, so it reads the counter directly
	now := t.ticks.Add(1)
	t.sched.Tick()

	if t.feedback != nil && t.sched.FeedbackEnabled() {
		t.feedback.Increment()

		// Only the running thread. Every thread is recomputed once per second below.
		if now%priorityInterval == 0 {
			t.feedback.RecomputePriority(t.sched.Current())
			t.stats.priority.Add(1)
			t.recordFromInterrupt(EvtPriority, now, 0)
		}

		// Once per second; the full pass must see the new load average
		if now%t.freq == 0 {
			t.feedback.RecomputeLoadAvg()
			t.stats.loadAvg.Add(1)
			t.recordFromInterrupt(EvtLoadAvg, now, 0)

			t.feedback.RecomputeAll()
			t.recordFromInterrupt(EvtFullRecompute, now, 0)
		}
	}

	t.wakeups.ReleaseDue(now)
}

func panicString(r interface{}) string {
	switch v := r.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		return "non-string panic value"
	}
}
