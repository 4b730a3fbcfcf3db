package core

import (
	"sync/atomic"

	"pitclock/protocol"
)

// TimingEvent captures a timer event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	Tick      int64  // Tick counter at event
	Value     uint32 // Context-dependent value
}

// Event type codes
const (
	EvtCalibrated      = 1 // Value: loops per tick
	EvtWakeup          = 2 // Value: ticks requested
	EvtBusyWait        = 3 // Value: loop count (low 32 bits)
	EvtPriority        = 4 // Priority recompute of the running thread
	EvtLoadAvg         = 5 // Load average recompute
	EvtFullRecompute   = 6 // Recompute of every thread
	TimingRingSize     = 32
	timingRingSizeMask = TimingRingSize - 1
)

// timingRing keeps the last TimingRingSize events
type timingRing struct {
	events [TimingRingSize]TimingEvent
	head   uint32
}

func (r *timingRing) record(eventType uint8, tick int64, value uint32) {
	r.events[r.head&timingRingSizeMask] = TimingEvent{
		EventType: eventType,
		Tick:      tick,
		Value:     value,
	}
	r.head++
}

// snapshot returns events oldest first
func (r *timingRing) snapshot() []TimingEvent {
	out := make([]TimingEvent, 0, TimingRingSize)
	for i := uint32(0); i < TimingRingSize; i++ {
		evt := r.events[(r.head+i)&timingRingSizeMask]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

func eventName(eventType uint8) string {
	switch eventType {
	case EvtCalibrated:
		return "CALIBRATED"
	case EvtWakeup:
		return "WAKEUP_REG"
	case EvtBusyWait:
		return "BUSY_WAIT"
	case EvtPriority:
		return "PRIORITY"
	case EvtLoadAvg:
		return "LOAD_AVG"
	case EvtFullRecompute:
		return "RECALC_ALL"
	default:
		return "UNKNOWN"
	}
}

// recordFromInterrupt captures an event; the caller is the tick handler
func (t *Timer) recordFromInterrupt(eventType uint8, tick int64, value uint32) {
	t.lock.lock()
	t.timing.record(eventType, tick, value)
	t.lock.unlock()
}

// recordFromThread captures an event with interrupts masked
func (t *Timer) recordFromThread(eventType uint8, value uint32) {
	state := t.intr.Disable()
	t.lock.lock()
	t.timing.record(eventType, t.ticks.Load(), value)
	t.lock.unlock()
	t.intr.Restore(state)
}

// TimingEvents returns a copy of the timing ring, oldest first
func (t *Timer) TimingEvents() []TimingEvent {
	state := t.intr.Disable()
	t.lock.lock()
	events := t.timing.snapshot()
	t.lock.unlock()
	t.intr.Restore(state)
	return events
}

// DumpTiming prints the timing ring (call on shutdown/error)
func (t *Timer) DumpTiming() {
	Println("[TIMING] === Timing Ring Dump ===")
	Println("[TIMING] Ticks: " + itoa(t.ticks.Load()))
	for _, evt := range t.TimingEvents() {
		Println("[TIMING] " + eventName(evt.EventType) +
			" tick=" + itoa(evt.Tick) +
			" v=" + utoa(evt.Value))
	}
	Println("[TIMING] === End Dump ===")
}

// timerCounters are diagnostic event counts
type timerCounters struct {
	priority atomic.Uint32
	loadAvg  atomic.Uint32
	wakeups  atomic.Uint32
	busy     atomic.Uint32
}

// Stats returns a snapshot of the timer's counters
func (t *Timer) Stats() protocol.TimerStats {
	return protocol.TimerStats{
		Ticks:              t.Ticks(),
		Frequency:          uint32(t.freq),
		LoopsPerTick:       t.loopsPerTick,
		PriorityRecomputes: t.stats.priority.Load(),
		LoadAvgUpdates:     t.stats.loadAvg.Load(),
		Wakeups:            t.stats.wakeups.Load(),
		BusyWaits:          t.stats.busy.Load(),
	}
}
