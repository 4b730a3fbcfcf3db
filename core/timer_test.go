package core

import "testing"

func TestNewRejectsFrequency(t *testing.T) {
	captureConsole(t)

	for _, freq := range []uint32{0, 18, 1001, 5000} {
		expectHalt(t, func() {
			New(Config{Frequency: freq, Vector: TimerVector}, Hooks{
				Ports:      &fakePorts{},
				Interrupts: &fakeInterrupts{enabled: true},
				Scheduler:  &fakeScheduler{},
				Wakeups:    &fakeWakeups{},
			})
		})
	}
}

func TestNewRequiresHooks(t *testing.T) {
	captureConsole(t)

	expectHalt(t, func() {
		New(DefaultConfig(), Hooks{
			Ports:      &fakePorts{},
			Interrupts: &fakeInterrupts{enabled: true},
			Scheduler:  &fakeScheduler{},
		})
	})
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
	for _, freq := range []uint32{MinFrequency, MaxFrequency} {
		if err := (Config{Frequency: freq}).Validate(); err != nil {
			t.Errorf("Frequency %d rejected: %v", freq, err)
		}
	}
	if err := (Config{Frequency: MaxFrequency + 1}).Validate(); err != ErrFrequencyRange {
		t.Errorf("Expected ErrFrequencyRange, got %v", err)
	}
}

func TestTicksMonotonic(t *testing.T) {
	rig := newTestRig(t, 100)

	t1 := rig.timer.Ticks()
	t2 := rig.timer.Ticks()
	if t2 < t1 {
		t.Errorf("Ticks went backwards: %d then %d", t1, t2)
	}

	rig.tick(1)
	t3 := rig.timer.Ticks()
	if t3 <= t2 {
		t.Errorf("Ticks did not advance across an interrupt: %d then %d", t2, t3)
	}

	if !rig.intr.Enabled() {
		t.Error("Ticks left interrupts disabled")
	}
}

func TestTicksRestoresDisabledLevel(t *testing.T) {
	rig := newTestRig(t, 100)

	state := rig.intr.Disable()
	rig.timer.Ticks()
	if rig.intr.Enabled() {
		t.Error("Ticks enabled interrupts that the caller had disabled")
	}
	rig.intr.Restore(state)
}

func TestElapsed(t *testing.T) {
	rig := newTestRig(t, 100)

	if e := rig.timer.Elapsed(rig.timer.Ticks()); e != 0 {
		t.Errorf("Expected 0 elapsed, got %d", e)
	}

	start := rig.timer.Ticks()
	rig.tick(7)
	if e := rig.timer.Elapsed(start); e != 7 {
		t.Errorf("Expected 7 elapsed, got %d", e)
	}
}

func TestPrintStats(t *testing.T) {
	rig := newTestRig(t, 100)
	lines := captureConsole(t)

	rig.tick(3)
	rig.timer.PrintStats()

	if len(*lines) != 1 || (*lines)[0] != "Timer: 3 ticks" {
		t.Errorf("Expected 'Timer: 3 ticks', got %q", *lines)
	}
}

func TestStats(t *testing.T) {
	rig := newTestRig(t, 100)
	rig.sched.feedback = true
	rig.timer.loopsPerTick = 4096

	rig.tick(100)
	rig.timer.Sleep(2)
	rig.timer.MSleep(1)

	s := rig.timer.Stats()
	if s.Ticks != 100 || s.Frequency != 100 || s.LoopsPerTick != 4096 {
		t.Errorf("Unexpected stats header: %+v", s)
	}
	if s.PriorityRecomputes != 25 {
		t.Errorf("Expected 25 priority recomputes, got %d", s.PriorityRecomputes)
	}
	if s.LoadAvgUpdates != 1 {
		t.Errorf("Expected 1 load average update, got %d", s.LoadAvgUpdates)
	}
	if s.Wakeups != 1 || s.BusyWaits != 1 {
		t.Errorf("Expected 1 wakeup and 1 busy-wait, got %d and %d", s.Wakeups, s.BusyWaits)
	}
}

func TestDumpTiming(t *testing.T) {
	rig := newTestRig(t, 100)
	rig.sched.feedback = true
	lines := captureConsole(t)

	rig.tick(8)
	rig.timer.DumpTiming()

	want := []string{
		"[TIMING] === Timing Ring Dump ===",
		"[TIMING] Ticks: 8",
		"[TIMING] PRIORITY tick=4 v=0",
		"[TIMING] PRIORITY tick=8 v=0",
		"[TIMING] === End Dump ===",
	}
	if len(*lines) != len(want) {
		t.Fatalf("Expected %d lines, got %q", len(want), *lines)
	}
	for i, line := range want {
		if (*lines)[i] != line {
			t.Errorf("Line %d: expected %q, got %q", i, line, (*lines)[i])
		}
	}
}
