package core

import "testing"

func TestSleepRegistersWakeTime(t *testing.T) {
	rig := newTestRig(t, 100)
	rig.tick(5)

	rig.timer.Sleep(10)

	if len(rig.wakeups.registered) != 1 || rig.wakeups.registered[0] != 15 {
		t.Errorf("Expected one wakeup at tick 15, got %v", rig.wakeups.registered)
	}
}

func TestSleepZeroWakesNow(t *testing.T) {
	rig := newTestRig(t, 100)
	rig.tick(3)

	rig.timer.Sleep(0)

	if len(rig.wakeups.registered) != 1 || rig.wakeups.registered[0] != 3 {
		t.Errorf("Expected one wakeup at the current tick 3, got %v", rig.wakeups.registered)
	}
}

func TestSleepPreconditionsHalt(t *testing.T) {
	rig := newTestRig(t, 100)
	captureConsole(t)

	expectHalt(t, func() { rig.timer.Sleep(-1) })

	rig.intr.enabled = false
	for name, fn := range map[string]func(){
		"Sleep":  func() { rig.timer.Sleep(1) },
		"MSleep": func() { rig.timer.MSleep(1000) },
		"USleep": func() { rig.timer.USleep(1) },
		"NSleep": func() { rig.timer.NSleep(1) },
	} {
		t.Run(name, func(t *testing.T) {
			expectHalt(t, fn)
		})
	}

	if len(rig.wakeups.registered) != 0 || len(rig.spins) != 0 {
		t.Errorf("Halted sleeps still waited: wakeups %v, spins %v", rig.wakeups.registered, rig.spins)
	}
}

func TestNegativeRealTimeSleepHalts(t *testing.T) {
	rig := newTestRig(t, 100)
	captureConsole(t)

	expectHalt(t, func() { rig.timer.MSleep(-5) })
}

func TestRealTimeSleepDispatch(t *testing.T) {
	testCases := []struct {
		name      string
		freq      uint32
		sleep     func(tm *Timer)
		wantTicks int64 // Blocking sleep length, or -1 for busy-wait
		wantLoops int64
	}{
		{"1000ms at 100Hz", 100, func(tm *Timer) { tm.MSleep(1000) }, 100, 0},
		{"25ms at 100Hz", 100, func(tm *Timer) { tm.MSleep(25) }, 2, 0},
		{"1ms at 100Hz", 100, func(tm *Timer) { tm.MSleep(1) }, -1, 10000 * 1 / 1000 * 100 / 1},
		{"9ms at 100Hz", 100, func(tm *Timer) { tm.MSleep(9) }, -1, 10000 * 9 / 1000 * 100 / 1},
		{"1ms at 1000Hz", 1000, func(tm *Timer) { tm.MSleep(1) }, 1, 0},
		{"500us at 1000Hz", 1000, func(tm *Timer) { tm.USleep(500) }, -1, 10000 * 500 / 1000 * 1000 / 1000},
		{"20000us at 100Hz", 100, func(tm *Timer) { tm.USleep(20000) }, 2, 0},
		{"5000ns at 100Hz", 100, func(tm *Timer) { tm.NSleep(5000) }, -1, 10000 * 5000 / 1000 * 100 / 1000000},
		{"999ns at 100Hz", 100, func(tm *Timer) { tm.NSleep(999) }, -1, 0},
		{"0ms at 100Hz", 100, func(tm *Timer) { tm.MSleep(0) }, -1, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rig := newTestRig(t, tc.freq)
			rig.timer.loopsPerTick = 10000

			tc.sleep(rig.timer)

			if tc.wantTicks >= 0 {
				if len(rig.wakeups.registered) != 1 || rig.wakeups.registered[0] != tc.wantTicks {
					t.Errorf("Expected blocking sleep to tick %d, got %v", tc.wantTicks, rig.wakeups.registered)
				}
				if len(rig.spins) != 0 {
					t.Errorf("Blocking sleep also busy-waited: %v", rig.spins)
				}
				return
			}

			if len(rig.wakeups.registered) != 0 {
				t.Errorf("Sub-tick sleep registered a wakeup: %v", rig.wakeups.registered)
			}
			if len(rig.spins) != 1 || rig.spins[0] != tc.wantLoops {
				t.Errorf("Expected one busy-wait of %d loops, got %v", tc.wantLoops, rig.spins)
			}
		})
	}
}

func TestRealTimeSleepDenominatorHalts(t *testing.T) {
	rig := newTestRig(t, 100)
	captureConsole(t)

	expectHalt(t, func() { rig.timer.realTimeSleep(1, 999) })
}
