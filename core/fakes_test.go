package core

import (
	"strings"
	"testing"
)

type portWrite struct {
	port  uint16
	value uint8
}

// fakePorts records port writes
type fakePorts struct {
	writes []portWrite
}

func (f *fakePorts) Outb(port uint16, value uint8) {
	f.writes = append(f.writes, portWrite{port, value})
}

// fakeInterrupts tracks a single interrupt level
type fakeInterrupts struct {
	VectorTable
	enabled bool
}

const (
	stateOff InterruptState = 0
	stateOn  InterruptState = 1
)

func (f *fakeInterrupts) Disable() InterruptState {
	prev := stateOff
	if f.enabled {
		prev = stateOn
	}
	f.enabled = false
	return prev
}

func (f *fakeInterrupts) Restore(state InterruptState) {
	f.enabled = state == stateOn
}

func (f *fakeInterrupts) Enabled() bool {
	return f.enabled
}

// fakeScheduler counts ticks and reports a fixed running thread
type fakeScheduler struct {
	ticks    int
	feedback bool
	current  Thread
}

func (f *fakeScheduler) Tick()                 { f.ticks++ }
func (f *fakeScheduler) Current() Thread       { return f.current }
func (f *fakeScheduler) FeedbackEnabled() bool { return f.feedback }

// fakeFeedback records hook calls in order, tagged with the tick
type fakeFeedback struct {
	timer   *Timer
	calls   []string
	threads []Thread
}

func (f *fakeFeedback) note(name string) {
	f.calls = append(f.calls, name+"@"+itoa(f.timer.ticks.Load()))
}

func (f *fakeFeedback) Increment() { f.note("inc") }
func (f *fakeFeedback) RecomputePriority(t Thread) {
	f.threads = append(f.threads, t)
	f.note("priority")
}
func (f *fakeFeedback) RecomputeLoadAvg() { f.note("load") }
func (f *fakeFeedback) RecomputeAll()     { f.note("all") }

func (f *fakeFeedback) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix+"@") {
			n++
		}
	}
	return n
}

// fakeWakeups records wake ticks instead of blocking
type fakeWakeups struct {
	registered []int64
	released   []int64
}

func (f *fakeWakeups) RegisterWakeup(wake int64) { f.registered = append(f.registered, wake) }
func (f *fakeWakeups) ReleaseDue(now int64)      { f.released = append(f.released, now) }

type testRig struct {
	timer    *Timer
	ports    *fakePorts
	intr     *fakeInterrupts
	sched    *fakeScheduler
	feedback *fakeFeedback
	wakeups  *fakeWakeups
	spins    []int64
}

func newTestRig(t *testing.T, freq uint32) *testRig {
	t.Helper()
	rig := &testRig{
		ports:   &fakePorts{},
		intr:    &fakeInterrupts{enabled: true},
		sched:   &fakeScheduler{current: "main"},
		wakeups: &fakeWakeups{},
	}
	rig.feedback = &fakeFeedback{}
	rig.timer = New(Config{Frequency: freq, Vector: TimerVector}, Hooks{
		Ports:      rig.ports,
		Interrupts: rig.intr,
		Scheduler:  rig.sched,
		Feedback:   rig.feedback,
		Wakeups:    rig.wakeups,
	})
	rig.feedback.timer = rig.timer
	rig.timer.spin = func(loops int64) {
		rig.spins = append(rig.spins, loops)
	}
	return rig
}

// tick delivers n timer interrupts
func (r *testRig) tick(n int) {
	for i := 0; i < n; i++ {
		r.timer.HandleInterrupt(nil)
	}
}

// expectHalt fails the test unless fn halts
func expectHalt(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected halt, execution continued")
		}
	}()
	fn()
}

// captureConsole collects console lines for the duration of the test
func captureConsole(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	t.Cleanup(func() { SetDebugWriter(nil) })
	return &lines
}
