package sim

import (
	"sync"
	"time"

	"pitclock/core"
)

// Machine is a simulated PC: a PIT driving the tick handler through a
// software interrupt controller
type Machine struct {
	Timer      *core.Timer
	Interrupts *SoftInterrupts
	Ports      *PortLog
	Scheduler  *Scheduler
	Sleepers   *core.SleepQueue

	vector uint8
	period time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewMachine builds the timer and its collaborators and programs the PIT.
// The clock does not run until Start.
func NewMachine(cfg *Config) *Machine {
	m := &Machine{
		Interrupts: NewSoftInterrupts(),
		Ports:      &PortLog{},
		Scheduler:  NewScheduler(cfg.Feedback, cfg.Threads...),
		vector:     core.TimerVector,
	}
	m.Sleepers = core.NewSleepQueue(m.Interrupts)
	m.Timer = core.New(core.Config{Frequency: cfg.Frequency, Vector: m.vector}, core.Hooks{
		Ports:      m.Ports,
		Interrupts: m.Interrupts,
		Scheduler:  m.Scheduler,
		Feedback:   m.Scheduler,
		Wakeups:    m.Sleepers,
	})
	m.Timer.Init()

	// The PIT counts the programmed divisor, so the simulated period does too
	divisor := time.Duration(m.Ports.PITDivisor())
	m.period = divisor * time.Second / core.PITInputFreq
	return m
}

// Period returns the simulated interval between ticks
func (m *Machine) Period() time.Duration {
	return m.period
}

// Start runs the PIT on a background goroutine
func (m *Machine) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.run(m.stop, m.done)
}

func (m *Machine) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Interrupts.Raise(m.vector)
		case <-stop:
			return
		}
	}
}

// Stop halts the PIT and waits for the clock goroutine to exit
func (m *Machine) Stop() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Step delivers n timer interrupts immediately, for a clock that is not running
func (m *Machine) Step(n int) {
	for i := 0; i < n; i++ {
		m.Interrupts.Raise(m.vector)
	}
}

// HostClock is a core.WallClock backed by the host's clock
type HostClock struct{}

// ReadTime returns the current host time
func (HostClock) ReadTime() (time.Time, error) {
	return time.Now(), nil
}
