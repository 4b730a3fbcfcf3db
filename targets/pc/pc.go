//go:build amd64

// Package pc binds the timer to a bare-metal x86-64 PC: port I/O, the
// RFLAGS interrupt flag and the 8259 PIC that routes PIT channel 0.
package pc

import (
	"unsafe"

	"pitclock/core"
)

const flagIF = 1 << 9 // RFLAGS interrupt enable

// 8259 PIC, remapped so IRQ 0-15 arrive on vectors 0x20-0x2F
const (
	picMasterCmd = 0x20
	picSlaveCmd  = 0xA0
	picEOI       = 0x20

	irqBase      = core.TimerVector
	irqSlaveBase = irqBase + 8
	irqLimit     = irqBase + 16
)

// Ports writes the x86 I/O port space
type Ports struct{}

// Outb writes value to port
func (Ports) Outb(port uint16, value uint8) {
	outb(port, value)
}

// Interrupts controls the CPU interrupt flag
type Interrupts struct {
	core.VectorTable
}

var _ core.InterruptController = (*Interrupts)(nil)

// Disable clears IF and returns the previous RFLAGS
func (i *Interrupts) Disable() core.InterruptState {
	flags := readFlags()
	cli()
	return core.InterruptState(flags)
}

// Restore reloads RFLAGS saved by Disable
func (i *Interrupts) Restore(state core.InterruptState) {
	writeFlags(uintptr(state))
}

// Enabled reports whether IF is set
func (i *Interrupts) Enabled() bool {
	return readFlags()&flagIF != 0
}

// Handle is the common interrupt entry, called with IF clear.
// External interrupts are acknowledged after the handler returns.
func (i *Interrupts) Handle(vector uint8, frame unsafe.Pointer) {
	i.Dispatch(vector, frame)
	if isSlaveIRQ(vector) {
		outb(picSlaveCmd, picEOI)
	}
	if isIRQ(vector) {
		outb(picMasterCmd, picEOI)
	}
}

func isIRQ(vector uint8) bool {
	return vector >= irqBase && vector < irqLimit
}

func isSlaveIRQ(vector uint8) bool {
	return vector >= irqSlaveBase && vector < irqLimit
}

// Halt masks interrupts and stops the CPU for good
func Halt(string) {
	cli()
	for {
		hlt()
	}
}

// Install routes console output to w and fatal errors to Halt
func Install(w core.DebugWriter) {
	core.SetDebugWriter(w)
	core.SetHaltHandler(Halt)
}

// System is the timer subsystem of a booted PC
type System struct {
	Interrupts *Interrupts
	Sleepers   *core.SleepQueue
	Timer      *core.Timer
}

// Boot programs the PIT, registers the tick handler, enables interrupts
// and calibrates the delay loop. The IDT and PIC must already route
// TimerVector to Handle. feedback may be nil.
func Boot(cfg core.Config, sched core.Scheduler, feedback core.FeedbackScheduler) *System {
	sys := &System{Interrupts: &Interrupts{}}
	sys.Sleepers, sys.Timer = bootTimer(cfg, Ports{}, sys.Interrupts, sched, feedback, sti)
	return sys
}

// bootTimer wires a timer to its collaborators in boot order.
// enable turns on the tick interrupt before calibration.
func bootTimer(cfg core.Config, ports core.PortIO, intr core.InterruptController,
	sched core.Scheduler, feedback core.FeedbackScheduler, enable func()) (*core.SleepQueue, *core.Timer) {
	sleepers := core.NewSleepQueue(intr)
	timer := core.New(cfg, core.Hooks{
		Ports:      ports,
		Interrupts: intr,
		Scheduler:  sched,
		Feedback:   feedback,
		Wakeups:    sleepers,
	})
	timer.Init()
	enable()
	timer.Calibrate()
	return sleepers, timer
}
