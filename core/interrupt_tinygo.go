//go:build tinygo

package core

import (
	"runtime/interrupt"
	"sync/atomic"
)

// CPUInterrupts is the InterruptController for TinyGo targets.
//
// TinyGo binds interrupt handlers at compile time, so the target declares
// interrupt.New(<vector>, ...) itself and forwards to Dispatch.
type CPUInterrupts struct {
	VectorTable
	depth atomic.Int32
}

// Disable masks interrupts and returns the previous state
func (c *CPUInterrupts) Disable() InterruptState {
	state := interrupt.Disable()
	c.depth.Add(1)
	return InterruptState(state)
}

// Restore restores the interrupt state
func (c *CPUInterrupts) Restore(state InterruptState) {
	c.depth.Add(-1)
	interrupt.Restore(interrupt.State(state))
}

// Enabled reports whether the caller runs with interrupts unmasked
func (c *CPUInterrupts) Enabled() bool {
	return !interrupt.In() && c.depth.Load() == 0
}
