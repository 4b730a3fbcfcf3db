package core

import (
	"sync/atomic"
	"unsafe"
)

// InterruptState is the interrupt level saved by Disable
type InterruptState uintptr

// InterruptHandler services one external interrupt. The frame is opaque to handlers.
type InterruptHandler func(frame unsafe.Pointer)

// InterruptController is the interrupt dispatch layer the timer runs on.
type InterruptController interface {
	// Disable masks external interrupts and returns the previous level
	Disable() InterruptState

	// Restore reinstates a level returned by Disable
	Restore(state InterruptState)

	// Enabled reports whether the calling context can be interrupted
	Enabled() bool

	// RegisterExternal installs h on an external interrupt vector
	RegisterExternal(vector uint8, name string, h InterruptHandler)
}

type vectorEntry struct {
	name    string
	handler InterruptHandler
}

// VectorTable maps interrupt vectors to named handlers.
// Controllers embed it to satisfy RegisterExternal.
type VectorTable struct {
	entries  [256]vectorEntry
	spurious atomic.Uint32
}

// RegisterExternal installs h on vector. Reusing a vector halts.
func (v *VectorTable) RegisterExternal(vector uint8, name string, h InterruptHandler) {
	if h == nil {
		Halt("nil handler for vector " + utoa(vector))
	}
	if v.entries[vector].handler != nil {
		Halt("vector " + utoa(vector) + " already registered to " + v.entries[vector].name)
	}
	v.entries[vector] = vectorEntry{name: name, handler: h}
}

// Dispatch runs the handler for vector, or counts a spurious interrupt
func (v *VectorTable) Dispatch(vector uint8, frame unsafe.Pointer) {
	h := v.entries[vector].handler
	if h == nil {
		v.spurious.Add(1)
		return
	}
	h(frame)
}

// Name returns the registered name for vector
func (v *VectorTable) Name(vector uint8) string {
	return v.entries[vector].name
}

// Registered reports whether vector has a handler
func (v *VectorTable) Registered(vector uint8) bool {
	return v.entries[vector].handler != nil
}

// Spurious returns the number of interrupts that arrived on empty vectors
func (v *VectorTable) Spurious() uint32 {
	return v.spurious.Load()
}
