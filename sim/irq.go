package sim

import (
	"sync"
	"sync/atomic"

	"pitclock/core"
)

// SoftInterrupts is a software interrupt controller for host builds.
// Disable, Restore and Enabled track the mask of a single thread context
// and must come from one goroutine. Raise may be called from any goroutine
// and runs the handler on the caller when unmasked, so a handler can
// overlap thread code that masks after the raise. Handlers never overlap
// each other. Data shared with a handler still needs the core queue lock.
type SoftInterrupts struct {
	core.VectorTable

	depth atomic.Int32

	mu      sync.Mutex // Guards pending
	pending [256]bool

	// Handlers never run concurrently with each other
	handlerMu sync.Mutex

	delivered atomic.Uint64
	coalesced atomic.Uint64
}

// NewSoftInterrupts creates a controller with interrupts enabled
func NewSoftInterrupts() *SoftInterrupts {
	return &SoftInterrupts{}
}

// Disable masks interrupts and returns the previous nesting depth
func (s *SoftInterrupts) Disable() core.InterruptState {
	return core.InterruptState(s.depth.Add(1) - 1)
}

// Restore unmasks one level; interrupts raised while masked are delivered
// once the outermost level is restored
func (s *SoftInterrupts) Restore(_ core.InterruptState) {
	if s.depth.Add(-1) != 0 {
		return
	}
	s.deliverPending()
}

// Enabled reports whether the thread context has interrupts unmasked.
// It does not reflect a handler running on another goroutine.
func (s *SoftInterrupts) Enabled() bool {
	return s.depth.Load() == 0
}

// Raise signals an interrupt on vector. While masked the interrupt is
// latched; a second raise of a latched vector is lost, as on an 8259.
func (s *SoftInterrupts) Raise(vector uint8) {
	s.mu.Lock()
	if s.depth.Load() > 0 {
		if s.pending[vector] {
			s.coalesced.Add(1)
		}
		s.pending[vector] = true
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.dispatch(vector)
}

func (s *SoftInterrupts) deliverPending() {
	var due []uint8
	s.mu.Lock()
	for v := range s.pending {
		if s.pending[v] {
			s.pending[v] = false
			due = append(due, uint8(v))
		}
	}
	s.mu.Unlock()

	for _, v := range due {
		s.dispatch(v)
	}
}

func (s *SoftInterrupts) dispatch(vector uint8) {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()
	s.delivered.Add(1)
	s.Dispatch(vector, nil)
}

// Delivered returns the number of interrupts dispatched
func (s *SoftInterrupts) Delivered() uint64 {
	return s.delivered.Load()
}

// Coalesced returns the number of interrupts lost while latched
func (s *SoftInterrupts) Coalesced() uint64 {
	return s.coalesced.Load()
}
