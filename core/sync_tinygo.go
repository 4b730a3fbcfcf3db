//go:build tinygo

package core

import (
	"runtime"
	"sync/atomic"
)

// queueLock is a no-op on TinyGo: the single core runs the handler only
// while interrupts are unmasked, so disabling them is the exclusion.
type queueLock struct{}

func (l *queueLock) lock()   {}
func (l *queueLock) unlock() {}

// wakeSignal parks a sleeping goroutine until fire.
// Channel operations are not allowed in TinyGo interrupt handlers,
// so the sleeper yields on a flag instead.
type wakeSignal struct {
	done *atomic.Bool
}

func newWakeSignal() wakeSignal {
	return wakeSignal{done: new(atomic.Bool)}
}

func (w wakeSignal) fire() { w.done.Store(true) }

func (w wakeSignal) wait() {
	for !w.done.Load() {
		runtime.Gosched()
	}
}
