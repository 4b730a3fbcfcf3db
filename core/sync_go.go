//go:build !tinygo

package core

import "sync"

// queueLock guards data shared with the interrupt handler.
// Host builds simulate interrupts on other goroutines, so masking alone does not exclude them.
type queueLock struct {
	mu sync.Mutex
}

func (l *queueLock) lock()   { l.mu.Lock() }
func (l *queueLock) unlock() { l.mu.Unlock() }

// wakeSignal parks a sleeping goroutine until fire
type wakeSignal struct {
	ch chan struct{}
}

func newWakeSignal() wakeSignal {
	return wakeSignal{ch: make(chan struct{})}
}

// fire never blocks, so it is safe from the interrupt handler
func (w wakeSignal) fire() { close(w.ch) }

func (w wakeSignal) wait() { <-w.ch }
