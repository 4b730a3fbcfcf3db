//go:build !tinygo

package core

import "sync/atomic"

var fence uint32

// barrier is a compiler-level memory barrier.
// The gc compiler neither removes nor reorders atomic loads.
func barrier() {
	atomic.LoadUint32(&fence)
}
