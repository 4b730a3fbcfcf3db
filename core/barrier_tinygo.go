//go:build tinygo

package core

import "runtime/volatile"

var fence uint32

// barrier is a compiler-level memory barrier.
func barrier() {
	volatile.LoadUint32(&fence)
}
