package core

import (
	"sync"
	"sync/atomic"
	"time"

	ring "github.com/randomizedcoder/go-lock-free-ring"
)

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

const (
	asyncRingSize = 64

	// Thread context is the only producer
	asyncShards   = 1
	asyncProducer = 0
)

var (
	// consoleWriter is the global console function (can be set by platform code)
	consoleWriter DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether DebugPrintln output is active
	debugEnabled atomic.Bool

	// Async debug ring, nil until InitAsyncDebug
	asyncRing atomic.Pointer[ring.ShardedRing]
	dropped   atomic.Uint32

	// The ring has a single consumer; every drain holds drainMu
	drainMu sync.Mutex

	asyncWorker struct {
		mu   sync.Mutex
		stop chan struct{}
		done chan struct{}
	}
)

// SetDebugWriter sets the platform-specific console output function
// This allows platforms to redirect output to UART, VGA text, a test buffer, etc.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(string) {}
	}
	consoleWriter = writer
}

// SetDebugEnabled enables or disables debug output
// Useful for calibration where debug output would affect timing
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled.Load()
}

// Println writes a console line unconditionally
func Println(msg string) {
	consoleWriter(msg)
}

// DebugPrintln writes a debug message if debug output is enabled
func DebugPrintln(msg string) {
	if debugEnabled.Load() {
		consoleWriter(msg)
	}
}

// InitAsyncDebug creates the async ring and starts the drain worker.
// Call this from boot code after SetDebugWriter. Later calls are no-ops
// until StopAsyncDebug.
func InitAsyncDebug() {
	asyncWorker.mu.Lock()
	defer asyncWorker.mu.Unlock()
	if asyncWorker.stop != nil {
		return
	}

	r, err := ring.NewShardedRing(asyncRingSize, asyncShards)
	if err != nil {
		Halt("async debug ring: " + err.Error())
	}
	asyncRing.Store(r)

	asyncWorker.stop = make(chan struct{})
	asyncWorker.done = make(chan struct{})
	go debugOutputWorker(asyncWorker.stop, asyncWorker.done)
}

// StopAsyncDebug stops the drain worker and writes whatever is still queued
func StopAsyncDebug() {
	asyncWorker.mu.Lock()
	stop, done := asyncWorker.stop, asyncWorker.done
	asyncWorker.stop, asyncWorker.done = nil, nil
	asyncWorker.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	drainDebug()
}

// debugOutputWorker runs in background, drains the debug ring
func debugOutputWorker(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}
		if drainDebug() == 0 {
			time.Sleep(time.Millisecond)
		}
	}
}

// drainDebug writes every queued async message and returns how many were written
func drainDebug() int {
	r := asyncRing.Load()
	if r == nil {
		return 0
	}

	drainMu.Lock()
	defer drainMu.Unlock()
	n := 0
	for {
		v, ok := r.TryRead()
		if !ok {
			return n
		}
		if msg, isString := v.(string); isString {
			consoleWriter(msg)
		}
		n++
	}
}

// DebugAsync queues a debug message from thread context (non-blocking)
// Returns immediately even if the ring is full (drops message)
func DebugAsync(msg string) {
	if r := asyncTarget(); r != nil && !r.Write(asyncProducer, msg) {
		dropped.Add(1)
	}
}

// asyncTarget returns the ring when async debug output is live
func asyncTarget() *ring.ShardedRing {
	if !debugEnabled.Load() {
		return nil
	}
	return asyncRing.Load()
}

// DroppedDebug returns the number of async messages lost to a full ring
func DroppedDebug() uint32 {
	return dropped.Load()
}
