package core

import (
	"sync"
	"testing"

	ring "github.com/randomizedcoder/go-lock-free-ring"
)

func enableDebug(t *testing.T) {
	t.Helper()
	SetDebugEnabled(true)
	t.Cleanup(func() { SetDebugEnabled(false) })
}

// installRing sets up the async ring without the drain worker so the test drains it
func installRing(t *testing.T) {
	t.Helper()
	r, err := ring.NewShardedRing(asyncRingSize, asyncShards)
	if err != nil {
		t.Fatalf("NewShardedRing: %v", err)
	}
	asyncRing.Store(r)
	t.Cleanup(func() { asyncRing.Store(nil) })
}

func TestDebugPrintlnGated(t *testing.T) {
	lines := captureConsole(t)

	DebugPrintln("hidden")
	if len(*lines) != 0 {
		t.Fatalf("Debug output written while disabled: %q", *lines)
	}

	enableDebug(t)
	if !IsDebugEnabled() {
		t.Fatal("IsDebugEnabled false after SetDebugEnabled(true)")
	}
	DebugPrintln("shown")
	Println("always")
	if len(*lines) != 2 || (*lines)[0] != "shown" || (*lines)[1] != "always" {
		t.Errorf("Unexpected console output %q", *lines)
	}
}

func TestDebugAsyncDrain(t *testing.T) {
	lines := captureConsole(t)
	enableDebug(t)
	installRing(t)

	DebugAsync("first")
	DebugAsync("second")

	if n := drainDebug(); n != 2 {
		t.Fatalf("Expected 2 drained messages, got %d", n)
	}
	if len(*lines) != 2 || (*lines)[0] != "first" || (*lines)[1] != "second" {
		t.Errorf("Unexpected async messages %q", *lines)
	}
	if n := drainDebug(); n != 0 {
		t.Errorf("Expected empty ring, drained %d", n)
	}
}

func TestDebugAsyncDisabledQueuesNothing(t *testing.T) {
	captureConsole(t)
	installRing(t)

	DebugAsync("dropped on the floor")
	if n := drainDebug(); n != 0 {
		t.Errorf("Expected nothing queued while disabled, drained %d", n)
	}
}

func TestDebugAsyncCountsDrops(t *testing.T) {
	captureConsole(t)
	enableDebug(t)
	installRing(t)

	before := DroppedDebug()
	const sent = 4 * asyncRingSize
	for i := 0; i < sent; i++ {
		DebugAsync("flood")
	}
	drained := drainDebug()
	lost := int(DroppedDebug() - before)

	if lost == 0 {
		t.Error("Expected drops from a full ring")
	}
	if drained+lost != sent {
		t.Errorf("Drained %d + dropped %d != sent %d", drained, lost, sent)
	}
}

func TestDrainWithoutRing(t *testing.T) {
	asyncRing.Store(nil)
	if n := drainDebug(); n != 0 {
		t.Errorf("Expected 0 with no ring, got %d", n)
	}
}

// lockedLines collects console lines written from several goroutines
type lockedLines struct {
	mu    sync.Mutex
	lines []string
}

func (l *lockedLines) write(s string) {
	l.mu.Lock()
	l.lines = append(l.lines, s)
	l.mu.Unlock()
}

func (l *lockedLines) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

func TestAsyncWorkerWithThreadDrains(t *testing.T) {
	var out lockedLines
	SetDebugWriter(out.write)
	t.Cleanup(func() { SetDebugWriter(nil) })
	enableDebug(t)
	t.Cleanup(func() { asyncRing.Store(nil) })

	InitAsyncDebug()
	stop := asyncWorker.stop
	InitAsyncDebug()
	if asyncWorker.stop != stop {
		t.Fatal("Second InitAsyncDebug started another worker")
	}

	before := DroppedDebug()
	const sent = 3000
	for i := 0; i < sent; i++ {
		DebugAsync("x")
		if i%3 == 0 {
			drainDebug()
		}
	}
	StopAsyncDebug()

	if asyncWorker.stop != nil {
		t.Error("Worker still registered after StopAsyncDebug")
	}
	lost := int(DroppedDebug() - before)
	if got := out.len(); got+lost != sent {
		t.Errorf("Written %d + dropped %d != sent %d", got, lost, sent)
	}
	if n := drainDebug(); n != 0 {
		t.Errorf("Expected empty ring after stop, drained %d", n)
	}
}

func TestStopAsyncDebugWithoutWorker(t *testing.T) {
	StopAsyncDebug()
	StopAsyncDebug()
}
