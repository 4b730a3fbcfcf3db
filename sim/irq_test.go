package sim

import (
	"testing"
	"unsafe"
)

func TestSoftInterruptsDeliverWhenEnabled(t *testing.T) {
	irq := NewSoftInterrupts()
	calls := 0
	irq.RegisterExternal(0x20, "tick", func(unsafe.Pointer) { calls++ })

	irq.Raise(0x20)
	irq.Raise(0x20)
	if calls != 2 || irq.Delivered() != 2 {
		t.Errorf("Expected 2 deliveries, got %d calls and %d delivered", calls, irq.Delivered())
	}
}

func TestSoftInterruptsLatchWhileMasked(t *testing.T) {
	irq := NewSoftInterrupts()
	calls := 0
	irq.RegisterExternal(0x20, "tick", func(unsafe.Pointer) { calls++ })

	outer := irq.Disable()
	inner := irq.Disable()
	if irq.Enabled() {
		t.Fatal("Enabled after Disable")
	}

	irq.Raise(0x20)
	irq.Raise(0x20)
	if calls != 0 {
		t.Fatal("Handler ran while masked")
	}

	irq.Restore(inner)
	if calls != 0 || irq.Enabled() {
		t.Fatal("Inner Restore unmasked interrupts")
	}

	irq.Restore(outer)
	if !irq.Enabled() {
		t.Error("Outer Restore did not unmask interrupts")
	}
	if calls != 1 {
		t.Errorf("Expected one latched delivery, got %d", calls)
	}
	if irq.Coalesced() != 1 {
		t.Errorf("Expected 1 coalesced interrupt, got %d", irq.Coalesced())
	}
}

func TestSoftInterruptsSpurious(t *testing.T) {
	irq := NewSoftInterrupts()
	irq.Raise(0x21)
	if irq.Spurious() != 1 {
		t.Errorf("Expected 1 spurious interrupt, got %d", irq.Spurious())
	}
}

func TestPortLogDivisor(t *testing.T) {
	var ports PortLog
	if ports.PITDivisor() != 0 {
		t.Error("Empty log reported a divisor")
	}
	ports.Outb(0x43, 0x34)
	ports.Outb(0x40, 0x9C)
	ports.Outb(0x40, 0x2E)
	if d := ports.PITDivisor(); d != 11932 {
		t.Errorf("Expected divisor 11932, got %d", d)
	}
	if len(ports.Writes()) != 3 {
		t.Errorf("Expected 3 writes, got %d", len(ports.Writes()))
	}
}

func TestSoftInterruptsHandlerOnRaisingGoroutine(t *testing.T) {
	irq := NewSoftInterrupts()
	var sawEnabled bool
	irq.RegisterExternal(0x20, "tick", func(unsafe.Pointer) { sawEnabled = irq.Enabled() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		irq.Raise(0x20)
	}()
	<-done

	if irq.Delivered() != 1 {
		t.Fatalf("Expected 1 delivery, got %d", irq.Delivered())
	}
	// The mask belongs to the thread context, which never disabled
	if !sawEnabled {
		t.Error("Expected the thread-context mask to read enabled inside the handler")
	}
}
