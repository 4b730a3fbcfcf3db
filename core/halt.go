package core

// HaltHandler stops the machine. It must not return.
type HaltHandler func(reason string)

// haltHandler defaults to a panic so host builds and tests can observe halts
var haltHandler HaltHandler = func(reason string) {
	panic("timer: " + reason)
}

// SetHaltHandler installs the platform halt routine (e.g. cli; hlt loop)
func SetHaltHandler(h HaltHandler) {
	if h == nil {
		return
	}
	haltHandler = h
}

// Halt reports reason on the console and stops the machine.
// Timer code never returns errors: every failure here is a logic or hardware fault.
func Halt(reason string) {
	Println("[TIMER] PANIC: " + reason)
	haltHandler(reason)
	// A handler that returns must not let the caller continue
	panic("timer: halt handler returned: " + reason)
}
