// Package serial opens the console port a target writes timer_stats frames to.
package serial

import (
	"errors"
	"io"
	"time"
)

var ErrNoDevice = errors.New("no serial device configured")

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - An io.Pipe from the simulator
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input and unsent output
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyS0" for COM1, "/dev/ttyUSB0")
	Device string

	// Baud rate of the target's console UART
	Baud int

	// Read timeout (0 = blocking)
	ReadTimeout time.Duration
}

// DefaultConfig returns the console settings the stats reporter uses
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        250000, // Standard Klipper baud rate
		ReadTimeout: 100 * time.Millisecond,
	}
}
