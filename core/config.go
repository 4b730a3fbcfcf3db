package core

import "errors"

// 8254 PIT constants
const (
	PITInputFreq = 1193180 // PIT input clock in Hz

	MinFrequency     = 19   // Lowest rate the 16-bit divisor can express
	MaxFrequency     = 1000 // Highest recommended tick rate
	DefaultFrequency = 100  // Ticks per second unless configured otherwise

	TimerVector = 0x20 // External interrupt vector of PIT channel 0
)

// DefaultFrequency must lie in [MinFrequency, MaxFrequency].
// Both expressions overflow uint at compile time when it does not.
const (
	_ uint = DefaultFrequency - MinFrequency
	_ uint = MaxFrequency - DefaultFrequency
)

var ErrFrequencyRange = errors.New("timer frequency must be in [19, 1000] Hz")

// Config holds the fixed timer parameters for the life of the process
type Config struct {
	Frequency uint32 // Target tick frequency in Hz
	Vector    uint8  // Interrupt vector the tick handler is registered on
}

// DefaultConfig returns the boot configuration
func DefaultConfig() Config {
	return Config{
		Frequency: DefaultFrequency,
		Vector:    TimerVector,
	}
}

// Validate checks the frequency bounds
func (c Config) Validate() error {
	if c.Frequency < MinFrequency || c.Frequency > MaxFrequency {
		return ErrFrequencyRange
	}
	return nil
}
