package core

// See the Intel 8254 datasheet for register details.
const (
	pitPortCounter0 = 0x40
	pitPortControl  = 0x43

	// Counter 0, LSB then MSB, mode 2 (rate generator), 16-bit binary
	pitCmdRateGenerator = 0x34
)

// PortIO writes bytes to the x86 I/O port space
type PortIO interface {
	Outb(port uint16, value uint8)
}

// PITDivisor returns the counter reload value for freq, rounded to nearest
func PITDivisor(freq uint32) uint16 {
	return uint16((PITInputFreq + freq/2) / freq)
}

// programPIT sets channel 0 to fire freq times per second
func programPIT(ports PortIO, freq uint32) {
	count := PITDivisor(freq)

	ports.Outb(pitPortControl, pitCmdRateGenerator)
	ports.Outb(pitPortCounter0, uint8(count&0xFF))
	ports.Outb(pitPortCounter0, uint8(count>>8))
}
