package sim

import "sync"

// PortWrite is one recorded OUT instruction
type PortWrite struct {
	Port  uint16
	Value uint8
}

// PortLog records port writes in place of real I/O
type PortLog struct {
	mu     sync.Mutex
	writes []PortWrite
}

// Outb records value written to port
func (p *PortLog) Outb(port uint16, value uint8) {
	p.mu.Lock()
	p.writes = append(p.writes, PortWrite{Port: port, Value: value})
	p.mu.Unlock()
}

// Writes returns a copy of the recorded writes
func (p *PortLog) Writes() []PortWrite {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PortWrite(nil), p.writes...)
}

// PITDivisor decodes the divisor from a mode-2 channel 0 programming sequence,
// or 0 if none was recorded
func (p *PortLog) PITDivisor() uint16 {
	writes := p.Writes()
	for i := 0; i+2 < len(writes); i++ {
		if writes[i] == (PortWrite{0x43, 0x34}) &&
			writes[i+1].Port == 0x40 && writes[i+2].Port == 0x40 {
			return uint16(writes[i+1].Value) | uint16(writes[i+2].Value)<<8
		}
	}
	return 0
}
