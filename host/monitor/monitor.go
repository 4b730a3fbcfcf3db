// Package monitor reads timer_stats frames from a target console and
// estimates the tick rate the target actually runs at.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"pitclock/host/serial"
	"pitclock/protocol"
)

var ErrNotEnoughSamples = errors.New("need at least two stats reports")

const scannerCapacity = protocol.MessageLengthMax * 8

// Sample is one decoded stats report
type Sample struct {
	Received time.Time
	Sequence uint8
	Stats    protocol.TimerStats
}

// Monitor collects stats reports from a byte stream
type Monitor struct {
	r       io.Reader
	port    serial.Port
	scanner *protocol.FrameScanner
	buf     [protocol.MessageLengthMax]byte
	samples []Sample

	decodeErrors int

	// A serial read timeout surfaces as io.EOF; keep polling
	timeoutEOF bool

	// now timestamps received frames; tests substitute a fixed clock
	now func() time.Time
}

// New creates a monitor reading from r
func New(r io.Reader) *Monitor {
	return &Monitor{
		r:       r,
		scanner: protocol.NewFrameScanner(scannerCapacity),
		now:     time.Now,
	}
}

// Connect opens a serial console and monitors it
func Connect(cfg *serial.Config) (*Monitor, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open console: %w", err)
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to flush console: %w", err)
	}

	m := New(port)
	m.port = port
	m.timeoutEOF = cfg.ReadTimeout > 0
	return m, nil
}

// Close closes the serial console, if the monitor opened one
func (m *Monitor) Close() error {
	if m.port != nil {
		return m.port.Close()
	}
	return nil
}

// Poll performs one read and returns the reports it completed
func (m *Monitor) Poll() ([]Sample, error) {
	n, err := m.r.Read(m.buf[:])
	if n > 0 {
		m.scanner.Write(m.buf[:n])
	}

	var out []Sample
	for {
		frame, ok := m.scanner.Next()
		if !ok {
			break
		}
		stats, decodeErr := protocol.DecodeTimerStats(frame.Payload)
		if decodeErr != nil {
			m.decodeErrors++
			continue
		}
		s := Sample{Received: m.now(), Sequence: frame.Sequence, Stats: stats}
		m.samples = append(m.samples, s)
		out = append(out, s)
	}
	return out, err
}

// Run polls until the stream ends or ctx is done, passing each report to handle.
// A closed stream is not an error. Run returns only between reads, so a
// blocking reader must be closed to stop it.
func (m *Monitor) Run(ctx context.Context, handle func(Sample)) error {
	for ctx.Err() == nil {
		samples, err := m.Poll()
		for _, s := range samples {
			handle(s)
		}
		if errors.Is(err, io.EOF) && m.timeoutEOF {
			continue
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read console: %w", err)
		}
	}
	return nil
}

// Samples returns every report received so far
func (m *Monitor) Samples() []Sample {
	return m.samples
}

// Errors returns the number of corrupt frames and undecodable reports
func (m *Monitor) Errors() int {
	return int(m.scanner.Errors()) + m.decodeErrors
}

// Estimate is the tick rate observed across consecutive reports
type Estimate struct {
	Nominal   uint32  // Configured frequency from the latest report
	Mean      float64 // Ticks per second
	StdDev    float64
	PPM       float64 // Mean error relative to Nominal
	Intervals int
}

// Estimate computes the tick rate from report arrival times.
// Intervals where the tick count went backwards (target reset) are skipped.
func (m *Monitor) Estimate() (Estimate, error) {
	if len(m.samples) < 2 {
		return Estimate{}, ErrNotEnoughSamples
	}

	var rates []float64
	for i := 1; i < len(m.samples); i++ {
		prev, cur := m.samples[i-1], m.samples[i]
		ticks := cur.Stats.Ticks - prev.Stats.Ticks
		wall := cur.Received.Sub(prev.Received).Seconds()
		if ticks < 0 || wall <= 0 {
			continue
		}
		rates = append(rates, float64(ticks)/wall)
	}
	if len(rates) == 0 {
		return Estimate{}, ErrNotEnoughSamples
	}

	mean, std := stat.MeanStdDev(rates, nil)
	if math.IsNaN(std) {
		std = 0 // A single interval has no spread
	}
	nominal := m.samples[len(m.samples)-1].Stats.Frequency
	est := Estimate{
		Nominal:   nominal,
		Mean:      mean,
		StdDev:    std,
		Intervals: len(rates),
	}
	if nominal > 0 {
		est.PPM = (mean - float64(nominal)) / float64(nominal) * 1e6
	}
	return est, nil
}
