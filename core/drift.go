package core

import (
	"errors"
	"time"
)

var ErrNoWallTime = errors.New("wall clock did not advance")

// WallClock is an independent time reference, e.g. a battery-backed RTC
type WallClock interface {
	ReadTime() (time.Time, error)
}

// DriftSample is the tick rate observed against a wall clock
type DriftSample struct {
	Ticks    int64
	Wall     time.Duration
	Observed float64 // Ticks per second
	PPM      float64 // Error relative to the configured frequency
}

// DriftProbe compares the tick counter with a WallClock
type DriftProbe struct {
	timer *Timer
	clock WallClock

	startTicks int64
	startWall  time.Time
}

// NewDriftProbe creates a probe; call Start before Sample
func NewDriftProbe(t *Timer, clock WallClock) *DriftProbe {
	return &DriftProbe{timer: t, clock: clock}
}

// Start records the reference point
func (p *DriftProbe) Start() error {
	now, err := p.clock.ReadTime()
	if err != nil {
		return err
	}
	p.startTicks = p.timer.Ticks()
	p.startWall = now
	return nil
}

// Sample measures the tick rate since Start
func (p *DriftProbe) Sample() (DriftSample, error) {
	now, err := p.clock.ReadTime()
	if err != nil {
		return DriftSample{}, err
	}
	ticks := p.timer.Elapsed(p.startTicks)
	wall := now.Sub(p.startWall)
	if wall <= 0 {
		return DriftSample{}, ErrNoWallTime
	}

	observed := float64(ticks) / wall.Seconds()
	freq := float64(p.timer.freq)
	return DriftSample{
		Ticks:    ticks,
		Wall:     wall,
		Observed: observed,
		PPM:      (observed - freq) / freq * 1e6,
	}, nil
}
