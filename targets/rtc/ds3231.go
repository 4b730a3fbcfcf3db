// Package rtc reads a battery-backed DS3231 as an independent wall clock
// for checking PIT drift.
package rtc

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"

	"pitclock/core"
)

var (
	ErrTimeInvalid = errors.New("ds3231: oscillator stopped, time not set")
	ErrNoEdge      = errors.New("ds3231: seconds register did not advance")
)

// maxEdgeReads bounds WaitForSecond; at 400 kHz one read takes about 200 us
const maxEdgeReads = 20000

// DS3231Clock is a core.WallClock backed by a DS3231 on an I2C bus.
// The DS3231 counts whole seconds, so drift samples need long intervals.
type DS3231Clock struct {
	dev ds3231.Device
}

var _ core.WallClock = (*DS3231Clock)(nil)

// NewDS3231 configures the device and checks that its time is valid
func NewDS3231(bus drivers.I2C) (*DS3231Clock, error) {
	dev := ds3231.New(bus)
	dev.Configure()
	if !dev.IsTimeValid() {
		return nil, ErrTimeInvalid
	}
	return &DS3231Clock{dev: dev}, nil
}

// ReadTime returns the RTC time
func (c *DS3231Clock) ReadTime() (time.Time, error) {
	return c.dev.ReadTime()
}

// WaitForSecond polls until the seconds register changes and returns the
// new time, so a drift probe starts on a second boundary
func (c *DS3231Clock) WaitForSecond() (time.Time, error) {
	start, err := c.dev.ReadTime()
	if err != nil {
		return time.Time{}, err
	}
	for i := 0; i < maxEdgeReads; i++ {
		now, err := c.dev.ReadTime()
		if err != nil {
			return time.Time{}, err
		}
		if !now.Equal(start) {
			return now, nil
		}
	}
	return time.Time{}, ErrNoEdge
}

// Temperature returns the die temperature in millidegrees Celsius.
// The crystal's frequency error depends on it.
func (c *DS3231Clock) Temperature() (int32, error) {
	return c.dev.ReadTemperature()
}
