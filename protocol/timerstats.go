package protocol

import (
	"errors"
	"fmt"
)

// Message IDs
const (
	MsgTimerStats = 0x31 // timer_stats ticks_high=%u ticks=%u freq=%u loops_per_tick=%u ...
)

var ErrUnknownMessage = errors.New("unknown message id")

// TimerStats is a snapshot of the tick subsystem
type TimerStats struct {
	Ticks              int64
	Frequency          uint32
	LoopsPerTick       uint32
	PriorityRecomputes uint32
	LoadAvgUpdates     uint32
	Wakeups            uint32
	BusyWaits          uint32
}

// LoopsPerSecond returns the calibrated busy-wait rate
func (s TimerStats) LoopsPerSecond() uint64 {
	return uint64(s.LoopsPerTick) * uint64(s.Frequency)
}

// EncodeTimerStats writes a timer_stats message body
func EncodeTimerStats(output OutputBuffer, s TimerStats) {
	EncodeVLQUint(output, MsgTimerStats)
	EncodeVLQUint64(output, uint64(s.Ticks))
	EncodeVLQUint(output, s.Frequency)
	EncodeVLQUint(output, s.LoopsPerTick)
	EncodeVLQUint(output, s.PriorityRecomputes)
	EncodeVLQUint(output, s.LoadAvgUpdates)
	EncodeVLQUint(output, s.Wakeups)
	EncodeVLQUint(output, s.BusyWaits)
}

// DecodeTimerStats parses a frame payload written by EncodeTimerStats
func DecodeTimerStats(payload []byte) (TimerStats, error) {
	data := payload
	id, err := DecodeVLQUint(&data)
	if err != nil {
		return TimerStats{}, fmt.Errorf("message id: %w", err)
	}
	if id != MsgTimerStats {
		return TimerStats{}, fmt.Errorf("%w: %d", ErrUnknownMessage, id)
	}

	var s TimerStats
	ticks, err := DecodeVLQUint64(&data)
	if err != nil {
		return TimerStats{}, fmt.Errorf("ticks: %w", err)
	}
	s.Ticks = int64(ticks)

	fields := []struct {
		name string
		dst  *uint32
	}{
		{"freq", &s.Frequency},
		{"loops_per_tick", &s.LoopsPerTick},
		{"priority_recomputes", &s.PriorityRecomputes},
		{"load_avg_updates", &s.LoadAvgUpdates},
		{"wakeups", &s.Wakeups},
		{"busy_waits", &s.BusyWaits},
	}
	for _, f := range fields {
		v, err := DecodeVLQUint(&data)
		if err != nil {
			return TimerStats{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return s, nil
}
