package core

import (
	"bytes"
	"errors"
	"testing"

	"pitclock/protocol"
)

func TestReporterFrames(t *testing.T) {
	rig := newTestRig(t, 250)
	rig.sched.feedback = true
	rig.timer.loopsPerTick = 3999
	rig.tick(500)

	var out bytes.Buffer
	r := NewReporter(rig.timer, &out)
	for i := 0; i < 3; i++ {
		if err := r.Report(); err != nil {
			t.Fatalf("Report: %v", err)
		}
	}

	scanner := protocol.NewFrameScanner(256)
	scanner.Write(out.Bytes())

	for i := 0; i < 3; i++ {
		frame, ok := scanner.Next()
		if !ok {
			t.Fatalf("Frame %d missing", i)
		}
		if frame.Sequence != uint8(i) {
			t.Errorf("Frame %d has sequence %d", i, frame.Sequence)
		}
		s, err := protocol.DecodeTimerStats(frame.Payload)
		if err != nil {
			t.Fatalf("DecodeTimerStats: %v", err)
		}
		if s.Ticks != 500 || s.Frequency != 250 || s.LoopsPerTick != 3999 {
			t.Errorf("Unexpected stats %+v", s)
		}
		if s.PriorityRecomputes != 125 || s.LoadAvgUpdates != 2 {
			t.Errorf("Unexpected feedback counts %+v", s)
		}
	}
	if _, ok := scanner.Next(); ok {
		t.Error("Unexpected extra frame")
	}
	if scanner.Errors() != 0 {
		t.Errorf("Scanner reported %d errors", scanner.Errors())
	}
}

func TestReporterSequenceWraps(t *testing.T) {
	rig := newTestRig(t, 100)
	var out bytes.Buffer
	r := NewReporter(rig.timer, &out)

	for i := 0; i < 17; i++ {
		if err := r.Report(); err != nil {
			t.Fatalf("Report: %v", err)
		}
	}

	scanner := protocol.NewFrameScanner(1024)
	scanner.Write(out.Bytes())
	var last protocol.Frame
	for {
		frame, ok := scanner.Next()
		if !ok {
			break
		}
		last = frame
	}
	if last.Sequence != 0 {
		t.Errorf("Expected 17th frame to wrap to sequence 0, got %d", last.Sequence)
	}
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestReporterWriteError(t *testing.T) {
	rig := newTestRig(t, 100)
	r := NewReporter(rig.timer, failingWriter{})
	if err := r.Report(); !errors.Is(err, errWrite) {
		t.Errorf("Expected write error, got %v", err)
	}
}
