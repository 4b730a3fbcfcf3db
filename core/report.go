package core

import (
	"io"

	"pitclock/protocol"
)

// Reporter sends timer_stats frames to a console stream.
// Call it from thread context; it is not safe for the interrupt handler.
type Reporter struct {
	timer  *Timer
	w      io.Writer
	output *protocol.ScratchOutput
	seq    uint8
}

// NewReporter creates a reporter for t writing to w
func NewReporter(t *Timer, w io.Writer) *Reporter {
	return &Reporter{
		timer:  t,
		w:      w,
		output: protocol.NewScratchOutput(),
	}
}

// Report encodes the current stats as one frame and writes it
func (r *Reporter) Report() error {
	stats := r.timer.Stats()

	r.output.Reset()
	err := protocol.EncodeFrame(r.output, r.seq, func(output protocol.OutputBuffer) {
		protocol.EncodeTimerStats(output, stats)
	})
	if err != nil {
		return err
	}
	r.seq = (r.seq + 1) & protocol.MessageSeqMask

	_, err = r.w.Write(r.output.Result())
	return err
}
