package protocol

import "errors"

var (
	ErrFrameTooLong = errors.New("frame exceeds maximum message length")
	ErrBadFrame     = errors.New("malformed frame")
	ErrBadCRC       = errors.New("frame CRC mismatch")
)

// Frame is one decoded message block
type Frame struct {
	Sequence uint8  // Low four bits of the sequence byte
	Payload  []byte // Data between header and trailer
}

// EncodeFrame writes one message block: length, sequence, body, CRC, sync
func EncodeFrame(output OutputBuffer, seq uint8, body func(output OutputBuffer)) error {
	cursor := output.CurPosition()

	// Write header (length placeholder and sequence)
	output.Output([]byte{0, (seq & MessageSeqMask) | MessageDest})

	// Write frame contents
	body(output)

	// Update length field
	length := len(output.DataSince(cursor)) + MessageTrailerSize
	if length > MessageLengthMax {
		return ErrFrameTooLong
	}
	output.Update(cursor, uint8(length))

	// Calculate and write CRC
	crc := CRC16(output.DataSince(cursor))
	output.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})
	return nil
}

// FrameScanner extracts frames from a byte stream, resynchronising on
// the sync byte after corruption
type FrameScanner struct {
	input        *FifoBuffer
	synchronized bool
	errors       uint32
	lastErr      error
}

// NewFrameScanner creates a scanner buffering up to capacity bytes
func NewFrameScanner(capacity int) *FrameScanner {
	return &FrameScanner{
		input:        NewFifoBuffer(capacity),
		synchronized: true, // Start synchronized
	}
}

// Write queues raw stream bytes. Bytes that do not fit are dropped
// and the stream is resynchronised.
func (s *FrameScanner) Write(p []byte) (int, error) {
	n := s.input.Write(p)
	if n < len(p) {
		s.desync(ErrBadFrame)
	}
	return len(p), nil
}

// Next returns the next complete frame, or false when more data is needed
func (s *FrameScanner) Next() (Frame, bool) {
	for {
		data := s.input.Data()
		if len(data) == 0 {
			return Frame{}, false
		}

		if !s.synchronized {
			// Look for sync byte to resynchronize
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				// No sync byte found - discard all data
				s.input.Pop(len(data))
				return Frame{}, false
			}
			s.input.Pop(syncPos + 1)
			s.synchronized = true
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			s.input.Pop(1)
			continue
		}

		// Need at least minimum message length
		if len(data) < MessageLengthMin {
			return Frame{}, false
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			s.desync(ErrBadFrame)
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			s.desync(ErrBadFrame)
			continue
		}

		// Wait for full message
		if len(data) < msgLen {
			return Frame{}, false
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			s.desync(ErrBadFrame)
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			s.desync(ErrBadCRC)
			continue
		}

		payload := make([]byte, msgLen-MessageLengthMin)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		s.input.Pop(msgLen)

		return Frame{Sequence: seq & MessageSeqMask, Payload: payload}, true
	}
}

// desync drops the current byte and hunts for the next sync byte
func (s *FrameScanner) desync(err error) {
	s.synchronized = false
	s.errors++
	s.lastErr = err
	s.input.Pop(1)
}

// Errors returns the number of corrupt frames skipped
func (s *FrameScanner) Errors() uint32 {
	return s.errors
}

// LastError returns the reason for the most recent resync
func (s *FrameScanner) LastError() error {
	return s.lastErr
}
