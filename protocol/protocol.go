// Package protocol encodes timer statistics as framed messages for a serial console.
//
// Framing follows the Klipper message block: length, sequence, VLQ payload,
// CRC16 and a trailing sync byte.
package protocol

// Version represents the stats protocol version
const Version = "0.1.0"

// Protocol constants
const (
	MessageHeaderSize  = 2    // Length and sequence bytes
	MessageTrailerSize = 3    // CRC16 and sync byte
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64   // Largest frame, including header and trailer
	MessagePositionLen = 0    // Offset of the length byte
	MessagePositionSeq = 1    // Offset of the sequence byte
	MessageTrailerCRC  = 3    // Offset of the CRC from the frame end
	MessageTrailerSync = 1    // Offset of the sync byte from the frame end
	MessageValueSync   = 0x7E // Frame terminator
	MessageDest        = 0x10 // High bits of every sequence byte

	// Message sequence masks
	MessageSeqMask = 0x0F
)
