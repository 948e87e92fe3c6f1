// Package link sends commands to the motor firmware over a byte
// stream, typically a serial port.
//
// Each packet is framed as:
//
//	[seq] [code | len<<4] [len if >= 7] [data...]
//
// seq cycles through 1..0xef. The low nibble of the second byte is the
// command code, bit 7 is reserved for events from the firmware. There is
// no acknowledgment: the motor link is a fire-and-forget sink.
package link

import (
	"io"
	"time"
)

// PacketSeq defines the type of packet sequence number.
type PacketSeq byte

// NewPacketSeq creates a random packet sequence number.
func NewPacketSeq() PacketSeq {
	return PacketSeq(byte(time.Now().UnixNano())).Next()
}

// Next calculates the next sequence number.
func (s PacketSeq) Next() PacketSeq {
	n := byte(s) + 1
	if n == 0 || n >= 0xf0 {
		n = 1
	}
	return PacketSeq(n)
}

// IsValid checks if it's a valid sequence number.
func (s PacketSeq) IsValid() bool {
	n := byte(s)
	return n > 0 && n < 0xf0
}

// Packet is a single framed message.
type Packet struct {
	Seq  PacketSeq
	Code byte
	Data []byte
}

// Bytes returns encoded bytes for sending.
func (p *Packet) Bytes() []byte {
	b := make([]byte, 0, len(p.Data)+3)
	b = append(b, byte(p.Seq), p.Code&0x8f)
	if l := len(p.Data); l >= 7 {
		b[1] |= 0x70
		b = append(b, byte(l))
	} else {
		b[1] |= byte(l<<4) & 0x70
	}
	return append(b, p.Data...)
}

// WriteTo implements io.WriterTo. The packet is written in a single
// Write so a frame is never interleaved on the wire.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Bytes())
	return int64(n), err
}
