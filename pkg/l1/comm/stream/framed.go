// Package stream frames L1 packets on byte streams such as TCP.
package stream

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxPacketSize bounds a single packet.
const MaxPacketSize = 1 << 16

// ErrPacketTooLarge is returned for packets above MaxPacketSize, either
// written or announced by a received length.
var ErrPacketTooLarge = errors.New("packet too large")

// Framed is a comm.Transport on a stream. Every packet is preceded by its
// length as a little-endian uint32.
type Framed struct {
	stream io.ReadWriter
}

// New frames stream.
func New(stream io.ReadWriter) *Framed {
	return &Framed{stream: stream}
}

// ReadPacket implements comm.Transport.
func (f *Framed) ReadPacket() ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(f.stream, hdr[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(hdr[:])
	if size > MaxPacketSize {
		return nil, ErrPacketTooLarge
	}
	pkt := make([]byte, size)
	if _, err := io.ReadFull(f.stream, pkt); err != nil {
		return nil, err
	}
	return pkt, nil
}

// WritePacket implements comm.Transport. The frame goes out in one Write.
func (f *Framed) WritePacket(pkt []byte) error {
	if len(pkt) > MaxPacketSize {
		return ErrPacketTooLarge
	}
	frame := make([]byte, 4, 4+len(pkt))
	binary.LittleEndian.PutUint32(frame, uint32(len(pkt)))
	_, err := f.stream.Write(append(frame, pkt...))
	return err
}

// Close closes the stream if it can be closed.
func (f *Framed) Close() error {
	if c, ok := f.stream.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
