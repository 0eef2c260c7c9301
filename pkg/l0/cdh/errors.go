package cdh

import (
	"errors"
	"fmt"
)

var (
	// ErrShortRead indicates a command was not completed in time.
	ErrShortRead = errors.New("short read")
	// ErrLengthMismatch indicates a record length doesn't match its layout.
	ErrLengthMismatch = errors.New("record length mismatch")
	// ErrDuplicatedPacketID indicates two records share the same packet ID.
	ErrDuplicatedPacketID = errors.New("duplicated packet ID")
)

// ShortReadError carries the bytes of an incomplete command.
type ShortReadError struct {
	Data []byte
}

// Error implements error.
func (e *ShortReadError) Error() string {
	return fmt.Sprintf("short read: got %d of %d bytes % x", len(e.Data), CommandSize, e.Data)
}

// Is makes errors.Is(err, ErrShortRead) work.
func (e *ShortReadError) Is(target error) bool {
	return target == ErrShortRead
}

// UnknownPacketError indicates a packet ID without a known layout.
type UnknownPacketError struct {
	PacketID PacketID
}

// Error implements error.
func (e *UnknownPacketError) Error() string {
	return fmt.Sprintf("unknown packet ID %d", e.PacketID)
}
