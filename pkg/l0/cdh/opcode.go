package cdh

import (
	"encoding/binary"
	"fmt"
	"io"
)

// CommandSize is the size of a command on the wire.
const CommandSize = 4

// Opcode is the 32-bit command value.
type Opcode uint32

// Recognized opcodes.
const (
	// OpNoOp does nothing, used for testing the link.
	OpNoOp Opcode = 0x00
	// OpLEDOn drives the LED output line to its active level.
	OpLEDOn Opcode = 0x01
	// OpLEDOff drives the LED output line to its inactive level.
	OpLEDOff Opcode = 0x02
)

// DecodeOpcode assembles an opcode from a command, byte 0 is the least
// significant byte.
func DecodeOpcode(b []byte) (Opcode, error) {
	if len(b) != CommandSize {
		return 0, &ShortReadError{Data: append([]byte(nil), b...)}
	}
	return Opcode(uint32(b[3])<<24 | uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0])), nil
}

// IsValid indicates the opcode is in the dispatch table.
func (op Opcode) IsValid() bool {
	switch op {
	case OpNoOp, OpLEDOn, OpLEDOff:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (op Opcode) String() string {
	switch op {
	case OpNoOp:
		return "NO_OP"
	case OpLEDOn:
		return "LED_ON"
	case OpLEDOff:
		return "LED_OFF"
	}
	return fmt.Sprintf("UNKNOWN(0x%08x)", uint32(op))
}

// Bytes returns the encoded command.
func (op Opcode) Bytes() []byte {
	b := make([]byte, CommandSize)
	binary.LittleEndian.PutUint32(b, uint32(op))
	return b
}

// WriteTo writes the encoded command.
func (op Opcode) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(op.Bytes())
	return int64(n), err
}
