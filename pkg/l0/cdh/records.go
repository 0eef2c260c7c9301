package cdh

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// PacketID identifies a record type on the shared channel.
type PacketID byte

// String implements flag.Value.
func (id *PacketID) String() string {
	if id == nil {
		return "0"
	}
	return strconv.Itoa(int(*id))
}

// Set implements flag.Value.
func (id *PacketID) Set(s string) error {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return fmt.Errorf("invalid packet ID %q: %v", s, err)
	}
	*id = PacketID(n)
	return nil
}

// Default packet IDs, the console must be configured with the same values.
const (
	DefaultCommandCountersID PacketID = 1
	DefaultLEDTelemetryID    PacketID = 2
)

// Record sizes on the wire.
const (
	headerSize          = 2
	CommandCountersSize = headerSize + 4 + 4
	LEDTelemetrySize    = headerSize + 1
)

// RecordHeader is the common prefix of all records.
type RecordHeader struct {
	// Length is the size of the whole record in bytes. It's stamped
	// right before the record is sent.
	Length byte
	// PacketID is assigned at startup.
	PacketID PacketID
}

func (h *RecordHeader) put(b []byte) {
	b[0], b[1] = h.Length, byte(h.PacketID)
}

// Record is a telemetry record.
type Record interface {
	// ID returns the packet ID.
	ID() PacketID
	// Size is the encoded size.
	Size() int
	// Stamp sets Length to Size.
	Stamp()
	// Bytes returns encoded bytes.
	Bytes() []byte

	io.WriterTo
}

// CommandCounters counts received commands.
type CommandCounters struct {
	RecordHeader
	CommandCount        uint32
	InvalidCommandCount uint32
}

// ID implements Record.
func (r *CommandCounters) ID() PacketID { return r.PacketID }

// Size implements Record.
func (r *CommandCounters) Size() int { return CommandCountersSize }

// Stamp implements Record.
func (r *CommandCounters) Stamp() { r.Length = byte(r.Size()) }

// Bytes implements Record.
// Layout: [len][id][commandCount u32 LE][invalidCommandCount u32 LE]
func (r *CommandCounters) Bytes() []byte {
	b := make([]byte, CommandCountersSize)
	r.put(b)
	binary.LittleEndian.PutUint32(b[2:], r.CommandCount)
	binary.LittleEndian.PutUint32(b[6:], r.InvalidCommandCount)
	return b
}

// WriteTo implements io.WriterTo.
func (r *CommandCounters) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}

// Count records a received command, valid or not. Both counters wrap
// to zero after the maximum value.
func (r *CommandCounters) Count(valid bool) {
	r.CommandCount = wrappingInc(r.CommandCount)
	if !valid {
		r.InvalidCommandCount = wrappingInc(r.InvalidCommandCount)
	}
}

// Reset clears the counters.
func (r *CommandCounters) Reset() {
	r.CommandCount, r.InvalidCommandCount = 0, 0
}

// LEDTelemetry reports the level of the LED input line.
type LEDTelemetry struct {
	RecordHeader
	LEDState bool
}

// ID implements Record.
func (r *LEDTelemetry) ID() PacketID { return r.PacketID }

// Size implements Record.
func (r *LEDTelemetry) Size() int { return LEDTelemetrySize }

// Stamp implements Record.
func (r *LEDTelemetry) Stamp() { r.Length = byte(r.Size()) }

// Bytes implements Record.
// Layout: [len][id][ledState 0|1]
func (r *LEDTelemetry) Bytes() []byte {
	b := make([]byte, LEDTelemetrySize)
	r.put(b)
	if r.LEDState {
		b[2] = 1
	}
	return b
}

// WriteTo implements io.WriterTo.
func (r *LEDTelemetry) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}

// DecodeCommandCounters decodes a full CommandCounters record.
func DecodeCommandCounters(b []byte) (*CommandCounters, error) {
	if len(b) != CommandCountersSize || int(b[0]) != CommandCountersSize {
		return nil, ErrLengthMismatch
	}
	return &CommandCounters{
		RecordHeader:        RecordHeader{Length: b[0], PacketID: PacketID(b[1])},
		CommandCount:        binary.LittleEndian.Uint32(b[2:]),
		InvalidCommandCount: binary.LittleEndian.Uint32(b[6:]),
	}, nil
}

// DecodeLEDTelemetry decodes a full LEDTelemetry record.
func DecodeLEDTelemetry(b []byte) (*LEDTelemetry, error) {
	if len(b) != LEDTelemetrySize || int(b[0]) != LEDTelemetrySize {
		return nil, ErrLengthMismatch
	}
	return &LEDTelemetry{
		RecordHeader: RecordHeader{Length: b[0], PacketID: PacketID(b[1])},
		LEDState:     b[2] != 0,
	}, nil
}

func wrappingInc(v uint32) uint32 {
	if v == math.MaxUint32 {
		return 0
	}
	return v + 1
}
