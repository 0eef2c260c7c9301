package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l0/cdh"
)

// Type IDs. The low byte numbers the message within its block.
const (
	CommandOKType  TypeID = ReplyBit | 0x0000
	CommandErrType TypeID = ReplyBit | 0x0001

	SendOpcodeType     TypeID = 0x0100
	TelemetryQueryType TypeID = 0x0101
	TelemetryType      TypeID = TelemetryQueryType | ReplyBit

	LEDStateType        TypeID = EventBit | 0x0100
	CommandCountersType TypeID = EventBit | 0x0101
)

func init() {
	Register(
		&CommandOK{},
		&CommandErr{},
		&SendOpcode{},
		&TelemetryQuery{},
		&Telemetry{},
		&LEDState{},
		&CommandCounters{},
	)
}

// CommandOK replies a command which succeeded without a result.
type CommandOK struct{}

func (*CommandOK) NewMessage() fx.Message { return new(CommandOK) }
func (*CommandOK) TypeID() TypeID         { return CommandOKType }
func (m *CommandOK) Reset()               { *m = CommandOK{} }
func (m *CommandOK) String() string       { return proto.CompactTextString(m) }
func (*CommandOK) ProtoMessage()          {}

// CommandErr replies a failed command. It is also an error.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewCommandErr creates the reply for err.
func NewCommandErr(err error) *CommandErr {
	return &CommandErr{Message: err.Error()}
}

func (*CommandErr) NewMessage() fx.Message { return new(CommandErr) }
func (*CommandErr) TypeID() TypeID         { return CommandErrType }
func (m *CommandErr) Reset()               { *m = CommandErr{} }
func (m *CommandErr) String() string       { return proto.CompactTextString(m) }
func (*CommandErr) ProtoMessage()          {}
func (m *CommandErr) Error() string        { return m.Message }

// SendOpcode asks the gateway to write a raw opcode to the device.
type SendOpcode struct {
	Opcode uint32 `protobuf:"varint,1,opt,name=opcode,proto3" json:"opcode"`
}

// NewSendOpcode creates a SendOpcode for op.
func NewSendOpcode(op cdh.Opcode) *SendOpcode {
	return &SendOpcode{Opcode: uint32(op)}
}

func (*SendOpcode) NewMessage() fx.Message { return new(SendOpcode) }
func (*SendOpcode) TypeID() TypeID         { return SendOpcodeType }
func (m *SendOpcode) Reset()               { *m = SendOpcode{} }
func (m *SendOpcode) String() string       { return proto.CompactTextString(m) }
func (*SendOpcode) ProtoMessage()          {}

// TelemetryQuery asks for the latest telemetry, answered by Telemetry.
type TelemetryQuery struct{}

func (*TelemetryQuery) NewMessage() fx.Message { return new(TelemetryQuery) }
func (*TelemetryQuery) TypeID() TypeID         { return TelemetryQueryType }
func (m *TelemetryQuery) Reset()               { *m = TelemetryQuery{} }
func (m *TelemetryQuery) String() string       { return proto.CompactTextString(m) }
func (*TelemetryQuery) ProtoMessage()          {}

// Telemetry holds the latest records seen on the link.
type Telemetry struct {
	Led      *LEDState        `protobuf:"bytes,1,opt,name=led,proto3" json:"led,omitempty"`
	Counters *CommandCounters `protobuf:"bytes,2,opt,name=counters,proto3" json:"counters,omitempty"`
	// Records decoded from the link so far.
	Records uint64 `protobuf:"varint,3,opt,name=records,proto3" json:"records,omitempty"`
	// Errors counts bytes and records the parser rejected.
	Errors uint64 `protobuf:"varint,4,opt,name=errors,proto3" json:"errors,omitempty"`
}

func (*Telemetry) NewMessage() fx.Message { return new(Telemetry) }
func (*Telemetry) TypeID() TypeID         { return TelemetryType }
func (m *Telemetry) Reset()               { *m = Telemetry{} }
func (m *Telemetry) String() string       { return proto.CompactTextString(m) }
func (*Telemetry) ProtoMessage()          {}

// LEDState is published for every LED record.
type LEDState struct {
	PacketId uint32 `protobuf:"varint,1,opt,name=packet_id,json=packetId,proto3" json:"packet_id,omitempty"`
	LedOn    bool   `protobuf:"varint,2,opt,name=led_on,json=ledOn,proto3" json:"led_on"`
}

func (*LEDState) NewMessage() fx.Message { return new(LEDState) }
func (*LEDState) TypeID() TypeID         { return LEDStateType }
func (m *LEDState) Reset()               { *m = LEDState{} }
func (m *LEDState) String() string       { return proto.CompactTextString(m) }
func (*LEDState) ProtoMessage()          {}

// CommandCounters is published for every counters record.
type CommandCounters struct {
	PacketId            uint32 `protobuf:"varint,1,opt,name=packet_id,json=packetId,proto3" json:"packet_id,omitempty"`
	CommandCount        uint32 `protobuf:"varint,2,opt,name=command_count,json=commandCount,proto3" json:"command_count"`
	InvalidCommandCount uint32 `protobuf:"varint,3,opt,name=invalid_command_count,json=invalidCommandCount,proto3" json:"invalid_command_count"`
}

func (*CommandCounters) NewMessage() fx.Message { return new(CommandCounters) }
func (*CommandCounters) TypeID() TypeID         { return CommandCountersType }
func (m *CommandCounters) Reset()               { *m = CommandCounters{} }
func (m *CommandCounters) String() string       { return proto.CompactTextString(m) }
func (*CommandCounters) ProtoMessage()          {}

// FromRecord converts a decoded telemetry record into its event.
// It returns nil for anything else.
func FromRecord(r cdh.Record) fx.Message {
	switch rec := r.(type) {
	case *cdh.LEDTelemetry:
		return &LEDState{PacketId: uint32(rec.PacketID), LedOn: rec.LEDState}
	case *cdh.CommandCounters:
		return &CommandCounters{
			PacketId:            uint32(rec.PacketID),
			CommandCount:        rec.CommandCount,
			InvalidCommandCount: rec.InvalidCommandCount,
		}
	}
	return nil
}
