package msgs

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/cdh.go/pkg/framework"
)

// TypeID identifies a message schema on the wire.
type TypeID uint32

const (
	// EventBit marks messages published by the gateway unsolicited.
	EventBit TypeID = 1 << 31
	// ReplyBit marks replies to commands.
	ReplyBit TypeID = 1 << 15
)

// IsEvent reports whether t is an event type.
func (t TypeID) IsEvent() bool { return t&EventBit != 0 }

// IsReply reports whether t is a command reply type.
func (t TypeID) IsReply() bool { return !t.IsEvent() && t&ReplyBit != 0 }

// IsCommand reports whether t is a command type expecting a reply.
func (t TypeID) IsCommand() bool { return !t.IsEvent() && t&ReplyBit == 0 }

func (t TypeID) String() string {
	return fmt.Sprintf("%08x", uint32(t))
}

// Serializable is a message which can be put in an Envelope.
type Serializable interface {
	fx.Message
	proto.Message
	TypeID() TypeID
}

var (
	// ErrNotSerializable is returned when wrapping a message which is not
	// Serializable.
	ErrNotSerializable = errors.New("message not serializable")
	// ErrUnsupportedCommand is the reply to commands nobody handled.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// UnknownTypeError is returned when unwrapping an unregistered type.
type UnknownTypeError struct {
	Type TypeID
}

func (e *UnknownTypeError) Error() string {
	return "unknown message type " + e.Type.String()
}

var registry = make(map[TypeID]Serializable)

// Register makes message types known to Unwrap.
func Register(protos ...Serializable) {
	for _, p := range protos {
		if _, exists := registry[p.TypeID()]; exists {
			panic("message type registered twice: " + p.TypeID().String())
		}
		registry[p.TypeID()] = p
	}
}

// Envelope carries one message with its type and sequence number.
type Envelope struct {
	Type uint32 `protobuf:"varint,1,opt,name=type,proto3" json:"type,omitempty"`
	Seq  uint32 `protobuf:"varint,2,opt,name=seq,proto3" json:"seq,omitempty"`
	Body []byte `protobuf:"bytes,3,opt,name=body,proto3" json:"body,omitempty"`
}

func (e *Envelope) Reset()         { *e = Envelope{} }
func (e *Envelope) String() string { return proto.CompactTextString(e) }
func (*Envelope) ProtoMessage()    {}

// ID returns the type ID of the body.
func (e *Envelope) ID() TypeID { return TypeID(e.Type) }

// Wrap encodes msg into an Envelope.
func Wrap(msg fx.Message, seq uint32) (*Envelope, error) {
	s, ok := msg.(Serializable)
	if !ok {
		return nil, ErrNotSerializable
	}
	body, err := proto.Marshal(s)
	if err != nil {
		return nil, err
	}
	return &Envelope{Type: uint32(s.TypeID()), Seq: seq, Body: body}, nil
}

// Unwrap decodes the body.
func (e *Envelope) Unwrap() (fx.Message, error) {
	p, ok := registry[e.ID()]
	if !ok {
		return nil, &UnknownTypeError{Type: e.ID()}
	}
	msg := p.NewMessage().(Serializable)
	if err := proto.Unmarshal(e.Body, msg); err != nil {
		return nil, fmt.Errorf("%s: %v", e.ID(), err)
	}
	return msg, nil
}

// Marshal encodes the envelope into a packet.
func (e *Envelope) Marshal() ([]byte, error) {
	return proto.Marshal(e)
}

// ParseEnvelope decodes a packet.
func ParseEnvelope(pkt []byte) (*Envelope, error) {
	e := &Envelope{}
	if err := proto.Unmarshal(pkt, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Handler receives decoded messages along with their envelope.
type Handler interface {
	HandleEnvelope(ctx context.Context, msg fx.Message, env *Envelope) error
}

// HandlerFunc adapts a func to Handler.
type HandlerFunc func(ctx context.Context, msg fx.Message, env *Envelope) error

// HandleEnvelope implements Handler.
func (f HandlerFunc) HandleEnvelope(ctx context.Context, msg fx.Message, env *Envelope) error {
	return f(ctx, msg, env)
}
