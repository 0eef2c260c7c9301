package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l0/cdh"
)

func TestTypeIDKinds(t *testing.T) {
	testCases := []struct {
		name    string
		id      TypeID
		command bool
		event   bool
		reply   bool
	}{
		{"send opcode", SendOpcodeType, true, false, false},
		{"telemetry query", TelemetryQueryType, true, false, false},
		{"telemetry", TelemetryType, false, false, true},
		{"command ok", CommandOKType, false, false, true},
		{"command err", CommandErrType, false, false, true},
		{"led state", LEDStateType, false, true, false},
		{"counters", CommandCountersType, false, true, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.command, tc.id.IsCommand())
			require.Equal(t, tc.event, tc.id.IsEvent())
			require.Equal(t, tc.reply, tc.id.IsReply())
		})
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := Wrap(NewSendOpcode(cdh.OpLEDOff), 42)
	require.NoError(t, err)
	pkt, err := env.Marshal()
	require.NoError(t, err)

	parsed, err := ParseEnvelope(pkt)
	require.NoError(t, err)
	require.Equal(t, SendOpcodeType, parsed.ID())
	require.Equal(t, uint32(42), parsed.Seq)
	msg, err := parsed.Unwrap()
	require.NoError(t, err)
	require.Equal(t, &SendOpcode{Opcode: 2}, msg)
}

func TestEnvelopeNestedReply(t *testing.T) {
	reply := &Telemetry{
		Led:      &LEDState{PacketId: 2, LedOn: true},
		Counters: &CommandCounters{PacketId: 1, CommandCount: 5, InvalidCommandCount: 2},
		Records:  10,
	}
	env, err := Wrap(reply, 3)
	require.NoError(t, err)
	msg, err := env.Unwrap()
	require.NoError(t, err)
	require.Equal(t, reply, msg)
}

func TestEnvelopeErrors(t *testing.T) {
	_, err := Wrap(nil, 0)
	require.Equal(t, ErrNotSerializable, err)
	_, err = Wrap(&notSerializable{}, 0)
	require.Equal(t, ErrNotSerializable, err)

	_, err = (&Envelope{Type: 0x1234}).Unwrap()
	require.Equal(t, &UnknownTypeError{Type: 0x1234}, err)
	require.Equal(t, "unknown message type 00001234", err.Error())

	_, err = ParseEnvelope([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}

func TestRegisterTwicePanics(t *testing.T) {
	require.Panics(t, func() { Register(&LEDState{}) })
}

func TestFromRecord(t *testing.T) {
	require.Equal(t, &LEDState{PacketId: 2, LedOn: true},
		FromRecord(&cdh.LEDTelemetry{RecordHeader: cdh.RecordHeader{PacketID: 2}, LEDState: true}))
	require.Equal(t, &CommandCounters{PacketId: 1, CommandCount: 3, InvalidCommandCount: 1},
		FromRecord(&cdh.CommandCounters{RecordHeader: cdh.RecordHeader{PacketID: 1}, CommandCount: 3, InvalidCommandCount: 1}))
	require.Nil(t, FromRecord(nil))
}

func TestCommandErr(t *testing.T) {
	reply := NewCommandErr(cdh.ErrShortRead)
	require.Equal(t, cdh.ErrShortRead.Error(), reply.Error())
	env, err := Wrap(reply, 1)
	require.NoError(t, err)
	msg, err := env.Unwrap()
	require.NoError(t, err)
	require.Equal(t, reply, msg)
}

func TestFormat(t *testing.T) {
	out, err := Format(&LEDState{PacketId: 2, LedOn: true}, true)
	require.NoError(t, err)
	require.JSONEq(t, `{"packet_id":2,"led_on":true}`, out)

	out, err = Format(&CommandCounters{PacketId: 1}, true)
	require.NoError(t, err)
	require.JSONEq(t, `{"packet_id":1,"command_count":0,"invalid_command_count":0}`, out)

	out, err = Format(&SendOpcode{Opcode: 1}, false)
	require.NoError(t, err)
	require.Contains(t, out, "SendOpcode ")
	require.Contains(t, out, "opcode:1")

	out, err = Format(&CommandOK{}, false)
	require.NoError(t, err)
	require.Equal(t, "CommandOK", out)

	_, err = Format(&notSerializable{}, false)
	require.Equal(t, ErrNotSerializable, err)
}

type notSerializable struct{}

func (m *notSerializable) NewMessage() fx.Message { return &notSerializable{} }
