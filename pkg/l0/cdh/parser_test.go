package cdh

import (
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

func parseAll(p *Parser, in ...byte) (records []Record, errs []error) {
	for _, b := range in {
		pr := p.Parse(b)
		if pr.Record != nil {
			records = append(records, pr.Record)
		}
		if pr.Err != nil {
			errs = append(errs, pr.Err)
		}
	}
	return
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name    string
		in      []byte
		records []Record
		errs    int
	}{
		{
			name: "telemetry cycle",
			in:   []byte{3, 2, 1, 10, 1, 5, 0, 0, 0, 2, 0, 0, 0},
			records: []Record{
				&LEDTelemetry{RecordHeader: RecordHeader{Length: 3, PacketID: 2}, LEDState: true},
				&CommandCounters{RecordHeader: RecordHeader{Length: 10, PacketID: 1}, CommandCount: 5, InvalidCommandCount: 2},
			},
		},
		{
			name: "skip garbage",
			in:   []byte{0xaa, 0xbb, 3, 2, 0},
			records: []Record{
				&LEDTelemetry{RecordHeader: RecordHeader{Length: 3, PacketID: 2}},
			},
			errs: 2,
		},
		{
			name: "unknown packet id resyncs",
			in:   []byte{3, 9, 3, 2, 1},
			records: []Record{
				&LEDTelemetry{RecordHeader: RecordHeader{Length: 3, PacketID: 2}, LEDState: true},
			},
			errs: 1,
		},
		{
			name: "length mismatch resyncs",
			in:   []byte{10, 2, 3, 2, 0},
			records: []Record{
				&LEDTelemetry{RecordHeader: RecordHeader{Length: 3, PacketID: 2}},
			},
			errs: 1,
		},
		{
			name: "resync onto valid length",
			in:   []byte{10, 3, 2, 1},
			records: []Record{
				&LEDTelemetry{RecordHeader: RecordHeader{Length: 3, PacketID: 2}, LEDState: true},
			},
			errs: 1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records, errs := parseAll(NewParser(DefaultLayouts()), tc.in...)
			require.Equal(t, tc.records, records)
			require.Len(t, errs, tc.errs)
		})
	}
}

func TestParserErrors(t *testing.T) {
	p := NewParser(DefaultLayouts())
	pr := p.Parse(3)
	require.NoError(t, pr.Err)
	require.True(t, pr.Receiving)
	pr = p.Parse(9)
	require.Equal(t, &UnknownPacketError{PacketID: 9}, pr.Err)
	require.False(t, pr.Receiving)

	pr = p.Parse(10)
	require.NoError(t, pr.Err)
	pr = p.Parse(2)
	require.Equal(t, ErrLengthMismatch, pr.Err)
}

func TestParserTimeout(t *testing.T) {
	p := NewParser(DefaultLayouts())
	require.False(t, p.Timeout())
	_, errs := parseAll(p, 10, 1, 5, 0)
	require.Empty(t, errs)
	require.True(t, p.Timeout())
	records, errs := parseAll(p, 3, 2, 1)
	require.Empty(t, errs)
	require.Len(t, records, 1)
}

func TestParserCustomLayouts(t *testing.T) {
	layouts, err := NewLayouts(7, 8)
	require.NoError(t, err)
	records, errs := parseAll(NewParser(layouts), 3, 8, 1, 10, 7, 1, 0, 0, 0, 0, 0, 0, 0)
	require.Empty(t, errs)
	require.Len(t, records, 2)
	require.Equal(t, PacketID(8), records[0].ID())
	require.Equal(t, PacketID(7), records[1].ID())

	_, err = NewLayouts(1, 1)
	require.Equal(t, ErrDuplicatedPacketID, err)
}

func TestParseEmitted(t *testing.T) {
	s, err := NewState(5, 6)
	require.NoError(t, err)
	s.Counters.CommandCount, s.Counters.InvalidCommandCount = 0x0a0b0c0d, 3
	port := &testPort{}
	in := &constInput{level: gpio.Low}
	require.NoError(t, Emit(port, s, in))
	layouts, err := NewLayouts(5, 6)
	require.NoError(t, err)
	records, errs := parseAll(NewParser(layouts), port.written()...)
	require.Empty(t, errs)
	require.Equal(t, []Record{&s.LED, &s.Counters}, records)
}
