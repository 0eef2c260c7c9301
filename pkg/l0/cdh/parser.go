package cdh

// Layout describes a record type as the console knows it.
type Layout struct {
	Name   string
	Size   int
	decode func([]byte) (Record, error)
}

// Decode decodes a full record.
func (l *Layout) Decode(b []byte) (Record, error) {
	return l.decode(b)
}

// Known layouts.
var (
	CommandCountersLayout = &Layout{
		Name: "CommandCounters",
		Size: CommandCountersSize,
		decode: func(b []byte) (Record, error) {
			r, err := DecodeCommandCounters(b)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
	}
	LEDTelemetryLayout = &Layout{
		Name: "LEDTelemetry",
		Size: LEDTelemetrySize,
		decode: func(b []byte) (Record, error) {
			r, err := DecodeLEDTelemetry(b)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
	}
)

// Layouts maps packet IDs to layouts.
type Layouts map[PacketID]*Layout

// NewLayouts creates Layouts with the packet IDs configured on the device.
func NewLayouts(countersID, ledID PacketID) (Layouts, error) {
	if countersID == ledID {
		return nil, ErrDuplicatedPacketID
	}
	return Layouts{
		countersID: CommandCountersLayout,
		ledID:      LEDTelemetryLayout,
	}, nil
}

// DefaultLayouts uses default packet IDs.
func DefaultLayouts() Layouts {
	l, _ := NewLayouts(DefaultCommandCountersID, DefaultLEDTelemetryID)
	return l
}

func (l Layouts) hasSize(size byte) bool {
	for _, layout := range l {
		if layout.Size == int(size) {
			return true
		}
	}
	return false
}

// ParseResult is the result of one parsing step.
type ParseResult struct {
	Record Record
	Err    error
	// Receiving indicates a record is partially received.
	Receiving bool
}

type parseState int

const (
	stateLength   parseState = iota // waiting for length
	statePacketID                   // waiting for packet ID
	stateData                       // waiting for record payload
)

// Parser parses the telemetry stream byte by byte.
// Since the stream has no delimiters, it resynchronizes by treating the
// byte which failed validation as the next length byte.
type Parser struct {
	Layouts Layouts

	state   parseState
	length  byte
	layout  *Layout
	buf     []byte
	recvLen int
}

// NewParser creates a Parser.
func NewParser(layouts Layouts) *Parser {
	return &Parser{Layouts: layouts}
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	pr.Record, pr.Err = p.parseByte(b)
	pr.Receiving = p.state != stateLength
	return
}

// Timeout drops a partially received record. It returns true if
// anything was dropped.
func (p *Parser) Timeout() bool {
	dropped := p.state != stateLength
	p.reset()
	return dropped
}

func (p *Parser) parseByte(b byte) (Record, error) {
	switch p.state {
	case stateLength:
		return nil, p.parseLength(b)
	case statePacketID:
		layout := p.Layouts[PacketID(b)]
		if layout == nil {
			p.resync(b)
			return nil, &UnknownPacketError{PacketID: PacketID(b)}
		}
		if layout.Size != int(p.length) {
			p.resync(b)
			return nil, ErrLengthMismatch
		}
		p.layout = layout
		p.buf = make([]byte, layout.Size)
		p.buf[0], p.buf[1], p.recvLen = p.length, b, headerSize
		p.state = stateData
	case stateData:
		p.buf[p.recvLen] = b
		p.recvLen++
		if p.recvLen >= len(p.buf) {
			layout, buf := p.layout, p.buf
			p.reset()
			return layout.Decode(buf)
		}
	}
	return nil, nil
}

func (p *Parser) parseLength(b byte) error {
	if !p.Layouts.hasSize(b) {
		return ErrLengthMismatch
	}
	p.length, p.state = b, statePacketID
	return nil
}

func (p *Parser) resync(b byte) {
	p.reset()
	p.parseLength(b)
}

func (p *Parser) reset() {
	p.state, p.layout, p.buf, p.recvLen = stateLength, nil, nil, 0
}
