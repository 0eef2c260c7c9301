package cdh

// State is all the device keeps in memory. It's owned by a single loop.
type State struct {
	Counters CommandCounters
	LED      LEDTelemetry
}

// NewState creates a State with packet IDs assigned.
func NewState(countersID, ledID PacketID) (*State, error) {
	if countersID == ledID {
		return nil, ErrDuplicatedPacketID
	}
	s := &State{}
	s.Counters.PacketID = countersID
	s.LED.PacketID = ledID
	return s, nil
}

// NewDefaultState creates a State with default packet IDs.
func NewDefaultState() *State {
	s, _ := NewState(DefaultCommandCountersID, DefaultLEDTelemetryID)
	return s
}
