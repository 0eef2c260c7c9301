package cdh

import "periph.io/x/conn/v3/gpio"

// Dispatch executes one command against the state and the output line.
// Unrecognized opcodes are only counted, they are not errors. The returned
// error comes from the output line, counters are updated regardless.
func Dispatch(s *State, out Output, op Opcode) (err error) {
	switch op {
	case OpLEDOn:
		err = out.Out(gpio.High)
	case OpLEDOff:
		err = out.Out(gpio.Low)
	case OpNoOp:
	}
	s.Counters.Count(op.IsValid())
	return
}
