package cdh

import (
	"io"

	"periph.io/x/conn/v3/gpio"
)

// Emit samples the input line and writes both telemetry records,
// LED state first, then command counters.
func Emit(w io.Writer, s *State, in Input) error {
	s.LED.LEDState = in.Read() == gpio.High
	for _, r := range []Record{&s.LED, &s.Counters} {
		r.Stamp()
		if _, err := r.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}
