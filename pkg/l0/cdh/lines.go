package cdh

import "periph.io/x/conn/v3/gpio"

// Output is a digital output line. Any periph gpio.PinOut satisfies it.
type Output interface {
	Out(l gpio.Level) error
}

// Input is a digital input line. Any periph gpio.PinIn satisfies it.
type Input interface {
	Read() gpio.Level
}
