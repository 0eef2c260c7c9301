package board

import (
	"sync"

	"periph.io/x/conn/v3/gpio"
)

// Line is an in-memory digital line, usable as both output and input.
type Line struct {
	level  gpio.Level
	writes int
	err    error
	lock   sync.Mutex
}

// Out implements OutputLine.
func (l *Line) Out(level gpio.Level) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.err != nil {
		return l.err
	}
	l.level = level
	l.writes++
	return nil
}

// Read implements InputLine.
func (l *Line) Read() gpio.Level {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.level
}

// Set drives the line from outside, e.g. to simulate an input.
func (l *Line) Set(level gpio.Level) {
	l.lock.Lock()
	l.level = level
	l.lock.Unlock()
}

// Writes returns how many times Out succeeded.
func (l *Line) Writes() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.writes
}

// FailWith makes Out fail with err, nil clears it.
func (l *Line) FailWith(err error) {
	l.lock.Lock()
	l.err = err
	l.lock.Unlock()
}

// Loopback wires the output line to the input line, as if the LED
// output pin were jumpered to the sense pin.
type Loopback struct {
	Line
}

// NewLoopback creates a Loopback.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Lines returns Lines backed by the loopback.
func (l *Loopback) Lines() *Lines {
	return &Lines{LED: &l.Line, Sense: &l.Line}
}
