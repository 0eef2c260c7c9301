package cdh

import (
	"bytes"
	"io"
	"sync"

	"periph.io/x/conn/v3/gpio"
)

// testPort behaves like a serial port with a read timeout: Read returns
// what has been injected so far, or io.EOF if nothing is available.
type testPort struct {
	in      [][]byte
	out     bytes.Buffer
	readErr error
	lock    sync.Mutex
}

func (p *testPort) inject(b ...byte) {
	p.lock.Lock()
	p.in = append(p.in, b)
	p.lock.Unlock()
}

func (p *testPort) Read(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.in) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.in[0])
	if n < len(p.in[0]) {
		p.in[0] = p.in[0][n:]
	} else {
		p.in = p.in[1:]
	}
	return n, nil
}

func (p *testPort) Write(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.out.Write(b)
}

func (p *testPort) written() []byte {
	p.lock.Lock()
	defer p.lock.Unlock()
	b := append([]byte(nil), p.out.Bytes()...)
	p.out.Reset()
	return b
}

func (p *testPort) pending() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	var n int
	for _, b := range p.in {
		n += len(b)
	}
	return n
}

type constInput struct {
	level gpio.Level
}

func (c *constInput) Read() gpio.Level {
	return c.level
}
