package cdh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/robotalks/cdh.go/pkg/l0/board"
)

type bridgeTestCtx struct {
	port  *testPort
	out   *board.Line
	in    *board.Line
	clock *fakeClock
	b     *Bridge
}

func newBridgeTestCtx() *bridgeTestCtx {
	tctx := &bridgeTestCtx{
		port: &testPort{},
		out:  &board.Line{},
		in:   &board.Line{},
	}
	tctx.b = NewBridge(tctx.port, tctx.out, tctx.in)
	tctx.b.Pace = 0
	tctx.b.Receiver, tctx.clock = newTestReceiver(tctx.port)
	return tctx
}

func (c *bridgeTestCtx) feed(b ...byte) {
	c.b.Receiver.Feed(b)
}

func (c *bridgeTestCtx) step(t *testing.T) []byte {
	require.NoError(t, c.b.Step(context.Background()))
	return c.port.written()
}

func TestBridgeLEDOnScenario(t *testing.T) {
	tctx := newBridgeTestCtx()
	tctx.in.Set(gpio.High)
	tctx.feed(0x01, 0x00, 0x00, 0x00)
	out := tctx.step(t)
	require.Equal(t, gpio.High, tctx.out.Read())
	require.Equal(t, []byte{
		3, 2, 1,
		10, 1, 1, 0, 0, 0, 0, 0, 0, 0,
	}, out)
}

func TestBridgeLEDStateIsIndependentSignal(t *testing.T) {
	tctx := newBridgeTestCtx()
	tctx.feed(0x01, 0x00, 0x00, 0x00)
	out := tctx.step(t)
	require.Equal(t, gpio.High, tctx.out.Read())
	// the sense line is not wired to the output.
	require.Equal(t, byte(0), out[2])
}

func TestBridgeInvalidScenario(t *testing.T) {
	tctx := newBridgeTestCtx()
	tctx.out.Set(gpio.High)
	tctx.feed(0xff, 0xff, 0xff, 0xff)
	out := tctx.step(t)
	require.Equal(t, gpio.High, tctx.out.Read())
	require.Zero(t, tctx.out.Writes())
	require.Equal(t, []byte{
		3, 2, 0,
		10, 1, 1, 0, 0, 0, 1, 0, 0, 0,
	}, out)
}

func TestBridgeIdleEmitsTelemetry(t *testing.T) {
	tctx := newBridgeTestCtx()
	for i := 0; i < 3; i++ {
		out := tctx.step(t)
		require.Len(t, out, LEDTelemetrySize+CommandCountersSize)
	}
	require.Zero(t, tctx.b.State.Counters.CommandCount)
}

func TestBridgeShortReadCounted(t *testing.T) {
	tctx := newBridgeTestCtx()
	tctx.feed(0x01, 0x00)
	handled, err := tctx.b.HandleCommand()
	require.NoError(t, err)
	require.False(t, handled)

	tctx.clock.advance(DefaultCommandTimeout)
	handled, err = tctx.b.HandleCommand()
	require.True(t, handled)
	require.True(t, errors.Is(err, ErrShortRead))
	require.Equal(t, uint32(1), tctx.b.State.Counters.CommandCount)
	require.Equal(t, uint32(1), tctx.b.State.Counters.InvalidCommandCount)
	require.Equal(t, gpio.Low, tctx.out.Read())
}

func TestBridgeLoopbackSim(t *testing.T) {
	tctx := newBridgeTestCtx()
	lines := board.NewLoopback().Lines()
	tctx.b.Output, tctx.b.Input = lines.LED, lines.Sense

	tctx.feed(0x01, 0x00, 0x00, 0x00)
	require.Equal(t, byte(1), tctx.step(t)[2])
	tctx.feed(0x02, 0x00, 0x00, 0x00)
	require.Equal(t, byte(0), tctx.step(t)[2])
}

func TestBridgeRun(t *testing.T) {
	tctx := newBridgeTestCtx()
	tctx.b.Pace = time.Millisecond
	tctx.port.inject(0x00, 0x00, 0x00, 0x00)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- tctx.b.Run(ctx)
	}()

	parser := NewParser(DefaultLayouts())
	deadline := time.After(time.Second)
	var counters *CommandCounters
	for counters == nil {
		select {
		case <-deadline:
			t.Fatal("no telemetry received")
		case <-time.After(time.Millisecond):
		}
		for _, b := range tctx.port.written() {
			if r := parser.Parse(b).Record; r != nil {
				if c, ok := r.(*CommandCounters); ok && c.CommandCount > 0 {
					counters = c
				}
			}
		}
	}
	require.Equal(t, uint32(1), counters.CommandCount)
	require.Zero(t, counters.InvalidCommandCount)

	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("bridge not stopped")
	}
}

func TestBridgeStopsOnPortFailure(t *testing.T) {
	tctx := newBridgeTestCtx()
	tctx.b.Pace = time.Millisecond
	fail := errors.New("port gone")
	tctx.port.lock.Lock()
	tctx.port.readErr = fail
	tctx.port.lock.Unlock()
	errCh := make(chan error, 1)
	go func() {
		errCh <- tctx.b.Run(context.Background())
	}()
	select {
	case err := <-errCh:
		require.Equal(t, fail, err)
	case <-time.After(time.Second):
		t.Fatal("bridge not stopped")
	}
}
