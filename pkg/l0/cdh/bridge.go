package cdh

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/golang/glog"
)

// DefaultPace is each of the two pauses in a loop iteration.
const DefaultPace = 50 * time.Millisecond

// Bridge runs the device loop: receive and dispatch a command, pause,
// emit telemetry, pause.
type Bridge struct {
	Port     io.ReadWriter
	Output   Output
	Input    Input
	State    *State
	Receiver *Receiver
	Pace     time.Duration
}

// NewBridge creates a Bridge with default packet IDs and timings.
func NewBridge(port io.ReadWriter, out Output, in Input) *Bridge {
	return &Bridge{
		Port:     port,
		Output:   out,
		Input:    in,
		State:    NewDefaultState(),
		Receiver: NewReceiver(port),
		Pace:     DefaultPace,
	}
}

// Name implements Named.
func (b *Bridge) Name() string {
	return "cdh-bridge"
}

// HandleCommand polls for a command and dispatches it.
// It returns true if a command (including a short one) was received.
func (b *Bridge) HandleCommand() (bool, error) {
	op, ok, err := b.Receiver.Poll()
	if err != nil {
		if errors.Is(err, ErrShortRead) {
			// a corrupted command still counts, as invalid.
			b.State.Counters.Count(false)
			return true, err
		}
		return false, err
	}
	if !ok {
		return false, nil
	}
	glog.V(2).Infof("command %s", op)
	return true, Dispatch(b.State, b.Output, op)
}

// SendTelemetry emits both records to the port.
func (b *Bridge) SendTelemetry() error {
	return Emit(b.Port, b.State, b.Input)
}

// Step runs one loop iteration. Only context errors and the failure of
// the port reader are returned, everything else is logged.
func (b *Bridge) Step(ctx context.Context) error {
	if _, err := b.HandleCommand(); err != nil {
		glog.Warningf("command: %v", err)
	}
	if err := b.Receiver.Err(); err != nil {
		return err
	}
	if err := b.pause(ctx); err != nil {
		return err
	}
	if err := b.SendTelemetry(); err != nil {
		glog.Warningf("telemetry: %v", err)
	}
	return b.pause(ctx)
}

// Run implements Runnable. The port is read in the background so
// HandleCommand never waits for it.
func (b *Bridge) Run(ctx context.Context) error {
	glog.Infof("bridge started, packet IDs: counters=%d led=%d",
		b.State.Counters.PacketID, b.State.LED.PacketID)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go b.Receiver.Run(ctx)
	for {
		if err := b.Step(ctx); err != nil {
			return err
		}
	}
}

func (b *Bridge) pause(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.Pace):
		return nil
	}
}
