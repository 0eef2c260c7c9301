package framework

import (
	"context"
	"fmt"
	"time"
)

// Named is implemented by components which report a name in logs.
type Named interface {
	Name() string
}

// Runnable is a background component stopped by canceling ctx.
type Runnable interface {
	Run(ctx context.Context) error
}

// Message is anything passed through the loop queue or decoded from the wire.
type Message interface {
	// NewMessage returns an empty message of the same type, used as the
	// decoding target.
	NewMessage() Message
}

// MessageHandler receives messages outside of the loop, e.g. gateway events.
type MessageHandler interface {
	HandleMessage(context.Context, Message)
}

// HandleMessageFunc adapts a func to MessageHandler.
type HandleMessageFunc func(context.Context, Message)

// HandleMessage implements MessageHandler.
func (f HandleMessageFunc) HandleMessage(ctx context.Context, msg Message) {
	f(ctx, msg)
}

// Poster queues messages for the next loop iteration and wakes the loop.
type Poster interface {
	Post(msgs ...Message)
}

// Stage orders controllers within one iteration.
type Stage int

const (
	// StageControl handles commands and device input.
	StageControl Stage = iota
	// StagePublish sends out the state changed in StageControl.
	StagePublish
	// StageCleanup sees every message no earlier controller took.
	StageCleanup

	numStages
)

func (s Stage) String() string {
	switch s {
	case StageControl:
		return "control"
	case StagePublish:
		return "publish"
	case StageCleanup:
		return "cleanup"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ControlContext is handed to a Controller for one iteration.
type ControlContext interface {
	Poster
	Context() context.Context
	// Time is when the iteration started.
	Time() time.Time
	Stage() Stage
	// Take visits the pending messages in arrival order. Messages for which
	// fn returns true are removed, the rest stay visible to later
	// controllers of this iteration and are dropped afterwards.
	Take(fn func(Message) bool)
}

// Controller runs once per iteration at the stage it was added with.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc adapts a func to Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

func nameOf(v interface{}) string {
	if named, ok := v.(Named); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", v)
}
