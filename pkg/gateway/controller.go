package gateway

import (
	"context"

	"github.com/golang/glog"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l0/cdh"
	"github.com/robotalks/cdh.go/pkg/l1"
	"github.com/robotalks/cdh.go/pkg/l1/msgs"
)

// Controller is the L1 controller bridging the serial link and L2.
// Telemetry records become events, L2 commands become opcodes.
type Controller struct {
	Link      *Link
	Registrar l1.Registrar

	led      *msgs.LEDState
	counters *msgs.CommandCounters
	pending  []fx.Message
}

// NewController creates a Controller.
func NewController(link *Link, reg l1.Registrar) *Controller {
	c := &Controller{Link: link, Registrar: reg}
	link.Handler = HandleRecordFunc(c.postRecord)
	return c
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(c.Link)
	loop.AddController(fx.StageControl, c)
	loop.AddController(fx.StagePublish, fx.ControlFunc(c.publishEvents))
}

// Control implements Controller. Commands it doesn't know are left for
// later controllers.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Take(func(msg fx.Message) bool {
		switch m := msg.(type) {
		case *recordMsg:
			c.updateTelemetry(m.record)
			return true
		case *l1.CommandMsg:
			reply := c.execute(m.Msg())
			if reply == nil {
				return false
			}
			if err := m.Reply(reply); err != nil {
				glog.Warningf("reply %T: %v", m.Msg(), err)
			}
			return true
		}
		return false
	})
	return nil
}

func (c *Controller) execute(cmd fx.Message) fx.Message {
	switch m := cmd.(type) {
	case *msgs.SendOpcode:
		return c.sendOpcode(cdh.Opcode(m.Opcode))
	case *msgs.TelemetryQuery:
		return c.telemetry()
	}
	return nil
}

// Telemetry returns the latest telemetry.
func (c *Controller) telemetry() *msgs.Telemetry {
	stats := c.Link.Stats()
	return &msgs.Telemetry{
		Led:      c.led,
		Counters: c.counters,
		Records:  stats.Records,
		Errors:   stats.Errors,
	}
}

func (c *Controller) sendOpcode(op cdh.Opcode) fx.Message {
	if !op.IsValid() {
		// the device counts it as an invalid command.
		glog.V(2).Infof("sending unrecognized opcode %s", op)
	}
	if err := c.Link.Send(op); err != nil {
		glog.Errorf("send opcode %s error: %v", op, err)
		return msgs.NewCommandErr(err)
	}
	return &msgs.CommandOK{}
}

func (c *Controller) updateTelemetry(r cdh.Record) {
	ev := msgs.FromRecord(r)
	switch m := ev.(type) {
	case *msgs.LEDState:
		c.led = m
	case *msgs.CommandCounters:
		c.counters = m
	default:
		return
	}
	c.pending = append(c.pending, ev)
}

func (c *Controller) publishEvents(cc fx.ControlContext) error {
	var errs fx.MultiError
	for _, ev := range c.pending {
		errs.Append(c.Registrar.SendEvent(cc.Context(), ev))
	}
	c.pending = c.pending[:0]
	if err := errs.Err(); err != nil {
		glog.Warningf("publish telemetry: %v", err)
	}
	return nil
}

func (c *Controller) postRecord(ctx context.Context, r cdh.Record) {
	fx.PosterFrom(ctx).Post(&recordMsg{record: r})
}

type recordMsg struct {
	record cdh.Record
}

func (m *recordMsg) NewMessage() fx.Message { return &recordMsg{} }
