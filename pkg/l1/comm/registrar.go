package comm

import (
	"context"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l1"
	"github.com/robotalks/cdh.go/pkg/l1/msgs"
)

// Registrar is the gateway end of one Transport. It must run in the
// gateway Loop: commands are posted there as *l1.CommandMsg.
type Registrar struct {
	pipe Pipe
}

// NewRegistrar creates a Registrar on t.
func NewRegistrar(t Transport) *Registrar {
	r := &Registrar{}
	r.pipe.Transport = t
	r.pipe.Handler = msgs.HandlerFunc(r.receive)
	return r
}

func (r *Registrar) receive(ctx context.Context, msg fx.Message, env *msgs.Envelope) error {
	if !env.ID().IsCommand() {
		glog.V(4).Infof("registrar: ignored %s", env.ID())
		return nil
	}
	fx.PosterFrom(ctx).Post(&l1.CommandMsg{Command: &command{pipe: &r.pipe, seq: env.Seq, msg: msg}})
	return nil
}

// SendEvent implements l1.Registrar.
func (r *Registrar) SendEvent(_ context.Context, msg fx.Message) error {
	return r.pipe.Send(msg, 0)
}

// Run receives commands until the transport fails or ctx is done.
func (r *Registrar) Run(ctx context.Context) error {
	return r.pipe.Run(ctx)
}

// Close closes the transport.
func (r *Registrar) Close() error {
	return r.pipe.Close()
}

// AddToLoop implements fx.LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(r)
}

type command struct {
	pipe *Pipe
	seq  uint32
	msg  fx.Message
}

func (c *command) Msg() fx.Message {
	return c.msg
}

func (c *command) Reply(msg fx.Message) error {
	return c.pipe.Send(msg, c.seq)
}

// Hub is an l1.Registrar sending events to a set of registrars which may
// change while the gateway runs.
type Hub struct {
	lock sync.RWMutex
	regs []l1.Registrar
}

// Add adds registrars.
func (h *Hub) Add(regs ...l1.Registrar) {
	h.lock.Lock()
	h.regs = append(h.regs, regs...)
	h.lock.Unlock()
}

// Remove removes reg if present.
func (h *Hub) Remove(reg l1.Registrar) {
	h.lock.Lock()
	defer h.lock.Unlock()
	kept := h.regs[:0]
	for _, r := range h.regs {
		if r != reg {
			kept = append(kept, r)
		}
	}
	for n := len(kept); n < len(h.regs); n++ {
		h.regs[n] = nil
	}
	h.regs = kept
}

// Registrars returns a copy of the current set.
func (h *Hub) Registrars() []l1.Registrar {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return append([]l1.Registrar(nil), h.regs...)
}

// SendEvent implements l1.Registrar. Every registrar is tried.
func (h *Hub) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.MultiError
	for _, reg := range h.Registrars() {
		errs.Append(reg.SendEvent(ctx, msg))
	}
	return errs.Err()
}

// AddToLoop installs the registrars which are LoopAdders.
func (h *Hub) AddToLoop(loop *fx.Loop) {
	for _, reg := range h.Registrars() {
		if a, ok := reg.(fx.LoopAdder); ok {
			loop.Add(a)
		}
	}
}

// RejectUnhandled answers the commands no controller took with
// ErrUnsupportedCommand.
type RejectUnhandled struct{}

// Control implements fx.Controller.
func (RejectUnhandled) Control(cc fx.ControlContext) error {
	cc.Take(func(msg fx.Message) bool {
		cmd, ok := msg.(*l1.CommandMsg)
		if ok {
			if err := cmd.Reply(msgs.NewCommandErr(msgs.ErrUnsupportedCommand)); err != nil {
				glog.Warningf("reject %T: %v", cmd.Msg(), err)
			}
		}
		return ok
	})
	return nil
}

// AddToLoop implements fx.LoopAdder.
func (r RejectUnhandled) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.StageCleanup, r)
}
