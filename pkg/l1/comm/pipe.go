package comm

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l1/msgs"
)

// Pipe exchanges messages over a Transport. Received messages go to
// Handler; a command which can't be decoded is answered with CommandErr.
type Pipe struct {
	Transport Transport
	Handler   msgs.Handler

	writeLock sync.Mutex
}

// Send wraps msg with seq and writes it. Writes are serialized.
func (p *Pipe) Send(msg fx.Message, seq uint32) error {
	env, err := msgs.Wrap(msg, seq)
	if err != nil {
		return err
	}
	pkt, err := env.Marshal()
	if err != nil {
		return err
	}
	p.writeLock.Lock()
	defer p.writeLock.Unlock()
	return p.Transport.WritePacket(pkt)
}

// Run reads until the transport fails or ctx is done, then closes the
// transport.
func (p *Pipe) Run(ctx context.Context) error {
	return fx.RunWithCloser(ctx, p, func() error {
		for {
			pkt, err := p.Transport.ReadPacket()
			if err != nil {
				return err
			}
			if err = p.receive(ctx, pkt); err != nil {
				return err
			}
		}
	})
}

func (p *Pipe) receive(ctx context.Context, pkt []byte) error {
	env, err := msgs.ParseEnvelope(pkt)
	if err != nil {
		glog.Warningf("pipe: dropped malformed packet: %v", err)
		return nil
	}
	msg, err := env.Unwrap()
	if err != nil {
		glog.V(2).Infof("pipe: #%d: %v", env.Seq, err)
		if env.ID().IsCommand() {
			return p.Send(msgs.NewCommandErr(err), env.Seq)
		}
		return nil
	}
	if p.Handler == nil {
		return nil
	}
	return p.Handler.HandleEnvelope(ctx, msg, env)
}

// Close closes the transport if it can be closed.
func (p *Pipe) Close() error {
	if c, ok := p.Transport.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
