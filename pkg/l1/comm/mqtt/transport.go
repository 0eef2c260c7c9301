package mqtt

import (
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/cdh.go/pkg/l1"
)

// Topic suffixes below "<type>/<id>".
const (
	MetaSuffix = "meta"
	MsgSuffix  = "msg"
	CmdSuffix  = "cmd"
)

// Topic returns "<type>/<id>/<suffix>".
func Topic(ref l1.GatewayRef, suffix string) string {
	return ref.String() + "/" + suffix
}

// Transport is a comm.Transport reading one topic and writing another.
type Transport struct {
	Session *Session
	In, Out string

	sub     *Subscription
	packets chan []byte
	closed  chan struct{}
	once    sync.Once
	// own closes Session along with the transport.
	own bool
}

// NewTransport subscribes in and returns the Transport.
func NewTransport(s *Session, in, out string) *Transport {
	t := &Transport{
		Session: s,
		In:      in,
		Out:     out,
		packets: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
	t.sub = s.Subscribe(in, t.receive)
	return t
}

// GatewayTransport receives commands and sends events and replies of ref.
func GatewayTransport(s *Session, ref l1.GatewayRef) *Transport {
	return NewTransport(s, Topic(ref, CmdSuffix), Topic(ref, MsgSuffix))
}

// ToolTransport sends commands to ref and receives its events and replies.
func ToolTransport(s *Session, ref l1.GatewayRef) *Transport {
	return NewTransport(s, Topic(ref, MsgSuffix), Topic(ref, CmdSuffix))
}

func (t *Transport) receive(topic string, payload []byte) {
	select {
	case t.packets <- payload:
	case <-t.closed:
		glog.V(2).Infof("mqtt: %s: dropped packet after close", topic)
	}
}

// ReadPacket implements comm.Transport.
func (t *Transport) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-t.packets:
		return pkt, nil
	case <-t.closed:
		return nil, io.EOF
	}
}

// WritePacket implements comm.Transport.
func (t *Transport) WritePacket(pkt []byte) error {
	token := t.Session.Publish(t.Out, pkt, false)
	token.Wait()
	return token.Error()
}

// Close unsubscribes and unblocks ReadPacket.
func (t *Transport) Close() error {
	var err error
	t.once.Do(func() {
		close(t.closed)
		err = t.sub.Close()
		if t.own {
			t.Session.Close()
		}
	})
	return err
}
