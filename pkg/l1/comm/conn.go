package comm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l1"
	"github.com/robotalks/cdh.go/pkg/l1/msgs"
)

// DefaultTimeout is how long a command waits for its reply.
const DefaultTimeout = time.Second

// ErrConnClosed fails the commands pending when a Conn stops.
var ErrConnClosed = errors.New("connection closed")

// Conn implements l1.Conn on a Transport. Replies are matched to commands
// by sequence number; a command without a reply after Timeout fails with
// context.DeadlineExceeded.
type Conn struct {
	Timeout time.Duration

	pipe Pipe

	lock    sync.Mutex
	seq     uint32
	pending map[uint32]*pendingCmd
	watcher fx.MessageHandler

	stop context.CancelFunc
	done chan struct{}
}

type pendingCmd struct {
	deadline time.Time
	result   chan l1.Result
}

// NewConn creates a Conn on t. Use Start or Run to receive replies.
func NewConn(t Transport) *Conn {
	c := &Conn{Timeout: DefaultTimeout, pending: make(map[uint32]*pendingCmd)}
	c.pipe.Transport = t
	c.pipe.Handler = msgs.HandlerFunc(c.receive)
	return c
}

// Start runs the Conn in the background until Close.
func (c *Conn) Start() *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	c.stop, c.done = cancel, make(chan struct{})
	go func() {
		defer close(c.done)
		c.Run(ctx)
	}()
	return c
}

// Close stops a started Conn, or closes the transport otherwise.
func (c *Conn) Close() error {
	if c.stop == nil {
		return c.pipe.Close()
	}
	c.stop()
	<-c.done
	return nil
}

// Run receives until the transport fails or ctx is done. Pending commands
// fail with ErrConnClosed afterwards.
func (c *Conn) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.pipe.Run(ctx)
	}()
	ticker := time.NewTicker(c.timeout() / 4)
	defer ticker.Stop()
	for {
		select {
		case err := <-errCh:
			c.failPending(ErrConnClosed)
			return err
		case now := <-ticker.C:
			c.expire(now)
		}
	}
}

// Send implements l1.Conn.
func (c *Conn) Send(msg fx.Message) <-chan l1.Result {
	result := make(chan l1.Result, 1)
	c.lock.Lock()
	c.seq++
	if c.seq == 0 {
		c.seq = 1
	}
	seq := c.seq
	c.pending[seq] = &pendingCmd{deadline: time.Now().Add(c.timeout()), result: result}
	c.lock.Unlock()

	if err := c.pipe.Send(msg, seq); err != nil {
		c.resolve(seq, l1.Result{Err: err})
	}
	return result
}

// Watch implements l1.Conn.
func (c *Conn) Watch(h fx.MessageHandler) {
	c.lock.Lock()
	c.watcher = h
	c.lock.Unlock()
}

// Pending is the number of commands waiting for a reply.
func (c *Conn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.pending)
}

func (c *Conn) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *Conn) receive(ctx context.Context, msg fx.Message, env *msgs.Envelope) error {
	switch id := env.ID(); {
	case id.IsEvent():
		c.lock.Lock()
		w := c.watcher
		c.lock.Unlock()
		if w != nil {
			w.HandleMessage(ctx, msg)
		}
	case id.IsReply():
		res := l1.Result{Msg: msg}
		if cmdErr, ok := msg.(*msgs.CommandErr); ok {
			res.Err = cmdErr
		}
		if !c.resolve(env.Seq, res) {
			glog.V(2).Infof("conn: reply #%d has no pending command", env.Seq)
		}
	default:
		glog.V(2).Infof("conn: ignored command %s", id)
	}
	return nil
}

func (c *Conn) resolve(seq uint32, res l1.Result) bool {
	c.lock.Lock()
	p := c.pending[seq]
	delete(c.pending, seq)
	c.lock.Unlock()
	if p == nil {
		return false
	}
	p.result <- res
	return true
}

func (c *Conn) expire(now time.Time) {
	var expired []*pendingCmd
	c.lock.Lock()
	for seq, p := range c.pending {
		if !now.Before(p.deadline) {
			expired = append(expired, p)
			delete(c.pending, seq)
		}
	}
	c.lock.Unlock()
	for _, p := range expired {
		p.result <- l1.Result{Err: context.DeadlineExceeded}
	}
}

func (c *Conn) failPending(err error) {
	c.lock.Lock()
	pending := c.pending
	c.pending = make(map[uint32]*pendingCmd)
	c.lock.Unlock()
	for _, p := range pending {
		p.result <- l1.Result{Err: err}
	}
}
