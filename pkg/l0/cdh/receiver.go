package cdh

import (
	"context"
	"io"
	"os"
	"sync"
	"time"
)

const (
	// DefaultCommandTimeout is how long a partial command is kept.
	DefaultCommandTimeout = 50 * time.Millisecond

	// idleReadWait paces Run when the source returns no data at once.
	idleReadWait = 5 * time.Millisecond
)

// Receiver assembles commands from a stream. Run reads the Source in the
// background, Poll only looks at what was read already and never blocks.
type Receiver struct {
	Source io.Reader
	// Timeout drops a partial command if it isn't completed in time.
	// 0 keeps partial bytes forever.
	Timeout time.Duration

	lock    sync.Mutex
	queued  []byte
	readErr error

	buf     [CommandSize]byte
	recvLen int
	started time.Time
	now     func() time.Time
}

// NewReceiver creates a Receiver.
func NewReceiver(src io.Reader) *Receiver {
	return &Receiver{
		Source:  src,
		Timeout: DefaultCommandTimeout,
		now:     time.Now,
	}
}

// Run reads the Source until ctx is done or a read fails. EOF and read
// timeouts mean no data. The failure is also kept for Err.
func (r *Receiver) Run(ctx context.Context) error {
	chunk := make([]byte, 64)
	for ctx.Err() == nil {
		n, err := r.Source.Read(chunk)
		if n > 0 {
			r.Feed(chunk[:n])
		}
		switch {
		case err == nil:
		case isNoData(err):
			if n == 0 {
				select {
				case <-ctx.Done():
				case <-time.After(idleReadWait):
				}
			}
		default:
			r.lock.Lock()
			r.readErr = err
			r.lock.Unlock()
			return err
		}
	}
	return ctx.Err()
}

// Feed queues received bytes for Poll.
func (r *Receiver) Feed(b []byte) {
	r.lock.Lock()
	r.queued = append(r.queued, b...)
	r.lock.Unlock()
}

// Err is the read failure which stopped Run.
func (r *Receiver) Err() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.readErr
}

// Queued returns the number of bytes read but not yet polled.
func (r *Receiver) Queued() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.queued)
}

// Pending returns the number of bytes of a partial command.
func (r *Receiver) Pending() int {
	return r.recvLen
}

// Poll takes queued bytes up to one command. ok is true when a full
// command is assembled. A partial command which times out is returned
// as a *ShortReadError.
func (r *Receiver) Poll() (op Opcode, ok bool, err error) {
	r.lock.Lock()
	n := copy(r.buf[r.recvLen:], r.queued)
	if r.queued = r.queued[n:]; len(r.queued) == 0 {
		r.queued = nil
	}
	r.lock.Unlock()

	if n > 0 && r.recvLen == 0 {
		r.started = r.clock()
	}
	r.recvLen += n

	if r.recvLen == CommandSize {
		r.recvLen = 0
		op, err = DecodeOpcode(r.buf[:])
		return op, err == nil, err
	}
	if r.recvLen > 0 && r.Timeout > 0 && r.clock().Sub(r.started) >= r.Timeout {
		err = &ShortReadError{Data: append([]byte(nil), r.buf[:r.recvLen]...)}
		r.recvLen = 0
	}
	return
}

// Reset drops any partial command.
func (r *Receiver) Reset() {
	r.recvLen = 0
}

func (r *Receiver) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}

func isNoData(err error) bool {
	return err == io.EOF || os.IsTimeout(err)
}
