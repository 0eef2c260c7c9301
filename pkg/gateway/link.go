package gateway

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/cdh.go/pkg/l0/cdh"
)

// DefaultResyncTimeout drops a partial record when the line stays idle.
const DefaultResyncTimeout = 100 * time.Millisecond

// RecordHandler is called for each decoded telemetry record.
type RecordHandler interface {
	HandleRecord(context.Context, cdh.Record)
}

// HandleRecordFunc is func type of RecordHandler.
type HandleRecordFunc func(context.Context, cdh.Record)

// HandleRecord implements RecordHandler.
func (f HandleRecordFunc) HandleRecord(ctx context.Context, r cdh.Record) {
	f(ctx, r)
}

// LinkStats counts what the link has seen.
type LinkStats struct {
	Records uint64
	Errors  uint64
}

// Link is the console end of the serial link. It decodes the
// telemetry stream and sends opcodes.
type Link struct {
	Port    io.ReadWriter
	Parser  *cdh.Parser
	Handler RecordHandler
	// ResyncTimeout drops a partial record if no more bytes arrive in time.
	ResyncTimeout time.Duration
	// ReadTimeout is set if Port.Read returns io.EOF or a timeout
	// error when idle instead of blocking.
	ReadTimeout bool

	sendLock  sync.Mutex
	statsLock sync.Mutex
	stats     LinkStats
}

// NewLink creates a Link.
func NewLink(port io.ReadWriter, layouts cdh.Layouts) *Link {
	return &Link{
		Port:          port,
		Parser:        cdh.NewParser(layouts),
		ResyncTimeout: DefaultResyncTimeout,
	}
}

// Send sends an opcode to the device.
func (l *Link) Send(op cdh.Opcode) error {
	l.sendLock.Lock()
	defer l.sendLock.Unlock()
	glog.V(2).Infof("send opcode %s", op)
	_, err := op.WriteTo(l.Port)
	return err
}

// Stats returns the current stats.
func (l *Link) Stats() LinkStats {
	l.statsLock.Lock()
	defer l.statsLock.Unlock()
	return l.stats
}

// Name implements Named.
func (l *Link) Name() string {
	return "cdh-link"
}

// Run implements Runnable.
func (l *Link) Run(ctx context.Context) error {
	chunkCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, chunkCh, errCh)

	var syncTimer <-chan time.Time
	for {
		select {
		case chunk := <-chunkCh:
			var receiving bool
			for _, b := range chunk {
				receiving = l.apply(ctx, l.Parser.Parse(b))
			}
			syncTimer = nil
			if receiving && l.ResyncTimeout > 0 {
				syncTimer = time.After(l.ResyncTimeout)
			}
		case <-syncTimer:
			syncTimer = nil
			if l.Parser.Timeout() {
				glog.V(2).Info("partial record dropped")
				l.count(false)
			}
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Link) apply(ctx context.Context, pr cdh.ParseResult) bool {
	switch {
	case pr.Err != nil:
		glog.V(2).Infof("telemetry parse error: %v", pr.Err)
		l.count(false)
	case pr.Record != nil:
		glog.V(4).Infof("telemetry record %d", pr.Record.ID())
		l.count(true)
		if h := l.Handler; h != nil {
			h.HandleRecord(ctx, pr.Record)
		}
	}
	return pr.Receiving
}

func (l *Link) count(ok bool) {
	l.statsLock.Lock()
	if ok {
		l.stats.Records++
	} else {
		l.stats.Errors++
	}
	l.statsLock.Unlock()
}

func (l *Link) readLoop(ctx context.Context, chunkCh chan<- []byte, errCh chan<- error) {
	buf := make([]byte, 64)
	for {
		n, err := l.Port.Read(buf)
		if n > 0 {
			select {
			case chunkCh <- append([]byte(nil), buf[:n]...):
			case <-ctx.Done():
				return
			}
		}
		if err != nil && !(l.ReadTimeout && (err == io.EOF || os.IsTimeout(err))) {
			errCh <- err
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}
