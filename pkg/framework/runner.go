package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string { return r.name }

// NamedRun gives runnable a name for logs and errors.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{Runnable: runnable, name: name}
}

// Runner starts Runnables sharing one context and collects their errors.
type Runner struct {
	ctx context.Context
	wg  sync.WaitGroup

	lock sync.Mutex
	errs MultiError
}

// NewRunner creates a Runner on the background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a Runner on ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{ctx: ctx}
}

// HandleSignals cancels the runners on SIGINT or SIGTERM. Default signal
// handling is restored afterwards, so a second signal kills the process.
// Call it before Go.
func (r *Runner) HandleSignals() *Runner {
	ctx, stop := signal.NotifyContext(r.ctx, os.Interrupt, syscall.SIGTERM)
	r.ctx = ctx
	go func() {
		<-ctx.Done()
		stop()
		glog.Infof("stopping: %v", ctx.Err())
	}()
	return r
}

// Go starts runnables in their own goroutines.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		r.wg.Add(1)
		go r.run(runnable)
	}
	return r
}

func (r *Runner) run(runnable Runnable) {
	defer r.wg.Done()
	name := nameOf(runnable)
	glog.V(4).Infof("%s started", name)
	err := runnable.Run(r.ctx)
	glog.V(4).Infof("%s stopped: %v", name, err)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	r.lock.Lock()
	r.errs.Append(fmt.Errorf("%s: %w", name, err))
	r.lock.Unlock()
}

// Wait blocks until every runnable returned. Cancellation is not an error.
func (r *Runner) Wait() error {
	r.wg.Wait()
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.errs.Err()
}

// RunWithCloser runs a blocking fn which has no context, e.g. Accept or
// Read. closer is closed when ctx is done to unblock fn, and again after fn
// returns; it only sees one Close. The result is ctx.Err() once ctx is done.
func RunWithCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	var once sync.Once
	closeOnce := func() {
		once.Do(func() { closer.Close() })
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			closeOnce()
		case <-done:
		}
	}()
	err := fn()
	close(done)
	closeOnce()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
