package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

func TestRunnerCollectsErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	failure := errors.New("port closed")
	r := NewRunnerWith(ctx).Go(
		runFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
		NamedRun("failing", runFunc(func(context.Context) error {
			return failure
		})),
	)
	cancel()
	err := r.Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, failure))
	require.Equal(t, "failing: port closed", err.Error())
}

func TestRunnerIgnoresCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx).Go(runFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	require.NoError(t, r.Wait())
}

type testCloser struct {
	closed chan struct{}
}

func (c *testCloser) Close() error {
	close(c.closed)
	return nil
}

func TestRunWithCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	closer := &testCloser{closed: make(chan struct{})}
	errCh := make(chan error, 1)
	go func() {
		errCh <- RunWithCloser(ctx, closer, func() error {
			<-closer.closed
			return errors.New("use of closed connection")
		})
	}()
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("not stopped")
	}

	closer = &testCloser{closed: make(chan struct{})}
	err := RunWithCloser(context.Background(), closer, func() error { return nil })
	require.NoError(t, err)
	<-closer.closed
}
