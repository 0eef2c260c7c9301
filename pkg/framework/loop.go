package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the loop period when nothing is posted.
const DefaultInterval = 100 * time.Millisecond

// Loop is the gateway's single-threaded control loop. Runnables added to
// it run in the background and feed it through Post; controllers run
// stage by stage on every tick or after a Post.
type Loop struct {
	Interval time.Duration

	stages    [numStages][]Controller
	runnables []Runnable

	lock  sync.Mutex
	queue []Message
	wake  chan struct{}
}

// LoopAdder is a component which knows how to install itself in a Loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type posterKey struct{}

// PosterFrom returns the Loop which started the Runnable owning ctx.
func PosterFrom(ctx context.Context) Poster {
	return ctx.Value(posterKey{}).(Poster)
}

// NewLoop creates a Loop ticking at DefaultInterval.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, wake: make(chan struct{}, 1)}
}

// Add installs components.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, a := range adders {
		a.AddToLoop(l)
	}
	return l
}

// AddController appends controllers to a stage. A controller which is also
// a Runnable is started with the loop.
func (l *Loop) AddController(stage Stage, ctls ...Controller) *Loop {
	l.stages[stage] = append(l.stages[stage], ctls...)
	for _, ctl := range ctls {
		if r, ok := ctl.(Runnable); ok {
			l.runnables = append(l.runnables, r)
		}
	}
	return l
}

// AddRunnable adds background components started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runnables = append(l.runnables, runnables...)
	return l
}

// Post implements Poster.
func (l *Loop) Post(msgs ...Message) {
	l.lock.Lock()
	l.queue = append(l.queue, msgs...)
	l.lock.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	runner := NewRunnerWith(context.WithValue(ctx, posterKey{}, Poster(l))).Go(l.runnables...)
	defer func() {
		if err := runner.Wait(); err != nil {
			glog.Errorf("loop: %v", err)
		}
	}()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.iterate(ctx, now)
		case <-l.wake:
			l.iterate(ctx, time.Now())
		}
	}
}

func (l *Loop) iterate(ctx context.Context, now time.Time) {
	l.lock.Lock()
	it := &iteration{loop: l, time: now, pending: l.queue}
	l.queue = nil
	l.lock.Unlock()

	it.ctx = context.WithValue(ctx, posterKey{}, Poster(l))
	for stage, ctls := range l.stages {
		it.stage = Stage(stage)
		for _, ctl := range ctls {
			if err := ctl.Control(it); err != nil {
				glog.Errorf("%s %s: %v", it.stage, nameOf(ctl), err)
			}
		}
	}
	if n := len(it.pending); n > 0 {
		glog.V(4).Infof("loop: %d messages not taken", n)
	}
}

type iteration struct {
	loop    *Loop
	ctx     context.Context
	time    time.Time
	stage   Stage
	pending []Message
}

func (it *iteration) Context() context.Context { return it.ctx }
func (it *iteration) Time() time.Time          { return it.time }
func (it *iteration) Stage() Stage             { return it.stage }
func (it *iteration) Post(msgs ...Message)     { it.loop.Post(msgs...) }

func (it *iteration) Take(fn func(Message) bool) {
	kept := it.pending[:0]
	for _, msg := range it.pending {
		if !fn(msg) {
			kept = append(kept, msg)
		}
	}
	for n := len(kept); n < len(it.pending); n++ {
		it.pending[n] = nil
	}
	it.pending = kept
}
