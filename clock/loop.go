package clock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loop is a real-time Clock that serializes every callback onto the
// goroutine running Run.
type Loop struct {
	ops  chan func()
	done chan struct{}
	once sync.Once
}

// NewLoop creates a loop. Nothing runs until Run is called.
func NewLoop() *Loop {
	return &Loop{
		ops:  make(chan func(), 64),
		done: make(chan struct{}),
	}
}

// Run processes posted work until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-l.ops:
			f()
		}
	}
}

// Post queues f to run on the loop. It is a no-op once the loop has stopped.
func (l *Loop) Post(f func()) {
	select {
	case l.ops <- f:
	case <-l.done:
	}
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			t.fired.Store(true)
			f()
		})
	})
	return t
}

func (l *Loop) Every(d time.Duration, f func()) (stop func()) {
	if d <= 0 {
		return func() {}
	}

	var (
		quit    = make(chan struct{})
		stopped atomic.Bool
		once    sync.Once
	)

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					if !stopped.Load() {
						f()
					}
				})
			case <-quit:
				return
			case <-l.done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			stopped.Store(true)
			close(quit)
		})
	}
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	if t.stopped.Swap(true) {
		return false
	}
	return !t.fired.Load()
}
