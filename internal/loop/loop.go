package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lantern/pkg/logging"
)

const subsystem = "Loop"

// ErrStopped is returned by Do once the loop has exited.
var ErrStopped = errors.New("loop stopped")

// Executor runs functions on the UI-bound execution context.
type Executor interface {
	// Post queues fn and returns immediately.
	Post(fn func())
}

// Loop is the single goroutine on which all reconciliation and controller
// state changes happen. Other goroutines hand work to it with Post or Do.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	stopped bool
}

// New creates a loop; call Run to start processing.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues fn. It never blocks; functions posted after the loop stopped
// are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	l.Post(func() { result <- fn() })

	select {
	case err := <-result:
		return err
	case <-l.done:
		// fn may have completed just before the loop exited.
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes posted functions until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.stopped = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	}()

	for {
		for {
			l.mu.Lock()
			if len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			fn := l.queue[0]
			l.queue = l.queue[1:]
			l.mu.Unlock()

			l.run(fn)
			if ctx.Err() != nil {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(subsystem, fmt.Errorf("%v", r), "Recovered from panic in loop task")
		}
	}()
	fn()
}
