// Package dispatch provides the execution context on which UI-visible status
// notifications run. Controllers never call observers directly; they post to
// an Executor so that all observer callbacks of a process run serially on one
// goroutine.
package dispatch

import (
	"context"
	"sync"
)

// Executor runs posted functions. Implementations must preserve posting order.
type Executor interface {
	Post(fn func())
}

// Inline runs each function synchronously on the posting goroutine.
type Inline struct{}

func (Inline) Post(fn func()) { fn() }

// Loop is an Executor backed by a single goroutine started with Run.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop returns a loop whose queue holds up to buf pending functions; Post
// blocks once the queue is full.
func NewLoop(buf int) *Loop {
	return &Loop{
		queue: make(chan func(), buf),
		done:  make(chan struct{}),
	}
}

// Post enqueues fn. After the loop has stopped, fn is dropped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}

	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Run executes posted functions until ctx is cancelled. Functions still
// queued when ctx ends are drained before Run returns.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-ctx.Done():
			for {
				select {
				case fn := <-l.queue:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
