package api

import (
	"errors"
	"io"
	"sync"
)

// progressBuffer is the number of progress events a slow consumer may lag
// behind before further progress is dropped.
const progressBuffer = 16

var errStreamClosed = errors.New("event stream closed without terminal event")

// emitter owns the event channel of one call. The last buffer slot is kept
// free for the terminal event, so neither progress nor finish ever blocks.
type emitter[T any] struct {
	mu   sync.Mutex
	ch   chan Event[T]
	done bool
}

func newEmitter[T any]() *emitter[T] {
	return &emitter[T]{ch: make(chan Event[T], progressBuffer+1)}
}

func (e *emitter[T]) progress(f float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done || len(e.ch) >= cap(e.ch)-1 {
		return
	}
	e.ch <- progressEvent[T](f)
}

// finish sends the terminal event and closes the channel. It reports false
// if the stream was already terminated.
func (e *emitter[T]) finish(ev Event[T]) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return false
	}
	e.done = true
	e.ch <- ev
	close(e.ch)
	return true
}

// progressReader reports the fraction of an upload body consumed by the
// transport.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.read += int64(n)
		p.report(float64(p.read) / float64(p.total))
	}
	return n, err
}
