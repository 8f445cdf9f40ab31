package dispatch

import "sync"

// Observers is a registry of callbacks for values of type T. The zero value
// is ready to use.
type Observers[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

// Add registers fn and returns a func that removes it. Removing twice is
// harmless.
func (o *Observers[T]) Add(fn func(T)) (cancel func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fns == nil {
		o.fns = make(map[int]func(T))
	}
	id := o.next
	o.next++
	o.fns[id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.fns, id)
	}
}

// Snapshot returns the registered callbacks in registration order.
func (o *Observers[T]) Snapshot() []func(T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]func(T), 0, len(o.fns))
	for i := 0; i < o.next; i++ {
		if fn, ok := o.fns[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// Notify posts one function to exec that calls every callback registered
// at the time of the call with v.
func (o *Observers[T]) Notify(exec Executor, v T) {
	fns := o.Snapshot()
	if len(fns) == 0 {
		return
	}
	exec.Post(func() {
		for _, fn := range fns {
			fn(v)
		}
	})
}
