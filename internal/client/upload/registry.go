package upload

import (
	"context"
	"sync"
)

// Registry tracks documents with a running upload attempt so that callers
// deleting local data can stop them first.
type Registry struct {
	mu      sync.Mutex
	running map[string]*DocumentController
}

func NewRegistry() *Registry {
	return &Registry{running: make(map[string]*DocumentController)}
}

func (r *Registry) add(c *DocumentController) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running[c.ID()] = c
}

func (r *Registry) remove(c *DocumentController) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running[c.ID()] == c {
		delete(r.running, c.ID())
	}
}

// Running reports whether the document with the given id is uploading.
func (r *Registry) Running(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.running[id]
	return ok
}

// Stop cancels the attempt of the document with the given id and waits for
// it to settle. It returns nil when nothing is running.
func (r *Registry) Stop(ctx context.Context, id string) error {
	r.mu.Lock()
	c := r.running[id]
	r.mu.Unlock()

	if c == nil {
		return nil
	}
	c.Cancel()
	return c.Wait(ctx)
}

// StopAll cancels every running attempt and waits for all of them.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	cs := make([]*DocumentController, 0, len(r.running))
	for _, c := range r.running {
		cs = append(cs, c)
	}
	r.mu.Unlock()

	for _, c := range cs {
		c.Cancel()
	}
	for _, c := range cs {
		if err := c.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
