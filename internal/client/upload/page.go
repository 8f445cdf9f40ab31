package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/scansync/internal/client/api"
	"github.com/dmitrijs2005/scansync/internal/client/dispatch"
	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/logging"
)

var errNoTerminalEvent = errors.New("upload stream ended without a result")

type PageController struct {
	page models.Page
	deps Deps
	log  logging.Logger

	mu        sync.Mutex
	status    models.UploadStatus
	done      chan struct{}
	observers dispatch.Observers[models.UploadStatus]
}

func newPageController(ctx context.Context, page models.Page, d Deps) (*PageController, error) {
	stored, found, err := d.PageStatuses.Get(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("hydrate page %s: %w", page.ID, err)
	}

	return &PageController{
		page:   page,
		deps:   d,
		log:    d.Logger.With("page_id", page.ID, "document_id", page.DocumentID),
		status: hydrate(stored, found),
	}, nil
}

func (c *PageController) Page() models.Page {
	return c.page
}

func (c *PageController) Status() models.UploadStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Subscribe registers fn for every later transition. Callbacks run on the
// dispatch executor. The returned func cancels the subscription.
func (c *PageController) Subscribe(fn func(models.UploadStatus)) (cancel func()) {
	return c.observers.Add(fn)
}

// Upload starts an upload attempt and reports whether one was started.
// Only a page in AwaitingInteraction can be uploaded; any other state makes
// Upload a no-op, so at most one attempt per page is ever in flight.
func (c *PageController) Upload(ctx context.Context) bool {
	c.mu.Lock()
	if c.status.Phase != models.PhaseAwaitingInteraction {
		c.mu.Unlock()
		return false
	}
	done := make(chan struct{})
	c.done = done
	notify := c.setLocked(ctx, models.InProgress(0))
	c.mu.Unlock()

	notify()
	go c.run(ctx, done)
	return true
}

func (c *PageController) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	image, err := c.deps.Blobs.Get(ctx, c.page.ImageRef)
	if err != nil {
		c.transition(ctx, models.Failed(fmt.Errorf("read image: %w", err)))
		return
	}

	terminal := false
	for ev := range c.deps.Remote.UploadPage(ctx, c.page, image) {
		switch ev.Kind {
		case api.KindProgress:
			c.transition(ctx, models.InProgress(ev.Fraction))
		case api.KindSuccess:
			terminal = true
			c.transition(ctx, models.InProgress(1))
			c.transition(ctx, models.Succeeded())
		case api.KindError:
			terminal = true
			c.transition(ctx, models.Failed(ev.Err))
		}
	}

	if !terminal {
		c.transition(ctx, models.Failed(errNoTerminalEvent))
	}
}

// Wait blocks until the running attempt, if any, reaches a terminal state.
func (c *PageController) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PrepareForReupload moves a Failed page back to AwaitingInteraction and
// reports whether it did. The stored record is removed so a restart also
// sees the page as not attempted.
func (c *PageController) PrepareForReupload(ctx context.Context) bool {
	c.mu.Lock()
	if c.status.Phase != models.PhaseFailed {
		c.mu.Unlock()
		return false
	}

	if err := c.deps.PageStatuses.Delete(context.WithoutCancel(ctx), c.page.ID); err != nil {
		c.log.Error(ctx, "failed to clear page status", "error", err)
	}
	c.status = models.AwaitingInteraction()
	c.mu.Unlock()

	c.observers.Notify(c.deps.Executor, models.AwaitingInteraction())
	return true
}

func (c *PageController) transition(ctx context.Context, s models.UploadStatus) {
	c.mu.Lock()
	notify := c.setLocked(ctx, s)
	c.mu.Unlock()
	notify()
}

// setLocked applies and persists s. The returned func posts the change to
// observers and must be called after c.mu is released.
func (c *PageController) setLocked(ctx context.Context, s models.UploadStatus) (notify func()) {
	c.status = s

	// a cancelled upload must still record its outcome
	if err := c.deps.PageStatuses.Save(context.WithoutCancel(ctx), c.page.ID, s); err != nil {
		c.log.Error(ctx, "failed to persist page status", "status", s.String(), "error", err)
	}

	switch s.Phase {
	case models.PhaseSuccess:
		c.log.Info(ctx, "page uploaded")
	case models.PhaseFailed:
		c.log.Warn(ctx, "page upload failed", "error", s.Cause)
	default:
		c.log.Debug(ctx, "page upload progress", "status", s.String())
	}

	return func() { c.observers.Notify(c.deps.Executor, s) }
}
