package upload

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/scansync/internal/client/api"
	"github.com/dmitrijs2005/scansync/internal/client/dispatch"
	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/logging"
)

type DocumentController struct {
	doc   models.Document
	pages []*PageController
	deps  Deps
	log   logging.Logger

	mu         sync.Mutex
	submission models.UploadStatus
	running    bool
	cancel     context.CancelFunc
	done       chan struct{}
	observers  dispatch.Observers[models.UploadStatus]
}

func newDocumentController(ctx context.Context, doc models.Document, pages []*PageController, d Deps) (*DocumentController, error) {
	stored, found, err := d.DocumentStatuses.Get(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("hydrate document %s: %w", doc.ID, err)
	}

	c := &DocumentController{
		doc:        doc,
		pages:      pages,
		deps:       d,
		log:        d.Logger.With("document_id", doc.ID),
		submission: hydrate(stored, found),
	}

	// page callbacks already run on the executor
	for _, p := range pages {
		p.Subscribe(func(models.UploadStatus) { c.notifyNow() })
	}
	return c, nil
}

func (c *DocumentController) ID() string {
	return c.doc.ID
}

func (c *DocumentController) Document() models.Document {
	return c.doc
}

func (c *DocumentController) Pages() []*PageController {
	return append([]*PageController(nil), c.pages...)
}

// Status returns the aggregate of the submission and page statuses.
func (c *DocumentController) Status() models.UploadStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *DocumentController) statusLocked() models.UploadStatus {
	items := make([]models.UploadStatus, 0, len(c.pages)+1)
	items = append(items, c.submission)
	for _, p := range c.pages {
		items = append(items, p.Status())
	}
	return Aggregate(items)
}

// Aggregate folds item statuses into one: any Failed wins (first cause),
// then any InProgress (mean fraction, awaiting counts 0 and success 1), then
// Success when every item succeeded, else AwaitingInteraction.
func Aggregate(items []models.UploadStatus) models.UploadStatus {
	var (
		inProgress bool
		succeeded  int
		sum        float64
	)
	for _, s := range items {
		switch s.Phase {
		case models.PhaseFailed:
			return models.Failed(s.Cause)
		case models.PhaseInProgress:
			inProgress = true
			sum += s.Fraction
		case models.PhaseSuccess:
			succeeded++
			sum++
		}
	}

	switch {
	case inProgress:
		return models.InProgress(sum / float64(len(items)))
	case len(items) > 0 && succeeded == len(items):
		return models.Succeeded()
	default:
		return models.AwaitingInteraction()
	}
}

// Subscribe registers fn for aggregate status changes. Callbacks run on the
// dispatch executor.
func (c *DocumentController) Subscribe(fn func(models.UploadStatus)) (cancel func()) {
	return c.observers.Add(fn)
}

// Upload submits the document, unless that already succeeded, and then
// uploads every page that awaits upload. It reports whether an attempt was
// started: the aggregate must be AwaitingInteraction and no attempt may be
// running.
func (c *DocumentController) Upload(ctx context.Context) bool {
	c.mu.Lock()
	if c.running || c.statusLocked().Phase != models.PhaseAwaitingInteraction {
		c.mu.Unlock()
		return false
	}
	c.running = true
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	done := make(chan struct{})
	c.done = done
	c.deps.Registry.add(c)
	c.mu.Unlock()

	go c.run(ctx, done)
	return true
}

func (c *DocumentController) run(ctx context.Context, done chan struct{}) {
	defer func() {
		c.deps.Registry.remove(c)
		c.mu.Lock()
		c.running = false
		c.cancel()
		c.cancel = nil
		c.mu.Unlock()
		close(done)
	}()

	if !c.submit(ctx) {
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(c.deps.MaxConcurrentPages)

	for _, p := range c.pages {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if p.Upload(ctx) {
				// the attempt ends only when every started page has settled
				_ = p.Wait(context.WithoutCancel(ctx))
			}
			// a failed page leaves its siblings running
			return nil
		})
	}
	_ = g.Wait()

	s := c.Status()
	c.log.Info(ctx, "document upload finished", "status", s.String())
}

// submit registers the document with the service and reports whether the
// submission is in Success afterwards.
func (c *DocumentController) submit(ctx context.Context) bool {
	c.mu.Lock()
	if c.submission.Phase == models.PhaseSuccess {
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()

	c.setSubmission(ctx, models.InProgress(0))

	result := models.Failed(errNoTerminalEvent)
	for ev := range c.deps.Remote.SubmitDocument(ctx, c.doc) {
		switch ev.Kind {
		case api.KindProgress:
			c.setSubmission(ctx, models.InProgress(ev.Fraction))
		case api.KindSuccess:
			result = models.Succeeded()
		case api.KindError:
			result = models.Failed(ev.Err)
		}
	}

	c.setSubmission(ctx, result)
	if result.Phase == models.PhaseFailed {
		c.log.Warn(ctx, "document submission failed", "error", result.Cause)
		return false
	}
	return true
}

func (c *DocumentController) setSubmission(ctx context.Context, s models.UploadStatus) {
	c.mu.Lock()
	c.submission = s
	if err := c.deps.DocumentStatuses.Save(context.WithoutCancel(ctx), c.doc.ID, s); err != nil {
		c.log.Error(ctx, "failed to persist document status", "status", s.String(), "error", err)
	}
	c.mu.Unlock()

	c.deps.Executor.Post(c.notifyNow)
}

// Running reports whether an upload attempt is in flight. A running
// document can report Failed while sibling pages are still uploading.
func (c *DocumentController) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Cancel aborts the running attempt, if any. Pages that were in flight end
// as Failed; pages not yet started stay AwaitingInteraction. Use Wait to
// block until the attempt has settled.
func (c *DocumentController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// Wait blocks until the running attempt, if any, has finished.
func (c *DocumentController) Wait(ctx context.Context) error {
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

// PrepareForReupload resets a failed submission and every failed page to
// AwaitingInteraction. It is a no-op unless the aggregate is Failed and no
// attempt is running.
func (c *DocumentController) PrepareForReupload(ctx context.Context) bool {
	c.mu.Lock()
	if c.running || c.statusLocked().Phase != models.PhaseFailed {
		c.mu.Unlock()
		return false
	}

	if c.submission.Phase == models.PhaseFailed {
		if err := c.deps.DocumentStatuses.Delete(context.WithoutCancel(ctx), c.doc.ID); err != nil {
			c.log.Error(ctx, "failed to clear document status", "error", err)
		}
		c.submission = models.AwaitingInteraction()
	}
	pages := c.pages
	c.mu.Unlock()

	for _, p := range pages {
		p.PrepareForReupload(ctx)
	}
	c.deps.Executor.Post(c.notifyNow)
	return true
}

// notifyNow calls observers with the current aggregate on the calling
// goroutine, which must be the executor.
func (c *DocumentController) notifyNow() {
	s := c.Status()
	for _, fn := range c.observers.Snapshot() {
		fn(s)
	}
}
