package documents

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/client/upload"
)

// Loader reads stored documents. *storage.Store satisfies it.
type Loader interface {
	LoadDocuments(ctx context.Context) ([]models.Document, error)
	LoadPages(ctx context.Context, documentID string) ([]models.Page, error)
}

// List is the displayed document list, most recent first.
type List struct {
	loader  Loader
	factory *upload.Factory

	mu   sync.Mutex
	docs []*upload.DocumentController
}

// NewList builds the list from storage.
func NewList(ctx context.Context, loader Loader, factory *upload.Factory) (*List, error) {
	l := &List{loader: loader, factory: factory}
	if err := l.Load(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Load replaces the list with a fresh controller for every stored document.
func (l *List) Load(ctx context.Context) error {
	docs, err := l.build(ctx, nil)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.docs = docs
	l.mu.Unlock()
	return nil
}

// Update reloads the list from storage. Documents whose attempt is still
// running, or whose status is active, keep their controller and move to the
// front in their previous relative order; everything else is rebuilt from
// the stored records. A running attempt can already aggregate to Failed
// while sibling pages upload, so its status alone does not decide.
func (l *List) Update(ctx context.Context) error {
	l.mu.Lock()
	var active []*upload.DocumentController
	for _, d := range l.docs {
		if d.Running() || d.Status().IsActive() {
			active = append(active, d)
		}
	}
	l.mu.Unlock()

	skip := make(map[string]bool, len(active))
	for _, d := range active {
		skip[d.ID()] = true
	}

	fresh, err := l.build(ctx, skip)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.docs = append(active, fresh...)
	l.mu.Unlock()
	return nil
}

// build creates controllers for stored documents not in skip, most recent
// first.
func (l *List) build(ctx context.Context, skip map[string]bool) ([]*upload.DocumentController, error) {
	stored, err := l.loader.LoadDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	out := make([]*upload.DocumentController, 0, len(stored))
	for _, doc := range stored {
		if skip[doc.ID] {
			continue
		}
		pages, err := l.loader.LoadPages(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("load pages of %s: %w", doc.ID, err)
		}
		c, err := l.factory.Document(ctx, doc, pages)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	slices.Reverse(out)
	return out, nil
}

// Insert puts d at the top of the list.
func (l *List) Insert(d *upload.DocumentController) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.docs = slices.Insert(l.docs, 0, d)
}

// Remove drops the document with the given id and reports whether it was
// listed.
func (l *List) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.IndexFunc(l.docs, func(d *upload.DocumentController) bool { return d.ID() == id })
	if i < 0 {
		return false
	}
	l.docs = slices.Delete(l.docs, i, i+1)
	return true
}

func (l *List) Get(id string) (*upload.DocumentController, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, d := range l.docs {
		if d.ID() == id {
			return d, true
		}
	}
	return nil, false
}

// Documents returns a copy of the current view.
func (l *List) Documents() []*upload.DocumentController {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.docs)
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.docs)
}
