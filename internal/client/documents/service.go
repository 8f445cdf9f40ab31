package documents

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/client/storage"
	"github.com/dmitrijs2005/scansync/internal/client/tracking"
	"github.com/dmitrijs2005/scansync/internal/client/upload"
	"github.com/dmitrijs2005/scansync/internal/logging"
)

var ErrIncompleteDocument = errors.New("document needs a type, a folder and at least one page")

type Service struct {
	store   *storage.Store
	list    *List
	factory *upload.Factory
	tracker tracking.Tracker
	log     logging.Logger
	now     func() time.Time

	mu      sync.Mutex
	created int
}

func NewService(store *storage.Store, list *List, factory *upload.Factory, tracker tracking.Tracker, log logging.Logger) *Service {
	return &Service{
		store:   store,
		list:    list,
		factory: factory,
		tracker: tracker,
		log:     log,
		now:     time.Now,
	}
}

// Create stores a new document with one page per image and puts it at the
// top of the list. The document is not uploaded.
func (s *Service) Create(ctx context.Context, typeID, folderID string, images [][]byte) (*upload.DocumentController, error) {
	if typeID == "" || folderID == "" || len(images) == 0 {
		return nil, ErrIncompleteDocument
	}

	doc, pages := models.NewDocument(typeID, folderID, s.now(), len(images))

	stored := make([]string, 0, len(pages))
	cleanup := func() {
		for _, ref := range stored {
			if err := s.store.Blobs().Delete(context.WithoutCancel(ctx), ref); err != nil {
				s.log.Warn(ctx, "failed to remove page image", "ref", ref, "error", err)
			}
		}
	}

	for i, p := range pages {
		if err := s.store.Blobs().Put(ctx, p.ImageRef, images[i]); err != nil {
			cleanup()
			return nil, fmt.Errorf("store page image: %w", err)
		}
		stored = append(stored, p.ImageRef)
	}

	if err := s.store.SaveDocument(ctx, doc, pages); err != nil {
		cleanup()
		return nil, err
	}

	c, err := s.factory.Document(ctx, doc, pages)
	if err != nil {
		return nil, err
	}
	s.list.Insert(c)

	s.mu.Lock()
	s.created++
	again := s.created > 1
	s.mu.Unlock()
	if again {
		s.tracker.Track(ctx, tracking.CreateDocumentAgain())
	}

	s.log.Info(ctx, "document created", "document_id", doc.ID, "pages", len(pages))
	return c, nil
}

// Delete removes a document with its pages, statuses and images.
func (s *Service) Delete(ctx context.Context, id string) error {
	// a running attempt would write status rows after the cascade
	if err := s.factory.Registry().Stop(ctx, id); err != nil {
		return fmt.Errorf("stop upload: %w", err)
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return err
	}
	s.list.Remove(id)
	s.log.Info(ctx, "document deleted", "document_id", id)
	return nil
}
