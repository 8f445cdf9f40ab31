package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/scansync/internal/client/repositories/doctypes"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/documents"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/folders"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/pages"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/statuses"
	"github.com/dmitrijs2005/scansync/internal/dbx"
)

// DeleteDocument removes the document with its pages and every status record
// that refers to them. Page blobs are removed after the commit; a blob that
// cannot be removed is logged and left behind.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	var refs []string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pageRepo := pages.NewSQLiteRepository(tx)
		pageStatuses := statuses.NewSQLiteRepository(tx, statuses.PageTable)

		ps, err := pageRepo.GetByDocumentID(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range ps {
			if err := pageStatuses.Delete(ctx, p.ID); err != nil {
				return err
			}
			refs = append(refs, p.ImageRef)
		}

		if err := pageRepo.DeleteByDocumentID(ctx, id); err != nil {
			return err
		}
		if err := statuses.NewSQLiteRepository(tx, statuses.DocumentTable).Delete(ctx, id); err != nil {
			return err
		}
		return documents.NewSQLiteRepository(tx).DeleteByID(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}

	s.removeBlobs(ctx, refs)
	s.log.Info(ctx, "document deleted", "document_id", id, "pages", len(refs))
	return nil
}

// DeleteHistory purges every document, page, status record and stored
// folder in one transaction, then removes the page blobs. Cached document
// types and session metadata are kept.
func (s *Store) DeleteHistory(ctx context.Context) error {
	var refs []string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pageRepo := pages.NewSQLiteRepository(tx)

		ps, err := pageRepo.GetAll(ctx)
		if err != nil {
			return err
		}
		for _, p := range ps {
			refs = append(refs, p.ImageRef)
		}

		steps := []func(context.Context) error{
			pageRepo.DeleteAll,
			documents.NewSQLiteRepository(tx).DeleteAll,
			statuses.NewSQLiteRepository(tx, statuses.PageTable).DeleteAll,
			statuses.NewSQLiteRepository(tx, statuses.DocumentTable).DeleteAll,
			folders.NewSQLiteRepository(tx).DeleteAll,
		}
		for _, step := range steps {
			if err := step(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}

	s.removeBlobs(ctx, refs)
	s.log.Info(ctx, "history deleted", "pages", len(refs))
	return nil
}

// ClearDocumentTypes empties the document type cache.
func (s *Store) ClearDocumentTypes(ctx context.Context) error {
	return doctypes.NewSQLiteRepository(s.db).DeleteAll(ctx)
}

func (s *Store) removeBlobs(ctx context.Context, refs []string) {
	if s.blobs == nil {
		return
	}
	for _, ref := range refs {
		if err := s.blobs.Delete(ctx, ref); err != nil {
			s.log.Warn(ctx, "failed to remove page image", "image_ref", ref, "error", err)
		}
	}
}

// ClearSession removes the stored credential and user.
func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.Metadata.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
