// Package storage is the persistence facade of the capture engine. It owns
// the SQLite handle and the blob store, exposes the per-record repositories
// and implements the multi-table operations that must run in a single
// transaction: saving a document with its pages, replacing the document type
// cache, cascading deletion of a document and the bulk history purge.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/scansync/internal/client/blobs"
	"github.com/dmitrijs2005/scansync/internal/client/migrations"
	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/doctypes"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/documents"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/folders"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/pages"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/statuses"
	"github.com/dmitrijs2005/scansync/internal/dbx"
	"github.com/dmitrijs2005/scansync/internal/logging"
)

type Store struct {
	db    *sql.DB
	blobs blobs.Store
	log   logging.Logger

	Documents        documents.Repository
	Pages            pages.Repository
	PageStatuses     statuses.Repository
	DocumentStatuses statuses.Repository
	DocumentTypes    doctypes.Repository
	Folders          folders.Repository
	Metadata         metadata.Repository
}

// Open opens (creating if needed) the SQLite database at dsn and migrates it.
func Open(ctx context.Context, dsn string, b blobs.Store, log logging.Logger) (*Store, error) {
	db, err := dbx.OpenSQLite(dsn)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db, b, log), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, b blobs.Store, log logging.Logger) *Store {
	return &Store{
		db:    db,
		blobs: b,
		log:   log.With("component", "storage"),

		Documents:        documents.NewSQLiteRepository(db),
		Pages:            pages.NewSQLiteRepository(db),
		PageStatuses:     statuses.NewSQLiteRepository(db, statuses.PageTable),
		DocumentStatuses: statuses.NewSQLiteRepository(db, statuses.DocumentTable),
		DocumentTypes:    doctypes.NewSQLiteRepository(db),
		Folders:          folders.NewSQLiteRepository(db),
		Metadata:         metadata.NewSQLiteRepository(db),
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Blobs() blobs.Store {
	return s.blobs
}

// LoadDocuments returns every document in creation order with PageIDs set.
func (s *Store) LoadDocuments(ctx context.Context) ([]models.Document, error) {
	docs, err := s.Documents.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.Pages.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byDoc := make(map[string][]string, len(docs))
	for _, p := range all {
		byDoc[p.DocumentID] = append(byDoc[p.DocumentID], p.ID)
	}

	for i := range docs {
		docs[i].PageIDs = byDoc[docs[i].ID]
	}
	return docs, nil
}

// LoadDocument returns common.ErrNotFound for an unknown id.
func (s *Store) LoadDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.Documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ps, err := s.Pages.GetByDocumentID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range ps {
		doc.PageIDs = append(doc.PageIDs, p.ID)
	}
	return doc, nil
}

// LoadPages returns the pages of a document in ordinal order.
func (s *Store) LoadPages(ctx context.Context, documentID string) ([]models.Page, error) {
	return s.Pages.GetByDocumentID(ctx, documentID)
}

// SaveDocument stores a document and its pages atomically.
func (s *Store) SaveDocument(ctx context.Context, doc models.Document, ps []models.Page) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := documents.NewSQLiteRepository(tx).Save(ctx, &doc); err != nil {
			return err
		}
		pageRepo := pages.NewSQLiteRepository(tx)
		for i := range ps {
			if err := pageRepo.Save(ctx, &ps[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

// ReplaceDocumentTypes swaps the cached document types for types.
func (s *Store) ReplaceDocumentTypes(ctx context.Context, types []models.DocumentType) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := doctypes.NewSQLiteRepository(tx)
		if err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		for i := range types {
			if err := repo.Save(ctx, &types[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace document types: %w", err)
	}
	return nil
}

// CachedDocumentTypes returns the document types of the last successful
// catalog fetch.
func (s *Store) CachedDocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	return s.DocumentTypes.GetAll(ctx)
}

// SaveSession writes the session metadata values atomically.
func (s *Store) SaveSession(ctx context.Context, values map[string]string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for k, v := range values {
			if err := repo.Set(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
