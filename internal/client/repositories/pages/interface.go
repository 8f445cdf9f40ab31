package pages

import (
	"context"

	"github.com/dmitrijs2005/scansync/internal/client/models"
)

// Repository describes CRUD operations for Page records.
type Repository interface {
	// Save inserts a page or overwrites the stored one with the same ID.
	Save(ctx context.Context, p *models.Page) error

	GetAll(ctx context.Context) ([]models.Page, error)

	// GetByID returns common.ErrNotFound when no page has the id.
	GetByID(ctx context.Context, id string) (*models.Page, error)

	// GetByDocumentID returns the pages of a document ordered by Index.
	GetByDocumentID(ctx context.Context, documentID string) ([]models.Page, error)

	DeleteByDocumentID(ctx context.Context, documentID string) error
	DeleteAll(ctx context.Context) error
}
