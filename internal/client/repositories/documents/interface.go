package documents

import (
	"context"

	"github.com/dmitrijs2005/scansync/internal/client/models"
)

// Repository describes CRUD operations for Document records.
type Repository interface {
	// Save inserts a document or overwrites the stored one with the same ID.
	Save(ctx context.Context, doc *models.Document) error

	// GetAll returns every document in creation order.
	GetAll(ctx context.Context) ([]models.Document, error)

	// GetByID returns common.ErrNotFound when no document has the id.
	GetByID(ctx context.Context, id string) (*models.Document, error)

	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
