// Package folders stores the folders a user has selected for documents.
// Search results from the document service are never stored here.
package folders

import (
	"context"

	"github.com/dmitrijs2005/scansync/internal/client/models"
)

type Repository interface {
	// Save upserts the folder, overwriting LastUsed.
	Save(ctx context.Context, f *models.Folder) error
	GetAll(ctx context.Context) ([]models.Folder, error)
	// GetByID returns common.ErrNotFound when the folder is not stored.
	GetByID(ctx context.Context, id string) (*models.Folder, error)
	// GetRecent returns at most limit folders, most recently used first.
	GetRecent(ctx context.Context, limit int) ([]models.Folder, error)
	DeleteAll(ctx context.Context) error
}
