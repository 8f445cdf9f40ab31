package statuses

import (
	"context"

	"github.com/dmitrijs2005/scansync/internal/client/models"
)

type Repository interface {
	// Get returns the stored status and whether a record exists.
	Get(ctx context.Context, id string) (models.UploadStatus, bool, error)

	// Save overwrites the record for id.
	Save(ctx context.Context, id string, status models.UploadStatus) error

	GetAll(ctx context.Context) (map[string]models.UploadStatus, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
