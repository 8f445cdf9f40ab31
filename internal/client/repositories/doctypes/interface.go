// Package doctypes caches the document types of the department last fetched.
package doctypes

import (
	"context"

	"github.com/dmitrijs2005/scansync/internal/client/models"
)

type Repository interface {
	Save(ctx context.Context, t *models.DocumentType) error
	GetAll(ctx context.Context) ([]models.DocumentType, error)
	GetByDepartment(ctx context.Context, code string) ([]models.DocumentType, error)
	DeleteAll(ctx context.Context) error
}
