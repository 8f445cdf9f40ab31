package pages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/common"
	"github.com/dmitrijs2005/scansync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, p *models.Page) error {

	query := `INSERT INTO pages (id, document_id, image_ref, ordinal)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				document_id = excluded.document_id,
				image_ref = excluded.image_ref,
				ordinal = excluded.ordinal
	`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.DocumentID, p.ImageRef, p.Index)
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Page, error) {
	return r.query(ctx, `SELECT id, document_id, image_ref, ordinal FROM pages ORDER BY document_id, ordinal`)
}

func (r *SQLiteRepository) GetByDocumentID(ctx context.Context, documentID string) ([]models.Page, error) {
	return r.query(ctx, `SELECT id, document_id, image_ref, ordinal FROM pages WHERE document_id = ? ORDER BY ordinal`, documentID)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Page, error) {

	query := `SELECT id, document_id, image_ref, ordinal FROM pages WHERE id = ?`

	var p models.Page
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.DocumentID, &p.ImageRef, &p.Index)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page %s: %w", id, err)
	}

	return &p, nil
}

func (r *SQLiteRepository) DeleteByDocumentID(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE document_id = ?`, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete pages of document %s: %w", documentID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pages`)
	if err != nil {
		return fmt.Errorf("failed to delete pages: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.Page, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select pages: %w", err)
	}
	defer rows.Close()

	result := []models.Page{}
	for rows.Next() {
		var p models.Page
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.ImageRef, &p.Index); err != nil {
			return nil, fmt.Errorf("failed to scan page row: %w", err)
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate page rows: %w", err)
	}

	return result, nil
}
