package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *SQLiteRepository) Save(ctx context.Context, d *models.Document) error {

	query := `INSERT INTO documents (id, type_id, folder_id, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				type_id = excluded.type_id,
				folder_id = excluded.folder_id,
				created_at = excluded.created_at
	`
	_, err := r.db.ExecContext(ctx, query, d.ID, d.TypeID, d.FolderID, d.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Document, error) {

	query := `SELECT id, type_id, folder_id, created_at FROM documents ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	result := []models.Document{}
	for rows.Next() {
		var (
			d       models.Document
			created int64
		)
		if err := rows.Scan(&d.ID, &d.TypeID, &d.FolderID, &created); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		d.CreatedAt = time.Unix(0, created).UTC()
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document rows: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {

	query := `SELECT id, type_id, folder_id, created_at FROM documents WHERE id = ?`

	var (
		d       models.Document
		created int64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.TypeID, &d.FolderID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	d.CreatedAt = time.Unix(0, created).UTC()

	return &d, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents`)
	if err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}
