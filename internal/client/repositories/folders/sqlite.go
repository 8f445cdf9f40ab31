package folders

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

func (r *SQLiteRepository) Save(ctx context.Context, f *models.Folder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO folders (id, external_id, name, last_used) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			external_id = excluded.external_id,
			name = excluded.name,
			last_used = excluded.last_used
	`, f.ID, f.ExternalID, f.Name, f.LastUsed.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save folder %s: %w", f.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Folder, error) {
	return r.query(ctx, `SELECT id, external_id, name, last_used FROM folders ORDER BY last_used DESC`)
}

func (r *SQLiteRepository) GetRecent(ctx context.Context, limit int) ([]models.Folder, error) {
	if limit <= 0 {
		return []models.Folder{}, nil
	}
	return r.query(ctx, `SELECT id, external_id, name, last_used FROM folders ORDER BY last_used DESC LIMIT ?`, limit)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	var (
		f    models.Folder
		used int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, external_id, name, last_used FROM folders WHERE id = ?`, id).
		Scan(&f.ID, &f.ExternalID, &f.Name, &used)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder %s: %w", id, err)
	}
	f.LastUsed = time.Unix(0, used).UTC()
	return &f, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM folders`); err != nil {
		return fmt.Errorf("failed to clear folders: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	result := []models.Folder{}
	for rows.Next() {
		var (
			f    models.Folder
			used int64
		)
		if err := rows.Scan(&f.ID, &f.ExternalID, &f.Name, &used); err != nil {
			return nil, fmt.Errorf("failed to scan folder row: %w", err)
		}
		f.LastUsed = time.Unix(0, used).UTC()
		result = append(result, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate folder rows: %w", err)
	}

	return result, nil
}
