package doctypes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, t *models.DocumentType) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO document_types (id, name, department_code) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, department_code = excluded.department_code
	`, t.ID, t.Name, t.DepartmentCode)
	if err != nil {
		return fmt.Errorf("failed to save document type %s: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.DocumentType, error) {
	return r.query(ctx, `SELECT id, name, department_code FROM document_types ORDER BY rowid`)
}

func (r *SQLiteRepository) GetByDepartment(ctx context.Context, code string) ([]models.DocumentType, error) {
	return r.query(ctx, `SELECT id, name, department_code FROM document_types WHERE department_code = ? ORDER BY rowid`, code)
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM document_types`); err != nil {
		return fmt.Errorf("failed to clear document types: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.DocumentType, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select document types: %w", err)
	}
	defer rows.Close()

	result := []models.DocumentType{}
	for rows.Next() {
		var t models.DocumentType
		if err := rows.Scan(&t.ID, &t.Name, &t.DepartmentCode); err != nil {
			return nil, fmt.Errorf("failed to scan document type row: %w", err)
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document type rows: %w", err)
	}

	return result, nil
}
