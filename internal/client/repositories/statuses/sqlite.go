package statuses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/dbx"
)

// Table names a status table.
type Table string

const (
	PageTable     Table = "page_upload_status"
	DocumentTable Table = "document_upload_status"
)

type SQLiteRepository struct {
	db    dbx.DBTX
	table Table
	now   func() time.Time
}

// NewSQLiteRepository panics on a table other than PageTable or DocumentTable.
func NewSQLiteRepository(db dbx.DBTX, table Table) *SQLiteRepository {
	if table != PageTable && table != DocumentTable {
		panic(fmt.Sprintf("statuses: unknown table %q", table))
	}
	return &SQLiteRepository{db: db, table: table, now: time.Now}
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (models.UploadStatus, bool, error) {

	query := `SELECT phase, fraction, cause FROM ` + string(r.table) + ` WHERE id = ?`

	var (
		code     string
		fraction float64
		cause    string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&code, &fraction, &cause)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AwaitingInteraction(), false, nil
	}
	if err != nil {
		return models.UploadStatus{}, false, fmt.Errorf("failed to get %s[%s]: %w", r.table, id, err)
	}

	status, err := decode(code, fraction, cause)
	if err != nil {
		return models.UploadStatus{}, false, fmt.Errorf("failed to decode %s[%s]: %w", r.table, id, err)
	}
	return status, true, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, id string, s models.UploadStatus) error {

	query := `INSERT INTO ` + string(r.table) + ` (id, phase, fraction, cause, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				phase = excluded.phase,
				fraction = excluded.fraction,
				cause = excluded.cause,
				updated_at = excluded.updated_at
	`
	var cause string
	if s.Cause != nil {
		cause = s.Cause.Error()
	}

	_, err := r.db.ExecContext(ctx, query, id, s.Phase.String(), s.Fraction, cause, r.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save %s[%s]: %w", r.table, id, err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) (map[string]models.UploadStatus, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, phase, fraction, cause FROM `+string(r.table))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, err)
	}
	defer rows.Close()

	result := make(map[string]models.UploadStatus)
	for rows.Next() {
		var (
			id, code, cause string
			fraction        float64
		)
		if err := rows.Scan(&id, &code, &fraction, &cause); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.table, err)
		}
		status, err := decode(code, fraction, cause)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s[%s]: %w", r.table, id, err)
		}
		result[id] = status
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", r.table, err)
	}

	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM `+string(r.table)+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w", r.table, id, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM `+string(r.table))
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", r.table, err)
	}
	return nil
}

func decode(code string, fraction float64, cause string) (models.UploadStatus, error) {
	phase, err := models.ParsePhase(code)
	if err != nil {
		return models.UploadStatus{}, err
	}

	switch phase {
	case models.PhaseInProgress:
		return models.InProgress(fraction), nil
	case models.PhaseSuccess:
		return models.Succeeded(), nil
	case models.PhaseFailed:
		if cause == "" {
			return models.Failed(nil), nil
		}
		return models.Failed(errors.New(cause)), nil
	default:
		return models.AwaitingInteraction(), nil
	}
}
