package doctypes

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/scansync/internal/client/migrations"
	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/dbx"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := dbx.OpenSQLite(filepath.Join(t.TempDir(), "types.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

func TestSaveGetAndFilter(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &models.DocumentType{ID: "1", Name: "Report", DepartmentCode: "CARD"}))
	require.NoError(t, r.Save(ctx, &models.DocumentType{ID: "2", Name: "Referral", DepartmentCode: "CARD"}))
	require.NoError(t, r.Save(ctx, &models.DocumentType{ID: "3", Name: "X-ray", DepartmentCode: "RAD"}))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	card, err := r.GetByDepartment(ctx, "CARD")
	require.NoError(t, err)
	require.Len(t, card, 2)
	assert.Equal(t, "Report", card[0].Name)
	assert.Equal(t, "Referral", card[1].Name)
}

func TestDeleteAll(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &models.DocumentType{ID: "1", Name: "Report", DepartmentCode: "CARD"}))
	require.NoError(t, r.DeleteAll(ctx))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
