package folders

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/scansync/internal/client/migrations"
	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/common"
	"github.com/dmitrijs2005/scansync/internal/dbx"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := dbx.OpenSQLite(filepath.Join(t.TempDir(), "folders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

func TestGetRecent_SortsByLastUsedAndLimits(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"f1", "f2", "f3", "f4"} {
		require.NoError(t, r.Save(ctx, &models.Folder{ID: id, Name: "Folder " + id, LastUsed: base.Add(time.Duration(i) * time.Hour)}))
	}

	recent, err := r.GetRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "f4", recent[0].ID)
	assert.Equal(t, "f3", recent[1].ID)
	assert.True(t, base.Add(3*time.Hour).Equal(recent[0].LastUsed))

	none, err := r.GetRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSave_UpsertRefreshesLastUsed(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, r.Save(ctx, &models.Folder{ID: "old", Name: "Old", LastUsed: base}))
	require.NoError(t, r.Save(ctx, &models.Folder{ID: "new", Name: "New", LastUsed: base.Add(time.Hour)}))
	require.NoError(t, r.Save(ctx, &models.Folder{ID: "old", Name: "Old", LastUsed: base.Add(2 * time.Hour)}))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "old", all[0].ID)
}

func TestGetByIDAndDeleteAll(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &models.Folder{ID: "f", ExternalID: "123", Name: "Jan Novak", LastUsed: time.Now()}))

	f, err := r.GetByID(ctx, "f")
	require.NoError(t, err)
	assert.Equal(t, "123", f.ExternalID)

	require.NoError(t, r.DeleteAll(ctx))
	_, err = r.GetByID(ctx, "f")
	require.ErrorIs(t, err, common.ErrNotFound)
}
