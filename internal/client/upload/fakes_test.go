package upload

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/scansync/internal/client/api"
	"github.com/dmitrijs2005/scansync/internal/client/blobs"
	"github.com/dmitrijs2005/scansync/internal/client/dispatch"
	"github.com/dmitrijs2005/scansync/internal/client/migrations"
	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/statuses"
	"github.com/dmitrijs2005/scansync/internal/dbx"
	"github.com/dmitrijs2005/scansync/internal/logging"
)

// fakeRemote emits Progress(0), Progress(0.5) and a terminal event per call.
// When gate is set, a successful page upload waits for a value from it or
// for ctx to be cancelled; failing pages answer at once.
type fakeRemote struct {
	mu          sync.Mutex
	pageCalls   map[string]int
	submitCalls int
	pageErr     map[string]error
	submitErr   error
	gate        chan struct{}
	inflight    int
	maxInflight int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{pageCalls: map[string]int{}, pageErr: map[string]error{}}
}

func (f *fakeRemote) SubmitDocument(_ context.Context, _ models.Document) <-chan api.Event[api.Empty] {
	f.mu.Lock()
	f.submitCalls++
	err := f.submitErr
	f.mu.Unlock()

	ch := make(chan api.Event[api.Empty], 2)
	ch <- api.Event[api.Empty]{Kind: api.KindProgress}
	if err != nil {
		ch <- api.Event[api.Empty]{Kind: api.KindError, Err: err}
	} else {
		ch <- api.Event[api.Empty]{Kind: api.KindSuccess}
	}
	close(ch)
	return ch
}

func (f *fakeRemote) UploadPage(ctx context.Context, page models.Page, _ []byte) <-chan api.Event[api.Empty] {
	f.mu.Lock()
	f.pageCalls[page.ID]++
	err := f.pageErr[page.ID]
	gate := f.gate
	f.mu.Unlock()

	ch := make(chan api.Event[api.Empty], 3)
	go func() {
		defer close(ch)

		f.mu.Lock()
		f.inflight++
		f.maxInflight = max(f.maxInflight, f.inflight)
		f.mu.Unlock()

		ch <- api.Event[api.Empty]{Kind: api.KindProgress}
		ch <- api.Event[api.Empty]{Kind: api.KindProgress, Fraction: 0.5}
		if gate != nil && err == nil {
			select {
			case <-gate:
			case <-ctx.Done():
				err = ctx.Err()
			}
		}

		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()

		if err != nil {
			ch <- api.Event[api.Empty]{Kind: api.KindError, Err: err}
			return
		}
		ch <- api.Event[api.Empty]{Kind: api.KindSuccess}
	}()
	return ch
}

func (f *fakeRemote) calls(pageID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageCalls[pageID]
}

type env struct {
	db      *sql.DB
	remote  *fakeRemote
	blobs   blobs.Store
	pageSt  statuses.Repository
	docSt   statuses.Repository
	factory *Factory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()

	db, err := dbx.OpenSQLite(filepath.Join(dir, "upload.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))

	b, err := blobs.NewFSStore(filepath.Join(dir, "images"))
	require.NoError(t, err)

	e := &env{
		db:     db,
		remote: newFakeRemote(),
		blobs:  b,
		pageSt: statuses.NewSQLiteRepository(db, statuses.PageTable),
		docSt:  statuses.NewSQLiteRepository(db, statuses.DocumentTable),
	}
	e.factory = NewFactory(Deps{
		Remote:             e.remote,
		Blobs:              b,
		PageStatuses:       e.pageSt,
		DocumentStatuses:   e.docSt,
		Executor:           dispatch.Inline{},
		Logger:             logging.Nop(),
		MaxConcurrentPages: 2,
	})
	return e
}

// newDocument creates a document with n pages whose images are stored.
func (e *env) newDocument(t *testing.T, n int) (models.Document, []models.Page) {
	t.Helper()
	doc, pages := models.NewDocument("type", "folder", timeNow(), n)
	for _, p := range pages {
		require.NoError(t, e.blobs.Put(context.Background(), p.ImageRef, []byte("jpeg")))
	}
	return doc, pages
}

// recorder collects observed statuses.
type recorder struct {
	mu  sync.Mutex
	got []models.UploadStatus
}

func (r *recorder) observe(s models.UploadStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, s)
}

func (r *recorder) statuses() []models.UploadStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.UploadStatus(nil), r.got...)
}
