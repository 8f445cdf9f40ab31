package documents

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/scansync/internal/client/api"
	"github.com/dmitrijs2005/scansync/internal/client/blobs"
	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/client/storage"
	"github.com/dmitrijs2005/scansync/internal/client/tracking"
	"github.com/dmitrijs2005/scansync/internal/client/upload"
	"github.com/dmitrijs2005/scansync/internal/logging"
)

type okRemote struct{}

func (okRemote) SubmitDocument(context.Context, models.Document) <-chan api.Event[api.Empty] {
	return done()
}

func (okRemote) UploadPage(context.Context, models.Page, []byte) <-chan api.Event[api.Empty] {
	return done()
}

func done() <-chan api.Event[api.Empty] {
	ch := make(chan api.Event[api.Empty], 1)
	ch <- api.Event[api.Empty]{Kind: api.KindSuccess, Fraction: 1}
	close(ch)
	return ch
}

// gatedRemote fails the first page of every document at once and holds the
// other pages until gate is closed or the upload is cancelled.
type gatedRemote struct {
	gate chan struct{}

	mu    sync.Mutex
	calls map[string]int
}

func newGatedRemote() *gatedRemote {
	return &gatedRemote{gate: make(chan struct{}), calls: map[string]int{}}
}

func (g *gatedRemote) SubmitDocument(context.Context, models.Document) <-chan api.Event[api.Empty] {
	return done()
}

func (g *gatedRemote) UploadPage(ctx context.Context, page models.Page, _ []byte) <-chan api.Event[api.Empty] {
	g.mu.Lock()
	g.calls[page.ID]++
	g.mu.Unlock()

	ch := make(chan api.Event[api.Empty], 2)
	go func() {
		defer close(ch)
		ch <- api.Event[api.Empty]{Kind: api.KindProgress, Fraction: 0.5}
		if page.Index == 0 {
			ch <- api.Event[api.Empty]{Kind: api.KindError, Err: errors.New("rejected")}
			return
		}
		select {
		case <-g.gate:
			ch <- api.Event[api.Empty]{Kind: api.KindSuccess}
		case <-ctx.Done():
			ch <- api.Event[api.Empty]{Kind: api.KindError, Err: ctx.Err()}
		}
	}()
	return ch
}

func (g *gatedRemote) callsFor(pageID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[pageID]
}

type recordingTracker struct {
	mu     sync.Mutex
	events []tracking.Event
}

func (r *recordingTracker) Track(_ context.Context, ev tracking.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingTracker) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Name)
	}
	return out
}

type fixture struct {
	store   *storage.Store
	factory *upload.Factory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, okRemote{})
}

func newFixtureWith(t *testing.T, remote upload.Remote) *fixture {
	t.Helper()
	dir := t.TempDir()

	b, err := blobs.NewFSStore(filepath.Join(dir, "images"))
	require.NoError(t, err)
	s, err := storage.Open(context.Background(), filepath.Join(dir, "scansync.db"), b, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return &fixture{
		store: s,
		factory: upload.NewFactory(upload.Deps{
			Remote:             remote,
			Blobs:              b,
			PageStatuses:       s.PageStatuses,
			DocumentStatuses:   s.DocumentStatuses,
			MaxConcurrentPages: 2,
		}),
	}
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// save stores a one-page document created offset after base.
func (f *fixture) save(t *testing.T, offset time.Duration) models.Document {
	t.Helper()
	return f.saveWithPages(t, offset, 1)
}

func (f *fixture) saveWithPages(t *testing.T, offset time.Duration, n int) models.Document {
	t.Helper()
	ctx := context.Background()

	doc, pages := models.NewDocument("type", "folder", base.Add(offset), n)
	for _, p := range pages {
		require.NoError(t, f.store.Blobs().Put(ctx, p.ImageRef, []byte("img")))
	}
	require.NoError(t, f.store.SaveDocument(ctx, doc, pages))
	return doc
}

// markUploaded records the document and its pages as uploaded.
func (f *fixture) markUploaded(t *testing.T, doc models.Document) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.store.DocumentStatuses.Save(ctx, doc.ID, models.Succeeded()))
	for _, id := range doc.PageIDs {
		require.NoError(t, f.store.PageStatuses.Save(ctx, id, models.Succeeded()))
	}
}

func ids(cs []*upload.DocumentController) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID())
	}
	return out
}

// startMidUpload starts an upload of doc and returns once its first page has
// failed while the second one is still in flight.
func startMidUpload(t *testing.T, l *List, id string) *upload.DocumentController {
	t.Helper()
	ctx := context.Background()

	dc, ok := l.Get(id)
	require.True(t, ok)
	require.True(t, dc.Upload(ctx))
	require.Eventually(t, func() bool {
		ps := dc.Pages()
		second := ps[1].Status()
		return ps[0].Status().Phase == models.PhaseFailed &&
			second.Phase == models.PhaseInProgress && second.Fraction == 0.5
	}, 5*time.Second, 5*time.Millisecond)
	return dc
}
