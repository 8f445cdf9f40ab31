// Package lookup finds the destination folder of a document by history,
// free-text search or a scanned barcode.
package lookup

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/scansync/internal/client/api"
	"github.com/dmitrijs2005/scansync/internal/client/dispatch"
	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/folders"
	"github.com/dmitrijs2005/scansync/internal/client/tracking"
	"github.com/dmitrijs2005/scansync/internal/logging"
)

type SearchMode string

const (
	ModeHistory SearchMode = "history"
	ModeSearch  SearchMode = "search"
	ModeScan    SearchMode = "scan"
)

// Remote is the folder part of the document service. *api.Client
// satisfies it.
type Remote interface {
	SearchFolders(ctx context.Context, query string) <-chan api.Event[[]models.Folder]
	GetFolder(ctx context.Context, id string) <-chan api.Event[models.Folder]
}

// Snapshot is the state observers receive.
type Snapshot struct {
	Mode     SearchMode
	Results  []models.Folder
	Loading  bool
	NotFound bool
	Err      error
}

type Folders struct {
	remote  Remote
	repo    folders.Repository
	tracker tracking.Tracker
	exec    dispatch.Executor
	log     logging.Logger
	now     func() time.Time
	history []models.Folder

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	mode     SearchMode
	results  []models.Folder
	loading  bool
	notFound bool
	err      error

	observers dispatch.Observers[Snapshot]
}

// NewFolders reads the folder history once; it does not change for the
// lifetime of the lookup.
func NewFolders(ctx context.Context, remote Remote, repo folders.Repository, tracker tracking.Tracker, exec dispatch.Executor, log logging.Logger, historyCount int) (*Folders, error) {
	history, err := repo.GetRecent(ctx, historyCount)
	if err != nil {
		return nil, fmt.Errorf("load folder history: %w", err)
	}
	if exec == nil {
		exec = dispatch.Inline{}
	}

	return &Folders{
		remote:  remote,
		repo:    repo,
		tracker: tracker,
		exec:    exec,
		log:     log,
		now:     time.Now,
		history: history,
		mode:    ModeHistory,
	}, nil
}

func (f *Folders) History() []models.Folder {
	return slices.Clone(f.history)
}

// UseHistory switches back to the history view and abandons a pending call.
func (f *Folders) UseHistory() {
	f.mu.Lock()
	f.supersedeLocked()
	f.mode = ModeHistory
	f.results = nil
	f.loading = false
	f.notFound = false
	f.err = nil
	snap := f.snapshotLocked()
	f.mu.Unlock()

	f.observers.Notify(f.exec, snap)
}

// Search looks folders up by free text. The returned channel is closed when
// the call has finished or was superseded.
func (f *Folders) Search(ctx context.Context, query string) <-chan struct{} {
	return f.start(ctx, ModeSearch, func(ctx context.Context) <-chan api.Event[[]models.Folder] {
		return f.remote.SearchFolders(ctx, query)
	})
}

// GetFolder looks a folder up by a scanned code. Everything except digits is
// dropped from the code first.
func (f *Folders) GetFolder(ctx context.Context, code string) <-chan struct{} {
	id := DigitsOnly(code)
	return f.start(ctx, ModeScan, func(ctx context.Context) <-chan api.Event[[]models.Folder] {
		return api.Map(f.remote.GetFolder(ctx, id), func(folder models.Folder) []models.Folder {
			return []models.Folder{folder}
		})
	})
}

// start runs call as the current lookup. A newer call cancels it and its
// late events are dropped.
func (f *Folders) start(ctx context.Context, mode SearchMode, call func(context.Context) <-chan api.Event[[]models.Folder]) <-chan struct{} {
	ctx, cancel := context.WithCancel(ctx)

	f.mu.Lock()
	f.supersedeLocked()
	f.gen++
	gen := f.gen
	f.cancel = cancel
	f.mode = mode
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		for ev := range call(ctx) {
			f.apply(ctx, gen, ev)
		}
	}()
	return done
}

func (f *Folders) supersedeLocked() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
}

func (f *Folders) apply(ctx context.Context, gen uint64, ev api.Event[[]models.Folder]) {
	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return
	}

	switch ev.Kind {
	case api.KindProgress:
		if f.loading {
			f.mu.Unlock()
			return
		}
		f.loading = true
	case api.KindSuccess:
		f.loading = false
		f.results = ev.Data
		f.notFound = len(ev.Data) == 0
		f.err = nil
	case api.KindError:
		f.loading = false
		f.results = nil
		f.notFound = false
		f.err = ev.Err
	}
	snap := f.snapshotLocked()
	f.mu.Unlock()

	if ev.Kind == api.KindSuccess && snap.NotFound {
		f.tracker.Track(ctx, tracking.UserNotFound())
	}
	if ev.Kind == api.KindError {
		f.log.Warn(ctx, "folder lookup failed", "mode", string(snap.Mode), "error", ev.Err)
	}
	f.observers.Notify(f.exec, snap)
}

// Select stamps folder as used now, stores it for the history and records
// how it was found.
func (f *Folders) Select(ctx context.Context, folder models.Folder) (models.Folder, error) {
	folder.LastUsed = f.now()
	if err := f.repo.Save(ctx, &folder); err != nil {
		return models.Folder{}, fmt.Errorf("select folder %s: %w", folder.ID, err)
	}

	f.tracker.Track(ctx, tracking.UserFoundBy(string(f.LastUsedSearchMode())))
	return folder, nil
}

func (f *Folders) Subscribe(fn func(Snapshot)) (cancel func()) {
	return f.observers.Add(fn)
}

func (f *Folders) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Folders) Results() []models.Folder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.results)
}

func (f *Folders) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *Folders) LastUsedSearchMode() SearchMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Close abandons a pending call.
func (f *Folders) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supersedeLocked()
}

func (f *Folders) snapshotLocked() Snapshot {
	return Snapshot{
		Mode:     f.mode,
		Results:  slices.Clone(f.results),
		Loading:  f.loading,
		NotFound: f.notFound,
		Err:      f.err,
	}
}

// DigitsOnly drops every character of s that is not a decimal digit.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
