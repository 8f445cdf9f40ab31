package documents

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/scansync/internal/client/api"
	"github.com/dmitrijs2005/scansync/internal/client/dispatch"
	"github.com/dmitrijs2005/scansync/internal/client/models"
)

var ErrNoDepartment = errors.New("no department requested yet")

type CatalogState int

const (
	CatalogAwaiting CatalogState = iota
	CatalogLoading
	CatalogSuccess
	CatalogError
)

func (s CatalogState) String() string {
	switch s {
	case CatalogLoading:
		return "loading"
	case CatalogSuccess:
		return "success"
	case CatalogError:
		return "error"
	default:
		return "awaiting"
	}
}

// CatalogStatus is the catalog state; Err is set only in CatalogError.
type CatalogStatus struct {
	State CatalogState
	Err   error
}

// TypesRemote fetches document types of a department. *api.Client
// satisfies it.
type TypesRemote interface {
	DocumentTypes(ctx context.Context, departmentCode string) <-chan api.Event[[]models.DocumentType]
}

// TypeCache is the local copy of the catalog. *storage.Store satisfies it.
type TypeCache interface {
	ReplaceDocumentTypes(ctx context.Context, types []models.DocumentType) error
	CachedDocumentTypes(ctx context.Context) ([]models.DocumentType, error)
}

// Catalog serves document types from the local cache and refreshes it when
// the selected department changes.
type Catalog struct {
	remote TypesRemote
	cache  TypeCache
	exec   dispatch.Executor

	fetchMu sync.Mutex

	mu        sync.Mutex
	status    CatalogStatus
	selected  string
	requested string
	observers dispatch.Observers[CatalogStatus]
}

func NewCatalog(remote TypesRemote, cache TypeCache, exec dispatch.Executor) *Catalog {
	if exec == nil {
		exec = dispatch.Inline{}
	}
	return &Catalog{remote: remote, cache: cache, exec: exec}
}

// Fetch refreshes the cache with the types of departmentCode. Asking again
// for the department of the last successful fetch touches no network. On
// error the cache keeps its previous content.
func (c *Catalog) Fetch(ctx context.Context, departmentCode string) error {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	c.mu.Lock()
	c.requested = departmentCode
	same := departmentCode == c.selected && c.selected != ""
	c.mu.Unlock()

	if same {
		c.set(CatalogStatus{State: CatalogSuccess})
		return nil
	}

	for ev := range c.remote.DocumentTypes(ctx, departmentCode) {
		switch ev.Kind {
		case api.KindProgress:
			if c.State().State != CatalogLoading {
				c.set(CatalogStatus{State: CatalogLoading})
			}
		case api.KindSuccess:
			if err := c.cache.ReplaceDocumentTypes(ctx, ev.Data); err != nil {
				c.set(CatalogStatus{State: CatalogError, Err: err})
				return err
			}
			c.mu.Lock()
			c.selected = departmentCode
			c.mu.Unlock()
			c.set(CatalogStatus{State: CatalogSuccess})
			return nil
		case api.KindError:
			c.set(CatalogStatus{State: CatalogError, Err: ev.Err})
			return ev.Err
		}
	}

	err := errors.New("document types stream ended without a result")
	c.set(CatalogStatus{State: CatalogError, Err: err})
	return err
}

// Reload retries the last requested department.
func (c *Catalog) Reload(ctx context.Context) error {
	c.mu.Lock()
	code := c.requested
	c.mu.Unlock()

	if code == "" {
		return ErrNoDepartment
	}
	return c.Fetch(ctx, code)
}

// Types returns the cached document types.
func (c *Catalog) Types(ctx context.Context) ([]models.DocumentType, error) {
	return c.cache.CachedDocumentTypes(ctx)
}

// Reset forgets the selected department so the next Fetch hits the network.
func (c *Catalog) Reset() {
	c.mu.Lock()
	c.selected = ""
	c.requested = ""
	c.mu.Unlock()
	c.set(CatalogStatus{})
}

func (c *Catalog) State() CatalogStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Catalog) Subscribe(fn func(CatalogStatus)) (cancel func()) {
	return c.observers.Add(fn)
}

func (c *Catalog) set(s CatalogStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
	c.observers.Notify(c.exec, s)
}
