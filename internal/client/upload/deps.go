// Package upload drives the upload of documents and their pages.
//
// A PageController owns the state machine of one page:
//
//	AwaitingInteraction --Upload--> InProgress(f) --> Success
//	                                     |
//	                                     +--> Failed --PrepareForReupload--> AwaitingInteraction
//
// Every transition is written to the status repository before observers are
// told about it. On construction a controller hydrates from the stored
// record: Success stays Success, any other record becomes Failed without a
// cause, and no record means AwaitingInteraction. An upload that was cut
// short by a crash therefore needs an explicit reupload.
//
// A DocumentController submits the document metadata and then uploads its
// pages concurrently, exposing an aggregate status.
package upload

import (
	"context"

	"github.com/dmitrijs2005/scansync/internal/client/api"
	"github.com/dmitrijs2005/scansync/internal/client/blobs"
	"github.com/dmitrijs2005/scansync/internal/client/dispatch"
	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/statuses"
	"github.com/dmitrijs2005/scansync/internal/logging"
)

// Remote is the part of the document service used by uploads.
// *api.Client satisfies it.
type Remote interface {
	SubmitDocument(ctx context.Context, doc models.Document) <-chan api.Event[api.Empty]
	UploadPage(ctx context.Context, page models.Page, image []byte) <-chan api.Event[api.Empty]
}

type Deps struct {
	Remote           Remote
	Blobs            blobs.Store
	PageStatuses     statuses.Repository
	DocumentStatuses statuses.Repository
	Executor         dispatch.Executor
	Logger           logging.Logger
	// Registry receives documents while their upload runs. NewFactory
	// creates one when nil.
	Registry *Registry
	// MaxConcurrentPages limits parallel page uploads of one document.
	MaxConcurrentPages int
}

// hydrate maps a stored record to the initial in-memory status.
func hydrate(stored models.UploadStatus, found bool) models.UploadStatus {
	switch {
	case !found:
		return models.AwaitingInteraction()
	case stored.Phase == models.PhaseSuccess:
		return models.Succeeded()
	default:
		return models.Failed(nil)
	}
}

// Factory builds controllers sharing one set of dependencies.
type Factory struct {
	deps Deps
}

func NewFactory(d Deps) *Factory {
	if d.Executor == nil {
		d.Executor = dispatch.Inline{}
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	if d.MaxConcurrentPages <= 0 {
		d.MaxConcurrentPages = 1
	}
	if d.Registry == nil {
		d.Registry = NewRegistry()
	}
	return &Factory{deps: d}
}

// Registry returns the registry of running uploads.
func (f *Factory) Registry() *Registry {
	return f.deps.Registry
}

func (f *Factory) Page(ctx context.Context, page models.Page) (*PageController, error) {
	return newPageController(ctx, page, f.deps)
}

// Document builds a controller for doc and one page controller per page.
func (f *Factory) Document(ctx context.Context, doc models.Document, pages []models.Page) (*DocumentController, error) {
	pcs := make([]*PageController, 0, len(pages))
	for _, p := range pages {
		pc, err := f.Page(ctx, p)
		if err != nil {
			return nil, err
		}
		pcs = append(pcs, pc)
	}
	return newDocumentController(ctx, doc, pcs, f.deps)
}
