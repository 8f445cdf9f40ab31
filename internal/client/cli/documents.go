package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/client/upload"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// New creates a document in the selected folder from image files.
func (a *App) New(ctx context.Context) error {
	if a.folder == nil {
		printlnFn("Select a folder first: history, search or scan, then select <n>")
		return nil
	}

	types, err := a.engine.catalog.Types(ctx)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		printlnFn("Load document types first: types <department code>")
		return nil
	}
	if err := a.printTypes(ctx); err != nil {
		return err
	}

	choice, err := getSimpleText(a.reader, "Document type number", a.out)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(types) {
		printlnFn("Invalid document type")
		return nil
	}

	paths, err := GetList(a.reader, "Image files (space separated)", a.out)
	if err != nil {
		return err
	}
	images := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		images = append(images, data)
	}

	dc, err := a.engine.docs.Create(ctx, types[n-1].ID, a.folder.ID, images)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Document %s created with %d pages", shortID(dc.ID()), len(images)))
	return nil
}

func (a *App) List(ctx context.Context) error {
	docs := a.engine.list.Documents()
	if len(docs) == 0 {
		printlnFn("No documents")
		return nil
	}
	for i, dc := range docs {
		doc := dc.Document()
		printlnFn(fmt.Sprintf("%2d. %s  %s  %d pages  %s",
			i+1, shortID(doc.ID), doc.CreatedAt.Local().Format("2006-01-02 15:04"), len(doc.PageIDs), dc.Status()))
	}
	return nil
}

// Refresh reloads the list from storage, keeping documents that are still
// uploading at the top.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.engine.list.Update(ctx); err != nil {
		return err
	}
	return a.List(ctx)
}

// Upload starts the upload of one document, or of every document that is
// waiting for upload when ref is empty.
func (a *App) Upload(ctx context.Context, ref string) error {
	if ref != "" {
		dc, ok := a.findDocument(ref)
		if !ok {
			printlnFn("No such document:", ref)
			return nil
		}
		if !a.startUpload(ctx, dc) {
			printlnFn(fmt.Sprintf("Document %s is not waiting for upload (%s)", shortID(dc.ID()), dc.Status()))
		}
		return nil
	}

	started := 0
	for _, dc := range a.engine.list.Documents() {
		if dc.Status().Phase == models.PhaseAwaitingInteraction && a.startUpload(ctx, dc) {
			started++
		}
	}
	printlnFn(fmt.Sprintf("Started %d uploads", started))
	return nil
}

func (a *App) Reupload(ctx context.Context, ref string) error {
	dc, ok := a.findDocument(ref)
	if !ok {
		printlnFn("No such document:", ref)
		return nil
	}
	if !dc.PrepareForReupload(ctx) {
		printlnFn("Only failed documents can be uploaded again")
		return nil
	}
	a.startUpload(ctx, dc)
	return nil
}

func (a *App) Delete(ctx context.Context, ref string) error {
	dc, ok := a.findDocument(ref)
	if !ok {
		printlnFn("No such document:", ref)
		return nil
	}
	if dc.Running() {
		printlnFn("Document is being uploaded")
		return nil
	}
	if err := a.engine.docs.Delete(ctx, dc.ID()); err != nil {
		return err
	}
	printlnFn("Document deleted:", shortID(dc.ID()))
	return nil
}

// startUpload starts dc and prints its outcome once it is known.
func (a *App) startUpload(ctx context.Context, dc *upload.DocumentController) bool {
	var (
		once   sync.Once
		cancel func()
	)
	cancel = dc.Subscribe(func(s models.UploadStatus) {
		if !s.IsTerminal() {
			return
		}
		once.Do(func() {
			printlnFn(fmt.Sprintf("Document %s: %s", shortID(dc.ID()), s))
			cancel()
		})
	})

	if !dc.Upload(ctx) {
		cancel()
		return false
	}
	printlnFn("Uploading", shortID(dc.ID()))
	return true
}

// findDocument resolves a 1-based list position, an id or a unique id
// prefix.
func (a *App) findDocument(ref string) (*upload.DocumentController, bool) {
	docs := a.engine.list.Documents()

	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(docs) {
		return docs[n-1], true
	}

	var match *upload.DocumentController
	for _, dc := range docs {
		if dc.ID() == ref {
			return dc, true
		}
		if strings.HasPrefix(dc.ID(), ref) {
			if match != nil {
				return nil, false
			}
			match = dc
		}
	}
	return match, match != nil
}
